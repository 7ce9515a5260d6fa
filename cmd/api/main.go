package main

import (
	"os"

	_ "sistramite/api/swagger" // swagger docs
	"sistramite/internal/database"
	"sistramite/internal/handler"
	"sistramite/internal/middleware"
	"sistramite/internal/repository"
	"sistramite/internal/service"
	"sistramite/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           SISTRAMITE API
// @version         1.0
// @description     Internal workflow tracker: process intake, status tramitation ledger, reporting with document exports and citizen-service protocols.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := godotenv.Load("configs/.env"); err != nil {
		logger.Info("no configs/.env file found")
	}

	dbHost := getenv("DB_HOST", "localhost")
	dbPort := getenv("DB_PORT", "5432")
	dbUser := getenv("DB_USER", "postgres")
	dbPassword := getenv("DB_PASSWORD", "postgres")
	dbName := getenv("DB_NAME", "sistramite")
	dbSslMode := getenv("DB_SSLMODE", "disable")

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	if err := database.Seed(db); err != nil {
		logger.Fatal("seeding reference catalogs failed", zap.Error(err))
	}
	logger.Info("connected to PostgreSQL, catalogs seeded")

	middleware.InitAuthMiddleware(db)

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(logger)
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	processRepo := repository.NewProcessRepository(db)
	reportRepo := repository.NewReportRepository(db)
	referenceRepo := repository.NewReferenceRepository(db)
	protocolRepo := repository.NewProtocolRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	userService := service.NewUserService(userRepo, auditRepo, txManager)
	processService := service.NewProcessService(processRepo, referenceRepo, auditRepo, txManager, wsHub, logger)
	reportService := service.NewReportService(reportRepo, logger)
	dashboardService := service.NewDashboardService(processRepo)
	referenceService := service.NewReferenceService(referenceRepo)
	protocolService := service.NewProtocolService(protocolRepo, auditRepo, txManager, wsHub)
	exportService := service.NewExportService()
	auditService := service.NewAuditService(auditRepo)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	processHandler := handler.NewProcessHandler(processService, exportService)
	reportHandler := handler.NewReportHandler(reportService, exportService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	referenceHandler := handler.NewReferenceHandler(referenceService)
	protocolHandler := handler.NewProtocolHandler(protocolService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		corsConfig.AllowOrigins = []string{origins}
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, db, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	processHandler.RegisterRoutes(router.Group(""))
	reportHandler.RegisterRoutes(router.Group(""))
	dashboardHandler.RegisterRoutes(router.Group(""))
	referenceHandler.RegisterRoutes(router.Group(""))
	protocolHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	port := getenv("PORT", "8080")
	logger.Info("server listening", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
