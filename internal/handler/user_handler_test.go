package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sistramite/internal/database"
	"sistramite/internal/middleware"
	"sistramite/internal/model"
	"sistramite/internal/repository"
	"sistramite/internal/service"
	"sistramite/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newUserRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.Seed(db))
	middleware.InitAuthMiddleware(db)

	svc := service.NewUserService(
		repository.NewUserRepository(db),
		repository.NewAuditRepository(db),
		repository.NewTransactionManager(db),
	)

	router := gin.New()
	NewUserHandler(svc).RegisterRoutes(router.Group(""))
	return router, db
}

func seedAccount(t *testing.T, db *gorm.DB, username string, approved, blocked bool) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{
		Name:         "Test " + username,
		Username:     username,
		Email:        username + "@novacap.df.gov.br",
		PasswordHash: string(hash),
		Approved:     approved,
		Blocked:      blocked,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func bearerToken(t *testing.T, u *model.User) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": u.ID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(middleware.GetJWTSecret())
	require.NoError(t, err)
	return "Bearer " + signed
}

func TestListActiveUsersRoute(t *testing.T) {
	router, db := newUserRouter(t)

	caller := seedAccount(t, db, "tecnico", true, false)
	seedAccount(t, db, "pendente", false, false)
	seedAccount(t, db, "bloqueado", true, true)

	req := httptest.NewRequest(http.MethodGet, "/users/active", nil)
	req.Header.Set("Authorization", bearerToken(t, caller))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var env response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var users []service.UserResponse
	require.NoError(t, json.Unmarshal(raw, &users))

	require.Len(t, users, 1)
	require.Equal(t, "tecnico", users[0].Username)
}

func TestListActiveUsersRouteOpenToNonAdmins(t *testing.T) {
	router, db := newUserRouter(t)

	caller := seedAccount(t, db, "comum", true, false)
	require.False(t, caller.IsAdmin)

	req := httptest.NewRequest(http.MethodGet, "/users/active", nil)
	req.Header.Set("Authorization", bearerToken(t, caller))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestListActiveUsersRouteRequiresAuth(t *testing.T) {
	router, _ := newUserRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/active", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
