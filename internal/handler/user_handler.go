package handler

import (
	"net/http"

	"sistramite/internal/middleware"
	"sistramite/internal/service"
	"sistramite/pkg/apperr"
	"sistramite/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
}

// NewUserHandler sets up the routing dependencies for account endpoints
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Public routes
	router.POST("/register", h.Register)
	router.POST("/login", h.Login)
	router.POST("/refresh", h.RefreshToken)
	router.POST("/logout", h.Logout)
	router.POST("/reset-password", h.ResetPassword)

	router.GET("/me", middleware.RequireUser(), h.GetMe)

	// Approved accounts for the responsible-technician selects
	router.GET("/users/active", middleware.RequireUser(), h.ListActiveUsers)

	// Admin-only account management
	users := router.Group("/users", middleware.RequireUser(), middleware.RequireAdmin())
	{
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUserByID)
		users.POST("/:id/approve", h.Approve)
		users.POST("/:id/block", h.Block)
		users.POST("/:id/unblock", h.Unblock)
		users.POST("/:id/grant-admin", h.GrantAdmin)
	}
}

// Register handles self-registration into the pending state
// @Summary      Register a new account
// @Description  Creates an account that stays pending until an administrator approves it
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterRequest  true  "Registration Payload"
// @Success      201      {object}  response.Response{data=service.UserResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, user))
}

// Login authenticates an approved account
// @Summary      Login
// @Description  Validates credentials and issues access and refresh tokens as HttpOnly cookies
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Login Payload"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	tokens, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	middleware.SetTokenCookies(c, tokens.Token, tokens.RefreshToken)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tokens))
}

// RefreshToken rotates the refresh token
// @Summary      Refresh tokens
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RefreshTokenRequest  false  "Refresh Payload (falls back to cookie)"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      401      {object}  response.Response
// @Router       /refresh [post]
func (h *UserHandler) RefreshToken(c *gin.Context) {
	var req service.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		if cookie, cerr := c.Cookie("refresh_token"); cerr == nil {
			req.RefreshToken = cookie
		}
	}
	if req.RefreshToken == "" {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Missing refresh token"))
		return
	}

	tokens, err := h.userService.RefreshToken(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
		return
	}

	middleware.SetTokenCookies(c, tokens.Token, tokens.RefreshToken)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tokens))
}

// Logout clears the token cookies
// @Summary      Logout
// @Tags         accounts
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	middleware.ClearTokenCookies(c)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Logged out"}))
}

// ResetPassword resets a password after a name and email match
// @Summary      Reset password
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ResetPasswordRequest  true  "Reset Payload"
// @Success      200      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /reset-password [post]
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req service.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.userService.ResetPassword(c.Request.Context(), req); err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Password updated"}))
}

// GetMe returns the authenticated account
// @Summary      Current account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.UserResponse}
// @Failure      401  {object}  response.Response
// @Router       /me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Not authenticated"))
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), principal.ID.String())
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// ListUsers lists every account, pending ones included
// @Summary      List accounts
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.UserResponse}
// @Router       /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, users))
}

// ListActiveUsers lists approved, unblocked accounts for assignment selects
// @Summary      List active accounts
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.UserResponse}
// @Router       /users/active [get]
func (h *UserHandler) ListActiveUsers(c *gin.Context) {
	users, err := h.userService.ListActiveUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, users))
}

// GetUserByID fetches one account
// @Summary      Get account by id
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=service.UserResponse}
// @Failure      404  {object}  response.Response
// @Router       /users/{id} [get]
func (h *UserHandler) GetUserByID(c *gin.Context) {
	user, err := h.userService.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

func (h *UserHandler) setFlag(c *gin.Context, apply func(c *gin.Context) (*service.UserResponse, error)) {
	user, err := apply(c)
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// Approve activates a pending account
// @Summary      Approve account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=service.UserResponse}
// @Failure      404  {object}  response.Response
// @Router       /users/{id}/approve [post]
func (h *UserHandler) Approve(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)
	h.setFlag(c, func(c *gin.Context) (*service.UserResponse, error) {
		return h.userService.Approve(c.Request.Context(), principal.ID, c.Param("id"))
	})
}

// Block suspends an account
// @Summary      Block account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=service.UserResponse}
// @Failure      404  {object}  response.Response
// @Router       /users/{id}/block [post]
func (h *UserHandler) Block(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)
	h.setFlag(c, func(c *gin.Context) (*service.UserResponse, error) {
		return h.userService.Block(c.Request.Context(), principal.ID, c.Param("id"))
	})
}

// Unblock lifts a suspension
// @Summary      Unblock account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=service.UserResponse}
// @Failure      404  {object}  response.Response
// @Router       /users/{id}/unblock [post]
func (h *UserHandler) Unblock(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)
	h.setFlag(c, func(c *gin.Context) (*service.UserResponse, error) {
		return h.userService.Unblock(c.Request.Context(), principal.ID, c.Param("id"))
	})
}

// GrantAdmin promotes an account to administrator
// @Summary      Grant administrator
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=service.UserResponse}
// @Failure      404  {object}  response.Response
// @Router       /users/{id}/grant-admin [post]
func (h *UserHandler) GrantAdmin(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)
	h.setFlag(c, func(c *gin.Context) (*service.UserResponse, error) {
		return h.userService.GrantAdmin(c.Request.Context(), principal.ID, c.Param("id"))
	})
}
