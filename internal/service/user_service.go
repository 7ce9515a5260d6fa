package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"sistramite/internal/model"
	"sistramite/internal/repository"
	"sistramite/pkg/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// --- DTOs ---

type RegisterRequest struct {
	Name            string `json:"name" binding:"required"`
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type ResetPasswordRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// UserResponse returns account data without exposing the password hash.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Approved  bool      `json:"approved"`
	Blocked   bool      `json:"blocked"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt string    `json:"created_at"`
}

// UserService defines the business logic around accounts: self-registration
// into the pending state, the login gate, and the admin-only flag flips.
type UserService interface {
	Register(ctx context.Context, req RegisterRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	RefreshToken(ctx context.Context, req RefreshTokenRequest) (*TokenResponse, error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
	GetUserByID(ctx context.Context, id string) (*UserResponse, error)
	ListUsers(ctx context.Context) ([]UserResponse, error)
	ListActiveUsers(ctx context.Context) ([]UserResponse, error)
	Approve(ctx context.Context, actor uuid.UUID, id string) (*UserResponse, error)
	Block(ctx context.Context, actor uuid.UUID, id string) (*UserResponse, error)
	Unblock(ctx context.Context, actor uuid.UUID, id string) (*UserResponse, error)
	GrantAdmin(ctx context.Context, actor uuid.UUID, id string) (*UserResponse, error)
}

type userService struct {
	repo  repository.UserRepository
	audit repository.AuditRepository
	tx    repository.TransactionManager
}

// NewUserService returns a new instance of UserService
func NewUserService(repo repository.UserRepository, audit repository.AuditRepository, tx repository.TransactionManager) UserService {
	return &userService{repo: repo, audit: audit, tx: tx}
}

func mapToUserResponse(u *model.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Username:  u.Username,
		Email:     u.Email,
		Approved:  u.Approved,
		Blocked:   u.Blocked,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

// Register creates a pending account. It cannot log in until an
// administrator approves it.
func (s *userService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	if req.Password != req.ConfirmPassword {
		return nil, apperr.Validation("passwords do not match")
	}

	if domain := os.Getenv("REGISTRATION_EMAIL_DOMAIN"); domain != "" {
		if !strings.HasSuffix(strings.ToLower(req.Email), "@"+strings.ToLower(domain)) {
			return nil, apperr.Validation("use your institutional e-mail (@%s)", domain)
		}
	}

	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return nil, apperr.Conflict("username already registered")
	}
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperr.Conflict("e-mail already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Name:         strings.TrimSpace(req.Name),
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: string(hash),
		Approved:     false,
		Blocked:      false,
		IsAdmin:      false,
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, user); err != nil {
			return apperr.Conflict("username or e-mail already registered")
		}
		return s.audit.Log(txCtx, &model.AuditLog{
			UserID:     &user.ID,
			Action:     model.ActionRegisterUser,
			EntityID:   user.ID.String(),
			EntityName: user.Username,
		})
	})
	if err != nil {
		return nil, err
	}

	return mapToUserResponse(user), nil
}

// Login authenticates and enforces the approval gate: wrong credentials,
// pending and blocked accounts are all rejected, each with its own message.
func (s *userService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return nil, apperr.NotFound("user not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperr.Validation("incorrect password")
	}

	if !user.Approved {
		return nil, apperr.Forbidden("access pending administrator approval")
	}
	if user.Blocked {
		return nil, apperr.Forbidden("account blocked, contact an administrator")
	}

	return s.issueTokens(ctx, user)
}

func (s *userService) issueTokens(ctx context.Context, user *model.User) (*TokenResponse, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      user.ID.String(),
		"username": user.Username,
		"admin":    user.IsAdmin,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	})

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key"
	}

	accessToken, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	refresh := &model.RefreshToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(7 * 24 * time.Hour),
	}
	if err := s.repo.CreateRefreshToken(ctx, refresh); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenResponse{Token: accessToken, RefreshToken: refresh.Token}, nil
}

// RefreshToken rotates a valid refresh token into a fresh token pair.
func (s *userService) RefreshToken(ctx context.Context, req RefreshTokenRequest) (*TokenResponse, error) {
	stored, err := s.repo.FindRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, apperr.Forbidden("invalid refresh token")
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, apperr.Forbidden("refresh token expired")
	}

	user, err := s.repo.GetByID(ctx, stored.UserID.String())
	if err != nil {
		return nil, apperr.NotFound("user not found")
	}
	if !user.Approved || user.Blocked {
		return nil, apperr.Forbidden("account not active")
	}

	if err := s.repo.DeleteRefreshToken(ctx, stored.Token); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

// ResetPassword matches the account by name+email, mirroring the original
// self-service flow.
func (s *userService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if req.NewPassword != req.ConfirmPassword {
		return apperr.Validation("passwords do not match")
	}

	user, err := s.repo.GetByNameAndEmail(ctx, strings.TrimSpace(req.Name), strings.TrimSpace(req.Email))
	if err != nil {
		return apperr.NotFound("no account matches the given name and e-mail")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	return s.repo.Update(ctx, user)
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("user not found")
	}
	return mapToUserResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context) ([]UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, *mapToUserResponse(&users[i]))
	}
	return out, nil
}

func (s *userService) ListActiveUsers(ctx context.Context) ([]UserResponse, error) {
	users, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, *mapToUserResponse(&users[i]))
	}
	return out, nil
}

// setFlag loads, mutates and audits one account flag inside a transaction.
func (s *userService) setFlag(ctx context.Context, actor uuid.UUID, id, action string, mutate func(*model.User)) (*UserResponse, error) {
	var user *model.User
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		user, err = s.repo.GetByID(txCtx, id)
		if err != nil {
			return apperr.NotFound("user not found")
		}

		mutate(user)
		if err := s.repo.Update(txCtx, user); err != nil {
			return err
		}

		details, _ := json.Marshal(map[string]interface{}{
			"approved": user.Approved,
			"blocked":  user.Blocked,
			"is_admin": user.IsAdmin,
		})
		return s.audit.Log(txCtx, &model.AuditLog{
			UserID:     &actor,
			Action:     action,
			EntityID:   user.ID.String(),
			EntityName: user.Username,
			Details:    string(details),
		})
	})
	if err != nil {
		return nil, err
	}
	return mapToUserResponse(user), nil
}

func (s *userService) Approve(ctx context.Context, actor uuid.UUID, id string) (*UserResponse, error) {
	return s.setFlag(ctx, actor, id, model.ActionApproveUser, func(u *model.User) { u.Approved = true })
}

func (s *userService) Block(ctx context.Context, actor uuid.UUID, id string) (*UserResponse, error) {
	return s.setFlag(ctx, actor, id, model.ActionBlockUser, func(u *model.User) { u.Blocked = true })
}

func (s *userService) Unblock(ctx context.Context, actor uuid.UUID, id string) (*UserResponse, error) {
	return s.setFlag(ctx, actor, id, model.ActionUnblockUser, func(u *model.User) { u.Blocked = false })
}

func (s *userService) GrantAdmin(ctx context.Context, actor uuid.UUID, id string) (*UserResponse, error) {
	return s.setFlag(ctx, actor, id, model.ActionGrantAdmin, func(u *model.User) { u.IsAdmin = true })
}
