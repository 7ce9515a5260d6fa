package service

import (
	"context"
	"testing"

	"sistramite/internal/model"
	"sistramite/internal/repository"
	"sistramite/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUserService(db *gorm.DB) UserService {
	return NewUserService(
		repository.NewUserRepository(db),
		repository.NewAuditRepository(db),
		repository.NewTransactionManager(db),
	)
}

func registerReq(username string) RegisterRequest {
	return RegisterRequest{
		Name:            "Test " + username,
		Username:        username,
		Email:           username + "@novacap.df.gov.br",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}
}

func TestRegisterCreatesPendingAccount(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)

	user, err := svc.Register(context.Background(), registerReq("joao"))
	require.NoError(t, err)
	assert.False(t, user.Approved)
	assert.False(t, user.IsAdmin)

	// Pending accounts cannot log in, even with correct credentials.
	_, err = svc.Login(context.Background(), LoginRequest{Username: "joao", Password: "secret123"})
	require.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestRegisterPasswordMismatch(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)

	req := registerReq("joao")
	req.ConfirmPassword = "different"
	_, err := svc.Register(context.Background(), req)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)

	_, err := svc.Register(context.Background(), registerReq("joao"))
	require.NoError(t, err)

	dup := registerReq("joao")
	dup.Email = "other@novacap.df.gov.br"
	_, err = svc.Register(context.Background(), dup)
	require.ErrorIs(t, err, apperr.ErrConflict)
}

func TestRegisterEnforcesEmailDomainWhenConfigured(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)
	t.Setenv("REGISTRATION_EMAIL_DOMAIN", "novacap.df.gov.br")

	req := registerReq("joao")
	req.Email = "joao@gmail.com"
	_, err := svc.Register(context.Background(), req)
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Register(context.Background(), registerReq("joao"))
	require.NoError(t, err)
}

func TestLoginGates(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)

	_, err := svc.Login(context.Background(), LoginRequest{Username: "ghost", Password: "x"})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	user := seedUser(t, db, "maria", false)

	_, err = svc.Login(context.Background(), LoginRequest{Username: "maria", Password: "wrong"})
	require.ErrorIs(t, err, apperr.ErrValidation)

	tokens, err := svc.Login(context.Background(), LoginRequest{Username: "maria", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.Token)
	assert.NotEmpty(t, tokens.RefreshToken)

	require.NoError(t, db.Model(user).Update("blocked", true).Error)
	_, err = svc.Login(context.Background(), LoginRequest{Username: "maria", Password: "secret123"})
	require.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestRefreshTokenRotates(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)
	seedUser(t, db, "maria", false)

	tokens, err := svc.Login(context.Background(), LoginRequest{Username: "maria", Password: "secret123"})
	require.NoError(t, err)

	rotated, err := svc.RefreshToken(context.Background(), RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	// The consumed token is gone.
	_, err = svc.RefreshToken(context.Background(), RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.Error(t, err)
}

func TestApprovalFlow(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)
	admin := seedUser(t, db, "chefe", true)

	pending, err := svc.Register(context.Background(), registerReq("joao"))
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), admin.ID, pending.ID.String())
	require.NoError(t, err)
	assert.True(t, approved.Approved)

	_, err = svc.Login(context.Background(), LoginRequest{Username: "joao", Password: "secret123"})
	require.NoError(t, err)

	blocked, err := svc.Block(context.Background(), admin.ID, pending.ID.String())
	require.NoError(t, err)
	assert.True(t, blocked.Blocked)

	unblocked, err := svc.Unblock(context.Background(), admin.ID, pending.ID.String())
	require.NoError(t, err)
	assert.False(t, unblocked.Blocked)

	promoted, err := svc.GrantAdmin(context.Background(), admin.ID, pending.ID.String())
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin)

	var audits int64
	require.NoError(t, db.Model(&model.AuditLog{}).
		Where("action IN ?", []string{
			model.ActionApproveUser, model.ActionBlockUser,
			model.ActionUnblockUser, model.ActionGrantAdmin,
		}).Count(&audits).Error)
	assert.EqualValues(t, 4, audits)
}

func TestResetPasswordRequiresNameAndEmailMatch(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)
	user := seedUser(t, db, "maria", false)

	err := svc.ResetPassword(context.Background(), ResetPasswordRequest{
		Name:            "Someone Else",
		Email:           user.Email,
		NewPassword:     "newsecret",
		ConfirmPassword: "newsecret",
	})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	err = svc.ResetPassword(context.Background(), ResetPasswordRequest{
		Name:            user.Name,
		Email:           user.Email,
		NewPassword:     "newsecret",
		ConfirmPassword: "newsecret",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginRequest{Username: "maria", Password: "newsecret"})
	require.NoError(t, err)
}

func TestListActiveUsersExcludesPendingAndBlocked(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)
	seedUser(t, db, "ativa", false)
	blocked := seedUser(t, db, "bloqueada", false)
	require.NoError(t, db.Model(blocked).Update("blocked", true).Error)
	_, err := svc.Register(context.Background(), registerReq("pendente"))
	require.NoError(t, err)

	active, err := svc.ListActiveUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "ativa", active[0].Username)

	all, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
