package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tutoria-app/tutoria-api/internal/models"
	appErrors "github.com/tutoria-app/tutoria-api/pkg/errors"
)

type mockAuthUserRepo struct {
	users map[string]*models.User
}

func (m *mockAuthUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func newAuthFixture(t *testing.T) (*AuthService, *models.User) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{ID: "u1", Email: "ana@example.com", PasswordHash: string(hash)}
	repo := &mockAuthUserRepo{users: map[string]*models.User{user.Email: user}}
	svc := NewAuthService(repo, zap.NewNop(), AuthConfig{Secret: "test-secret", Expiration: 30 * time.Minute, Issuer: "tutoria-api"})
	return svc, user
}

func TestAuthLoginIssuesToken(t *testing.T) {
	svc, user := newAuthFixture(t)

	res, err := svc.Login(context.Background(), user.Email, "secret123")
	require.NoError(t, err)
	assert.Equal(t, "bearer", res.TokenType)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.Email, claims.Subject)
	assert.False(t, claims.IsAdmin)
}

func TestAuthLoginWrongPassword(t *testing.T) {
	svc, user := newAuthFixture(t)

	_, err := svc.Login(context.Background(), user.Email, "wrong")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthLoginUnknownEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), "nobody@example.com", "secret123")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthValidateTokenRejectsTampered(t *testing.T) {
	svc, user := newAuthFixture(t)

	res, err := svc.Login(context.Background(), user.Email, "secret123")
	require.NoError(t, err)

	other := NewAuthService(&mockAuthUserRepo{}, zap.NewNop(), AuthConfig{Secret: "different-secret"})
	_, err = other.ValidateToken(res.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Status, appErrors.FromError(err).Status)
}

func TestAuthResolveUserDeletedAccount(t *testing.T) {
	svc, user := newAuthFixture(t)

	res, err := svc.Login(context.Background(), user.Email, "secret123")
	require.NoError(t, err)
	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)

	empty := NewAuthService(&mockAuthUserRepo{}, zap.NewNop(), AuthConfig{Secret: "test-secret"})
	_, err = empty.ResolveUser(context.Background(), claims)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Status, appErrors.FromError(err).Status)
}
