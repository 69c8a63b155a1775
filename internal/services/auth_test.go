package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/ceustudio-backend/internal/platform/apierr"
	"github.com/yungbote/ceustudio-backend/internal/platform/ctxutil"
	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
)

func newAdminAuth(t *testing.T) *authService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	as, err := NewAuthService(logger.NewNop(), AuthConfig{
		JWTSecretKey:      testSecret,
		AccessTTL:         time.Hour,
		AdminEmail:        "Ops@Example.com",
		AdminPasswordHash: string(hash),
	})
	require.NoError(t, err)
	return as.(*authService)
}

func TestNewAuthServiceRequiresSecret(t *testing.T) {
	_, err := NewAuthService(logger.NewNop(), AuthConfig{})
	require.Error(t, err)
}

func TestLearnerTokenRoundTrip(t *testing.T) {
	as := newTestAuth()
	id := uuid.New()
	tok, err := as.IssueLearnerToken(id, "ada@example.com")
	require.NoError(t, err)

	ctx, err := as.SetContextFromToken(context.Background(), tok)
	require.NoError(t, err)
	ld := ctxutil.GetLearnerData(ctx)
	require.NotNil(t, ld)
	assert.Equal(t, id, ld.LearnerID)
	assert.Equal(t, "ada@example.com", ld.Email)
	assert.Equal(t, tok, ld.Token)
}

func TestSetContextFromTokenRejects(t *testing.T) {
	as := newAdminAuth(t)
	adminTok, err := as.AdminLogin(context.Background(), "ops@example.com", "hunter22")
	require.NoError(t, err)

	expired := newAdminAuth(t)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	oldTok, err := expired.IssueLearnerToken(uuid.New(), "a@b.co")
	require.NoError(t, err)

	other, err := NewAuthService(logger.NewNop(), AuthConfig{JWTSecretKey: "different"})
	require.NoError(t, err)
	foreignTok, err := other.IssueLearnerToken(uuid.New(), "a@b.co")
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"empty":          "",
		"garbage":        "not-a-jwt",
		"admin audience": adminTok,
		"expired":        oldTok,
		"wrong secret":   foreignTok,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := as.SetContextFromToken(context.Background(), tok)
			require.Error(t, err)
			assert.Equal(t, http.StatusUnauthorized, apierr.As(err).Status)
		})
	}
}

func TestAdminLogin(t *testing.T) {
	as := newAdminAuth(t)

	tok, err := as.AdminLogin(context.Background(), " OPS@example.com ", "hunter22")
	require.NoError(t, err)
	require.NoError(t, as.VerifyAdminSession(tok))

	_, err = as.AdminLogin(context.Background(), "ops@example.com", "wrong")
	assert.True(t, errors.Is(err, apierr.ErrUnauthorized))

	_, err = as.AdminLogin(context.Background(), "someone@example.com", "hunter22")
	assert.True(t, errors.Is(err, apierr.ErrUnauthorized))

	learnerTok, err := as.IssueLearnerToken(uuid.New(), "a@b.co")
	require.NoError(t, err)
	assert.Error(t, as.VerifyAdminSession(learnerTok))
	assert.Error(t, as.VerifyAdminSession("authenticated"))
}

func TestAdminLoginWithoutConfiguredCredentials(t *testing.T) {
	as := newTestAuth()
	_, err := as.AdminLogin(context.Background(), "", "")
	assert.True(t, errors.Is(err, apierr.ErrUnauthorized))
}
