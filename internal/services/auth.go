package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/ceustudio-backend/internal/platform/apierr"
	"github.com/yungbote/ceustudio-backend/internal/platform/ctxutil"
	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
)

const (
	audienceLearner = "learner"
	audienceAdmin   = "admin"
)

type JWTClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type AuthConfig struct {
	JWTSecretKey      string
	AccessTTL         time.Duration
	AdminEmail        string
	AdminPasswordHash string
	AdminSessionTTL   time.Duration
}

type AuthService interface {
	IssueLearnerToken(learnerID uuid.UUID, email string) (string, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	AdminLogin(ctx context.Context, email, password string) (string, error)
	VerifyAdminSession(tokenString string) error
	GetAccessTTL() time.Duration
	GetAdminSessionTTL() time.Duration
}

type authService struct {
	log          *logger.Logger
	jwtSecretKey []byte
	accessTTL    time.Duration
	adminEmail   string
	adminHash    []byte
	adminTTL     time.Duration
	now          func() time.Time
}

func NewAuthService(log *logger.Logger, cfg AuthConfig) (AuthService, error) {
	if strings.TrimSpace(cfg.JWTSecretKey) == "" {
		return nil, errors.New("jwt secret key required")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 24 * time.Hour
	}
	if cfg.AdminSessionTTL <= 0 {
		cfg.AdminSessionTTL = 7 * 24 * time.Hour
	}
	return &authService{
		log:          log.With("service", "AuthService"),
		jwtSecretKey: []byte(cfg.JWTSecretKey),
		accessTTL:    cfg.AccessTTL,
		adminEmail:   strings.ToLower(strings.TrimSpace(cfg.AdminEmail)),
		adminHash:    []byte(strings.TrimSpace(cfg.AdminPasswordHash)),
		adminTTL:     cfg.AdminSessionTTL,
		now:          time.Now,
	}, nil
}

func (as *authService) IssueLearnerToken(learnerID uuid.UUID, email string) (string, error) {
	return as.sign(learnerID.String(), email, audienceLearner, as.accessTTL)
}

func (as *authService) sign(subject, email, audience string, ttl time.Duration) (string, error) {
	now := as.now()
	claims := JWTClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(as.jwtSecretKey)
}

func (as *authService) parse(tokenString, audience string) (*JWTClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (any, error) {
		return as.jwtSecretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(as.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid or expired token")
	}
	return claims, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, apierr.Unauthorized("missing token")
	}
	claims, err := as.parse(tokenString, audienceLearner)
	if err != nil {
		return ctx, apierr.New(http.StatusUnauthorized, "unauthorized", err)
	}
	learnerID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, apierr.New(http.StatusUnauthorized, "unauthorized", fmt.Errorf("invalid learner id in token: %w", err))
	}
	return ctxutil.WithLearnerData(ctx, &ctxutil.LearnerData{
		Token:     tokenString,
		LearnerID: learnerID,
		Email:     claims.Email,
	}), nil
}

// AdminLogin checks the configured operator credentials and returns a signed
// value for the admin_session cookie.
func (as *authService) AdminLogin(ctx context.Context, email, password string) (string, error) {
	if as.adminEmail == "" || len(as.adminHash) == 0 {
		as.log.Warn("admin login attempted but no admin credentials are configured")
		return "", apierr.Unauthorized("Unauthorized")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(as.adminEmail)) == 1
	pwErr := bcrypt.CompareHashAndPassword(as.adminHash, []byte(password))
	if !emailOK || pwErr != nil {
		return "", apierr.Unauthorized("Unauthorized")
	}
	return as.sign(audienceAdmin, as.adminEmail, audienceAdmin, as.adminTTL)
}

func (as *authService) VerifyAdminSession(tokenString string) error {
	if tokenString == "" {
		return apierr.Unauthorized("Unauthorized")
	}
	claims, err := as.parse(tokenString, audienceAdmin)
	if err != nil || claims.Subject != audienceAdmin {
		return apierr.Unauthorized("Unauthorized")
	}
	return nil
}

func (as *authService) GetAccessTTL() time.Duration { return as.accessTTL }

func (as *authService) GetAdminSessionTTL() time.Duration { return as.adminTTL }
