package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func newTestService(t *testing.T, now func() time.Time) *hmacJWTService {
	t.Helper()
	svc, err := NewJWTService(config.AuthConfig{
		JWTSecret:                   testSecret,
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 7 * 24 * 60,
	})
	require.NoError(t, err)
	impl := svc.(*hmacJWTService)
	impl.timeFunc = now
	return impl
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestNewJWTServiceRejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short"})
	assert.ErrorIs(t, err, ErrWeakSecret)
}

func TestGenerateAndValidateTokens(t *testing.T) {
	t.Parallel()

	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, fixedClock(issued))
	userID := uuid.New()
	ctx := context.Background()

	access, err := svc.GenerateToken(ctx, userID)
	require.NoError(t, err)
	refresh, err := svc.GenerateRefreshToken(ctx, userID)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(ctx, access)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, issued.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.Equal(t, time.Hour, svc.AccessTokenLifetime())

	claims, err = svc.ValidateRefreshToken(ctx, refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
	assert.Equal(t, issued.Add(7*24*time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestValidateTokenErrors(t *testing.T) {
	t.Parallel()

	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()
	ctx := context.Background()
	issuer := newTestService(t, fixedClock(issued))
	access, err := issuer.GenerateToken(ctx, userID)
	require.NoError(t, err)
	refresh, err := issuer.GenerateRefreshToken(ctx, userID)
	require.NoError(t, err)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtCustomClaims{
		UserID:    userID,
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(time.Hour)),
		},
	}).SignedString([]byte("another-secret-that-is-long-enough-too"))
	require.NoError(t, err)

	notBefore, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtCustomClaims{
		UserID:    userID,
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issued),
			NotBefore: jwt.NewNumericDate(issued.Add(time.Hour)),
			ExpiresAt: jwt.NewNumericDate(issued.Add(2 * time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name     string
		now      time.Time
		validate func(s *hmacJWTService, token string) error
		token    string
		wantErr  error
	}{
		{
			name:     "expired access token",
			now:      issued.Add(2 * time.Hour),
			validate: validateAccess,
			token:    access,
			wantErr:  ErrExpiredToken,
		},
		{
			name:     "within clock skew",
			now:      issued.Add(time.Hour + time.Minute),
			validate: validateAccess,
			token:    access,
		},
		{
			name:     "refresh token used as access token",
			now:      issued,
			validate: validateAccess,
			token:    refresh,
			wantErr:  ErrWrongTokenType,
		},
		{
			name:     "access token used as refresh token",
			now:      issued,
			validate: validateRefresh,
			token:    access,
			wantErr:  ErrWrongTokenType,
		},
		{
			name:     "expired refresh token",
			now:      issued.Add(8 * 24 * time.Hour),
			validate: validateRefresh,
			token:    refresh,
			wantErr:  ErrExpiredRefreshToken,
		},
		{
			name:     "wrong signature",
			now:      issued,
			validate: validateAccess,
			token:    forged,
			wantErr:  ErrInvalidToken,
		},
		{
			name:     "malformed refresh token",
			now:      issued,
			validate: validateRefresh,
			token:    "not.a.jwt",
			wantErr:  ErrInvalidRefreshToken,
		},
		{
			name:     "not yet valid",
			now:      issued,
			validate: validateAccess,
			token:    notBefore,
			wantErr:  ErrTokenNotYetValid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := newTestService(t, fixedClock(tt.now))
			err := tt.validate(svc, tt.token)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func validateAccess(s *hmacJWTService, token string) error {
	_, err := s.ValidateToken(context.Background(), token)
	return err
}

func validateRefresh(s *hmacJWTService, token string) error {
	_, err := s.ValidateRefreshToken(context.Background(), token)
	return err
}

func TestBcryptVerifier(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cretpass"), bcrypt.MinCost)
	require.NoError(t, err)

	v := NewBcryptVerifier()
	assert.NoError(t, v.Compare(string(hash), "s3cretpass"))
	assert.Error(t, v.Compare(string(hash), "wrong"))
}
