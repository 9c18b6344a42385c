package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/mocks"
	"github.com/phrazzld/taskmanager-api/internal/service"
	"github.com/phrazzld/taskmanager-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2030, 1, 2, 15, 0, 0, 0, time.UTC)

func newAuthHandler(users *mocks.MockUserService, jwt *mocks.MockJWTService) *AuthHandler {
	h := NewAuthHandler(users, jwt, nil)
	h.now = func() time.Time { return fixedNow }
	return h
}

func testUser(t *testing.T) *domain.User {
	t.Helper()
	u, err := domain.NewUser("ada@example.com", "correct-horse", "Ada", "Lovelace")
	require.NoError(t, err)
	return u
}

func TestRegister(t *testing.T) {
	t.Parallel()

	user := testUser(t)
	var got service.RegisterInput
	users := &mocks.MockUserService{
		RegisterFn: func(_ context.Context, in service.RegisterInput) (*domain.User, error) {
			got = in
			return user, nil
		},
	}
	jwt := &mocks.MockJWTService{Token: "access", RefreshToken: "refresh", Lifetime: 30 * time.Minute}
	h := newAuthHandler(users, jwt)

	w := serve(h.Register, newRequest(t, http.MethodPost, "/api/auth/register",
		`{"email":"ada@example.com","password":"correct-horse","first_name":"Ada","last_name":"Lovelace"}`, uuid.Nil))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Ada", got.FirstName)
	resp := decodeInto[AuthResponse](t, w)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.Equal(t, "access", resp.AccessToken)
	assert.Equal(t, "refresh", resp.RefreshToken)
	assert.Equal(t, "2030-01-02T15:30:00Z", resp.ExpiresAt)
	assert.NotContains(t, w.Body.String(), "correct-horse")
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	called := false
	users := &mocks.MockUserService{
		RegisterFn: func(context.Context, service.RegisterInput) (*domain.User, error) {
			called = true
			return nil, nil
		},
	}
	h := newAuthHandler(users, &mocks.MockJWTService{})

	w := serve(h.Register, newRequest(t, http.MethodPost, "/api/auth/register",
		`{"email":"not-an-email","password":"short"}`, uuid.Nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, called)
	fields := decodeError(t, w).Fields
	assert.Equal(t, "Enter a valid email address.", fields["email"])
	assert.Equal(t, "Ensure this field has at least 8 characters.", fields["password"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	users := &mocks.MockUserService{
		RegisterFn: func(context.Context, service.RegisterInput) (*domain.User, error) {
			return nil, domain.NewValidationError("email", "user with this email already exists.", domain.ErrValidation)
		},
	}
	h := newAuthHandler(users, &mocks.MockJWTService{})

	w := serve(h.Register, newRequest(t, http.MethodPost, "/api/auth/register",
		`{"email":"ada@example.com","password":"correct-horse"}`, uuid.Nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "user with this email already exists.", decodeError(t, w).Fields["email"])
}

func TestLogin(t *testing.T) {
	t.Parallel()

	user := testUser(t)
	users := &mocks.MockUserService{
		AuthenticateFn: func(_ context.Context, email, password string) (*domain.User, error) {
			if email == "ada@example.com" && password == "correct-horse" {
				return user, nil
			}
			return nil, service.ErrInvalidCredentials
		},
	}
	h := newAuthHandler(users, &mocks.MockJWTService{Token: "access", RefreshToken: "refresh"})

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		w := serve(h.Login, newRequest(t, http.MethodPost, "/api/auth/login",
			`{"email":"ada@example.com","password":"correct-horse"}`, uuid.Nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "access", decodeInto[AuthResponse](t, w).AccessToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		w := serve(h.Login, newRequest(t, http.MethodPost, "/api/auth/login",
			`{"email":"ada@example.com","password":"nope"}`, uuid.Nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid credentials", decodeError(t, w).Error)
	})

	t.Run("empty body", func(t *testing.T) {
		t.Parallel()
		w := serve(h.Login, newRequest(t, http.MethodPost, "/api/auth/login", "", uuid.Nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Request body is required", decodeError(t, w).Error)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()
		w := serve(h.Login, newRequest(t, http.MethodPost, "/api/auth/login", `{"email":`, uuid.Nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRefreshToken(t *testing.T) {
	t.Parallel()

	active := testUser(t)
	inactive := testUser(t)
	inactive.IsActive = false

	users := &mocks.MockUserService{
		GetProfileFn: func(_ context.Context, id uuid.UUID) (*domain.User, error) {
			if id == inactive.ID {
				return inactive, nil
			}
			return active, nil
		},
	}
	jwt := &mocks.MockJWTService{
		Token:        "new-access",
		RefreshToken: "new-refresh",
		ValidateRefreshTokenFn: func(_ context.Context, token string) (*auth.Claims, error) {
			switch token {
			case "good":
				return &auth.Claims{UserID: active.ID, TokenType: auth.TokenTypeRefresh}, nil
			case "inactive":
				return &auth.Claims{UserID: inactive.ID, TokenType: auth.TokenTypeRefresh}, nil
			case "expired":
				return nil, auth.ErrExpiredRefreshToken
			default:
				return nil, auth.ErrWrongTokenType
			}
		},
	}
	h := newAuthHandler(users, jwt)

	tests := []struct {
		token  string
		status int
	}{
		{"good", http.StatusOK},
		{"inactive", http.StatusUnauthorized},
		{"expired", http.StatusUnauthorized},
		{"access-token", http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.token, func(t *testing.T) {
			t.Parallel()
			w := serve(h.RefreshToken, newRequest(t, http.MethodPost, "/api/auth/refresh",
				`{"refresh_token":"`+tc.token+`"}`, uuid.Nil))
			require.Equal(t, tc.status, w.Code, w.Body.String())
			if tc.status == http.StatusOK {
				resp := decodeInto[RefreshTokenResponse](t, w)
				assert.Equal(t, "new-access", resp.AccessToken)
				assert.Equal(t, "new-refresh", resp.RefreshToken)
				return
			}
			assert.Equal(t, "Invalid refresh token", decodeError(t, w).Error)
		})
	}
}

func TestProfile(t *testing.T) {
	t.Parallel()

	user := testUser(t)
	users := &mocks.MockUserService{
		GetProfileFn: func(_ context.Context, id uuid.UUID) (*domain.User, error) {
			require.Equal(t, user.ID, id)
			return user, nil
		},
	}
	h := newAuthHandler(users, &mocks.MockJWTService{})

	w := serve(h.Profile, newRequest(t, http.MethodGet, "/api/auth/profile", "", user.ID))
	require.Equal(t, http.StatusOK, w.Code)
	profile := decodeInto[domain.Profile](t, w)
	assert.Equal(t, user.Profile(), profile)

	w = serve(h.Profile, newRequest(t, http.MethodGet, "/api/auth/profile", "", uuid.Nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
