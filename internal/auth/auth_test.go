package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ttconnect/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	a := auth.New("test-secret")

	token, err := a.GenerateToken("user-1", "brand@example.com", "brand")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := a.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "brand@example.com", claims.Email)
	require.Equal(t, "brand", claims.Role)
	require.WithinDuration(t, time.Now().Add(auth.TokenTTL), claims.ExpiresAt.Time, time.Minute)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := auth.New("secret-a").GenerateToken("user-1", "x@example.com", "brand")
	require.NoError(t, err)

	_, err = auth.New("secret-b").ValidateToken(token)
	require.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	a := auth.New("test-secret")

	_, err := a.ValidateToken("not-a-token")
	require.Error(t, err)
}

// expiredToken builds a correctly signed token whose expiry is in the past.
func expiredToken(t *testing.T, secret string) string {
	t.Helper()
	claims := &auth.Claims{
		UserID: "user-1",
		Email:  "x@example.com",
		Role:   "brand",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-48 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestValidateTokenExpired(t *testing.T) {
	a := auth.New("test-secret")

	_, err := a.ValidateToken(expiredToken(t, "test-secret"))
	require.Error(t, err)
}

func TestTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	require.Equal(t, "", auth.TokenFromRequest(req))

	req.Header.Set("Authorization", "Bearer abc123")
	require.Equal(t, "abc123", auth.TokenFromRequest(req))

	req.Header.Set("Authorization", "bearer abc123")
	require.Equal(t, "abc123", auth.TokenFromRequest(req))

	req.Header.Set("Authorization", "Basic abc123")
	require.Equal(t, "", auth.TokenFromRequest(req))
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret", hash)

	require.True(t, auth.CheckPassword("s3cret", hash))
	require.False(t, auth.CheckPassword("wrong", hash))
}

func gatedHandler(a *auth.Auth, roles ...string) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(claims.Role))
	})
	return a.RequireRole(roles...)(next)
}

func TestRequireRoleMissingToken(t *testing.T) {
	a := auth.New("test-secret")

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	gatedHandler(a, "brand").ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "error")
}

func TestRequireRoleInvalidToken(t *testing.T) {
	a := auth.New("test-secret")

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	gatedHandler(a, "brand").ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

// An expired credential with the wrong role must fail the credential check
// first: 401, never 403.
func TestRequireRoleExpiredBeforeRoleMismatch(t *testing.T) {
	a := auth.New("test-secret")

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+expiredToken(t, "test-secret"))
	w := httptest.NewRecorder()
	gatedHandler(a, "supplier").ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRoleMismatch(t *testing.T) {
	a := auth.New("test-secret")
	token, err := a.GenerateToken("user-1", "x@example.com", "supplier")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	gatedHandler(a, "brand").ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRoleAllows(t *testing.T) {
	a := auth.New("test-secret")
	token, err := a.GenerateToken("user-1", "x@example.com", "brand")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	gatedHandler(a, "brand", "supplier").ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "brand", w.Body.String())
}

func TestRequireAuthAnyRole(t *testing.T) {
	a := auth.New("test-secret")
	token, err := a.GenerateToken("user-1", "x@example.com", "supplier")
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	a.RequireAuth()(next).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}
