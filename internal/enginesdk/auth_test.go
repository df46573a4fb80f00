package enginesdk

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToken_TypeAndExpiry(t *testing.T) {
	now := time.Now()
	claims := &AuthClaims{
		Type: AccessToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "device-1234",
			ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
		},
	}
	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)

	parsed, err := ParseToken(tokenStr, AccessToken)
	require.NoError(t, err)
	assert.Equal(t, AccessToken, parsed.Type)

	_, err = ParseToken(tokenStr, RefreshToken)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token type")

	expiredClaims := &AuthClaims{
		Type: RefreshToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "device-1234",
			ExpiresAt: jwt.NewNumericDate(now.Add(-10 * time.Minute)),
		},
	}
	expiredStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expiredClaims).SignedString([]byte("k"))
	require.NoError(t, err)
	_, err = ParseToken(expiredStr, RefreshToken)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestAuthClaims_Validate(t *testing.T) {
	claims := &AuthClaims{
		Type: AccessToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "device-1234",
		},
	}

	assert.NoError(t, claims.Validate("device-1234"))
	assert.Error(t, claims.Validate("device-5678"))
}

func TestRefreshAuthTokens_InputValidation(t *testing.T) {
	_, err := RefreshAuthTokens(t.Context(), "not-a-url", "tok")
	assert.ErrorIs(t, err, ErrNoEngineURL)

	_, err = RefreshAuthTokens(t.Context(), "http://127.0.0.1:8080", "")
	assert.ErrorIs(t, err, ErrNoRefreshToken)
}

func TestRefreshAuthTokens_RotatesPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, v1AuthRefresh, r.URL.Path)

		var body RefreshTokenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "old-refresh", body.RefreshToken)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(&AuthTokenResponse{
			AccessToken:  "new-access",
			RefreshToken: "new-refresh",
		})
	}))
	t.Cleanup(srv.Close)

	tokens, err := RefreshAuthTokens(t.Context(), srv.URL, "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "new-access", tokens.AccessToken)
	assert.Equal(t, "new-refresh", tokens.RefreshToken)
}

func TestRefreshAuthTokens_EngineError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(NewAPIError(CodeAuthTokenRefreshFailed, "refresh token revoked"))
	}))
	t.Cleanup(srv.Close)

	_, err := RefreshAuthTokens(t.Context(), srv.URL, "revoked")
	require.Error(t, err)
	assert.Contains(t, err.Error(), CodeAuthTokenRefreshFailed)
}
