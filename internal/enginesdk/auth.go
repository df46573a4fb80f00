package enginesdk

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/imroc/req/v3"
)

const (
	v1AuthRefresh = "/api/v1/auth/refresh"
)

// ParseToken decodes the claims of a token without verifying its signature.
// Only the engine holds the signing key; the client just needs the token's
// type and expiry to decide whether it is still usable.
func ParseToken(tokenStr string, tokenType AuthTokenType) (*AuthClaims, error) {
	var claims AuthClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, &claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	if claims.Type != tokenType {
		return nil, fmt.Errorf("invalid token type: got %q, want %q", claims.Type, tokenType)
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("token expired at %s", claims.ExpiresAt)
	}

	return &claims, nil
}

// RefreshAuthTokens exchanges a refresh token for a fresh access/refresh pair.
func RefreshAuthTokens(ctx context.Context, engineURL string, refreshToken string) (*AuthTokenResponse, error) {
	if _, err := url.ParseRequestURI(engineURL); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNoEngineURL, engineURL)
	}

	if refreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	var resp AuthTokenResponse

	res, err := req.C().
		SetBaseURL(engineURL).
		SetUserAgent(PrefSyncUserAgent).
		SetJsonMarshal(jsonMarshal).
		SetJsonUnmarshal(jsonUnmarshal).
		R().
		SetContext(ctx).
		SetBody(&RefreshTokenRequest{RefreshToken: refreshToken}).
		SetSuccessResult(&resp).
		SetErrorResult(&APIError{}).
		Post(v1AuthRefresh)

	if err := handleAPIError(res, err, "auth refresh"); err != nil {
		return nil, err
	}

	return &resp, nil
}
