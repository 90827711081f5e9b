// Package auth resolves bearer credentials to user identities.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"dreamrelay/backend/internal/identity"
	"dreamrelay/backend/internal/models"

	gojwt "github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
)

// Verifier turns a bearer token into the identity it was issued to.
type Verifier interface {
	Verify(ctx context.Context, token string) (models.Identity, error)
}

// TokenFromRequest reads the bearer token from the Authorization header, or
// from the token query parameter since browsers cannot set headers on a
// websocket upgrade.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

// JWTVerifier validates HMAC-signed tokens locally. The user id comes from
// the sub claim and the display name from user_metadata, like the identity
// provider issues them.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (models.Identity, error) {
	if token == "" {
		return models.Identity{}, ErrMissingToken
	}

	claims := gojwt.MapClaims{}
	parsed, err := gojwt.ParseWithClaims(token, claims, func(token *gojwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*gojwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return models.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return models.Identity{}, fmt.Errorf("%w: no subject", ErrInvalidToken)
	}

	email, _ := claims["email"].(string)
	metadata, _ := claims["user_metadata"].(map[string]any)
	return models.Identity{
		UserID:   sub,
		Username: identity.DisplayName(metadata, email),
		Email:    email,
	}, nil
}

// RemoteVerifier asks the identity provider who owns the token.
type RemoteVerifier struct {
	client *identity.Client
}

func NewRemoteVerifier(client *identity.Client) *RemoteVerifier {
	return &RemoteVerifier{client: client}
}

func (v *RemoteVerifier) Verify(ctx context.Context, token string) (models.Identity, error) {
	if token == "" {
		return models.Identity{}, ErrMissingToken
	}
	u, err := v.client.User(ctx, token)
	if err != nil {
		var perr *identity.ProviderError
		if errors.As(err, &perr) && perr.Status < http.StatusInternalServerError {
			return models.Identity{}, fmt.Errorf("%w: %s", ErrInvalidToken, perr.Message)
		}
		return models.Identity{}, fmt.Errorf("verify token: %w", err)
	}
	return u.Identity(), nil
}

// NoopVerifier accepts every connection as anonymous. Clients then identify
// themselves through their payloads; meant for local development only.
type NoopVerifier struct{}

func (NoopVerifier) Verify(context.Context, string) (models.Identity, error) {
	return models.Identity{}, nil
}
