package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the lifetime of tokens minted without an explicit one.
const DefaultTTL = time.Hour * 24 * 7

// GenerateToken creates a new HS256 JWT for a given user, shaped like the
// tokens the identity provider issues: the user id in sub and the display
// name in user_metadata.full_name.
func GenerateToken(secret, userID, username string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is empty")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
		"user_metadata": map[string]any{
			"full_name": username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(secret))
}
