package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/erazemk/toolshed/internal/model"
)

// Claims represents the claims the backend puts into its access tokens.
type Claims struct {
	UserID   int64  `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// ReadToken decodes the claims of a backend token without verifying its
// signature. The backend holds the signing key; the client only reads the
// identity fields and the expiry, and every request is re-validated server
// side.
func ReadToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims)
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if claims.Username == "" {
		claims.Username = claims.Subject
	}
	return claims, nil
}

// NewIdentity builds the session identity for a freshly issued token. Values
// the login response supplied win over values read from the token; tokens
// that cannot be decoded are kept opaque.
func NewIdentity(token, username, role string, userID int64) model.Identity {
	id := model.Identity{
		Token:    token,
		Username: username,
		UserID:   userID,
		Role:     role,
	}

	claims, err := ReadToken(token)
	if err != nil {
		return id
	}
	if id.Username == "" {
		id.Username = claims.Username
	}
	if id.UserID == 0 {
		id.UserID = claims.UserID
	}
	if id.Role == "" {
		id.Role = claims.Role
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id
}

// SignToken issues an HS256 token with the given identity fields. It backs
// the in-memory backend used in tests and local development.
func SignToken(secret string, userID int64, username, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies an HS256 token signed with secret.
func ValidateToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Username == "" {
		claims.Username = claims.Subject
	}
	return claims, nil
}
