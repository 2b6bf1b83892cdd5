package vortex

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const apiKeyPrefix = "VRTX"

// Claims is the payload of a Vortex user JWT
type Claims struct {
	jwt.RegisteredClaims
	UserID      string       `json:"userId"`
	Identifiers []Identifier `json:"identifiers"`
	Groups      []Group      `json:"groups"`
	Role        string       `json:"role,omitempty"`
	Expires     int64        `json:"expires"`
}

// apiKey is a parsed VRTX.<id>.<secret> key
type apiKey struct {
	id     string
	secret string
}

func parseAPIKey(raw string) (*apiKey, error) {
	parts := strings.SplitN(raw, ".", 3)
	if len(parts) != 3 || parts[0] != apiKeyPrefix {
		return nil, fmt.Errorf("%w: expected %s.<id>.<secret>", ErrInvalidAPIKey, apiKeyPrefix)
	}

	idBytes, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return nil, fmt.Errorf("%w: key id is not base64url: %v", ErrInvalidAPIKey, err)
	}
	id, err := uuid.FromBytes(idBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: key id is not a UUID: %v", ErrInvalidAPIKey, err)
	}
	if parts[2] == "" {
		return nil, fmt.Errorf("%w: empty secret", ErrInvalidAPIKey)
	}

	return &apiKey{id: id.String(), secret: parts[2]}, nil
}

// signingKey derives the HS256 key as HMAC-SHA256(secret, id)
func (k *apiKey) signingKey() []byte {
	mac := hmac.New(sha256.New, []byte(k.secret))
	mac.Write([]byte(k.id))
	return mac.Sum(nil)
}

// GenerateJWT signs a user JWT with the key derived from the API key
func (c *Client) GenerateJWT(_ context.Context, p JWTParams) (string, error) {
	if c.keyErr != nil {
		return "", c.keyErr
	}
	if p.UserID == "" {
		return "", fmt.Errorf("user id is required")
	}

	now := c.now()
	expiresAt := p.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = now.Add(time.Hour)
	}

	identifiers := p.Identifiers
	if identifiers == nil {
		identifiers = []Identifier{}
	}
	groups := p.Groups
	if groups == nil {
		groups = []Group{}
	}

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:      p.UserID,
		Identifiers: identifiers,
		Groups:      groups,
		Role:        p.Role,
		Expires:     expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = c.key.id

	signed, err := token.SignedString(c.key.signingKey())
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT: %w", err)
	}
	return signed, nil
}

// ParseJWT verifies a token produced by GenerateJWT with the same API key
func (c *Client) ParseJWT(tokenString string) (*Claims, error) {
	if c.keyErr != nil {
		return nil, c.keyErr
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		if kid, _ := token.Header["kid"].(string); kid != c.key.id {
			return nil, fmt.Errorf("unexpected key id %q", kid)
		}
		return c.key.signingKey(), nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// KeyID returns the API key id, or an empty string for an unusable key
func (c *Client) KeyID() string {
	if c.key == nil {
		return ""
	}
	return c.key.id
}
