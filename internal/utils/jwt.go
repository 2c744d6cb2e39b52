// internal/utils/jwt.go
package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	tokenIssuer = "barter-marketplace"

	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type JWTClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email,omitempty"`
	Anonymous bool   `json:"anonymous"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// CustomTokenClaims are minted by a trusted backend and exchanged for a
// session. The subject names the external identity.
type CustomTokenClaims struct {
	DisplayName string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

var jwtSecret = []byte("your-secret-key-change-in-production")

func SetJWTSecret(secret string) {
	jwtSecret = []byte(secret)
}

func hmacKey(secret []byte) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}
}

func generateToken(userID uuid.UUID, email string, anonymous bool, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		UserID:    userID.String(),
		Email:     email,
		Anonymous: anonymous,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   userID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func GenerateJWT(userID uuid.UUID, email string, anonymous bool, ttlHours int) (string, error) {
	return generateToken(userID, email, anonymous, TokenTypeAccess, time.Duration(ttlHours)*time.Hour)
}

func GenerateRefreshToken(userID uuid.UUID, ttlHours int) (string, error) {
	return generateToken(userID, "", false, TokenTypeRefresh, time.Duration(ttlHours)*time.Hour)
}

func parseToken(tokenString, tokenType string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, hmacKey(jwtSecret))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.TokenType != tokenType {
		return nil, errors.New("wrong token type")
	}
	return claims, nil
}

func ValidateJWT(tokenString string) (*JWTClaims, error) {
	return parseToken(tokenString, TokenTypeAccess)
}

func ValidateRefreshToken(tokenString string) (*JWTClaims, error) {
	return parseToken(tokenString, TokenTypeRefresh)
}

// RemainingTTL is how long a token stays valid; zero once expired.
func (c *JWTClaims) RemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	if ttl := time.Until(c.ExpiresAt.Time); ttl > 0 {
		return ttl
	}
	return 0
}

func GenerateCustomToken(secret, subject, displayName string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := CustomTokenClaims{
		DisplayName: displayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   subject,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ValidateCustomToken(secret, tokenString string) (*CustomTokenClaims, error) {
	if secret == "" {
		return nil, errors.New("custom tokens are not enabled")
	}
	token, err := jwt.ParseWithClaims(tokenString, &CustomTokenClaims{}, hmacKey([]byte(secret)))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*CustomTokenClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid custom token")
	}
	return claims, nil
}
