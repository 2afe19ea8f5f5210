package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// jwtSecret is the secret key used for signing and verifying JWT tokens.
var jwtSecret []byte

// TokenTTL is how long an issued token stays valid.
const TokenTTL = 24 * time.Hour

// SetJWTSecret sets the JWT secret key from environment variables.
func SetJWTSecret(secret string) {
	jwtSecret = []byte(secret)
}

// Claims identify the caller. Role and account are re-read from the user row on
// login, so a role change takes effect with the next token.
type Claims struct {
	UserID    int    `json:"user_id"`
	Role      string `json:"role"`
	AccountID int    `json:"account_id"`
	jwt.RegisteredClaims
}

// GenerateJWT generates a new JWT token for a given user.
func GenerateJWT(userID int, role string, accountID int) (string, error) {
	if len(jwtSecret) == 0 {
		return "", errors.New("JWT secret not set")
	}

	now := time.Now()
	claims := Claims{
		UserID:    userID,
		Role:      role,
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ParseJWT parses and validates a JWT token string.
func ParseJWT(tokenString string) (*Claims, error) {
	if len(jwtSecret) == 0 {
		return nil, errors.New("JWT secret not set")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.UserID <= 0 {
		return nil, errors.New("user ID not found in token claims")
	}
	return claims, nil
}
