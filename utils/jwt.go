package utils

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const RoleAdmin = "admin"

var ErrInvalidToken = errors.New("invalid or expired token")

// AppMetadata mirrors the app_metadata block of the hosted auth tokens the
// storefront used before, so existing admin tokens keep validating.
type AppMetadata struct {
	Role string `json:"role,omitempty"`
}

type AdminClaims struct {
	Email       string      `json:"email"`
	AppMetadata AppMetadata `json:"app_metadata"`
	jwt.RegisteredClaims
}

func GenerateAdminToken(secret []byte, email, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &AdminClaims{
		Email:       strings.ToLower(email),
		AppMetadata: AppMetadata{Role: role},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strings.ToLower(email),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "MyHobbyCoffee",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func ParseAdminToken(tokenString string, secret []byte) (*AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IsAllowlisted compares case-insensitively; allow is expected lower-cased.
func IsAllowlisted(email string, allow []string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, candidate := range allow {
		if candidate == email {
			return true
		}
	}
	return false
}

// BearerToken strips a case-insensitive "Bearer " prefix.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) >= 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
