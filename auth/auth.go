package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
)

const issuer = "tubely-access"

// UnauthorizedError is returned for a missing, malformed, or expired token.
type UnauthorizedError struct {
	Reason string
	Err    error
}

func (e *UnauthorizedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unauthorized: %s: %v", e.Reason, e.Err)
	}
	return "unauthorized: " + e.Reason
}

func (e *UnauthorizedError) Unwrap() error { return e.Err }

// Issue signs an HS256 access token whose subject is userID.
func Issue(userID, secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is empty")
	}
	now := time.Now().UTC()
	claims := jwt.StandardClaims{
		Issuer:    issuer,
		Subject:   userID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Validate checks signature, expiry and issuer and returns the user id.
func Validate(token, secret string) (string, error) {
	claims := &jwt.StandardClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", &UnauthorizedError{Reason: "invalid token", Err: err}
	}
	if claims.Issuer != issuer {
		return "", &UnauthorizedError{Reason: "invalid issuer"}
	}
	if claims.Subject == "" {
		return "", &UnauthorizedError{Reason: "missing subject"}
	}
	return claims.Subject, nil
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(headers http.Header) (string, error) {
	value := strings.TrimSpace(headers.Get("Authorization"))
	if value == "" {
		return "", &UnauthorizedError{Reason: "missing authorization header"}
	}
	scheme, token, ok := strings.Cut(value, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", &UnauthorizedError{Reason: "malformed authorization header"}
	}
	return strings.TrimSpace(token), nil
}
