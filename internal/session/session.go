// Package session resolves the UI session identity every coordinator
// operation runs under. The identity is carried as an explicit value, not
// looked up from globals.
package session

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

// Context identifies one editing session of one user.
type Context struct {
	SessionID string
	UserID    string
}

type InvalidTokenError struct {
	Reason string
}

func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("invalid session token: %s", e.Reason)
}

type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

type sessionClaims struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	jwt.RegisteredClaims
}

// Parse validates the token and extracts the session identity.
func (p *Parser) Parse(token string) (Context, error) {
	claims := &sessionClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		validationErr := &jwt.ValidationError{}
		if errors.As(err, &validationErr) {
			return Context{}, &InvalidTokenError{Reason: validationErr.Error()}
		}
		return Context{}, fmt.Errorf("parse token: %w", err)
	}

	if !parsed.Valid {
		return Context{}, &InvalidTokenError{Reason: "token is not valid"}
	}
	if claims.SessionID == "" || claims.UserID == "" {
		return Context{}, &InvalidTokenError{Reason: "missing session or user claim"}
	}

	return Context{SessionID: claims.SessionID, UserID: claims.UserID}, nil
}

// Issue creates a signed token for the given identity. Used by tooling and
// tests; the production tokens come from the backend's auth service.
func (p *Parser) Issue(sess Context) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &sessionClaims{
		SessionID: sess.SessionID,
		UserID:    sess.UserID,
	})

	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}
