// Package auth resolves the user behind an API request.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type ctxKey struct{}

var ErrNoUser = errors.New("no user in context")

// Authenticator reads HS256 bearer tokens whose subject is the user id. With
// no secret configured every request runs as the demo user.
type Authenticator struct {
	secret   []byte
	demoUser uuid.UUID
}

func New(secret string, demoUser uuid.UUID) *Authenticator {
	return &Authenticator{secret: []byte(secret), demoUser: demoUser}
}

func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(a.secret) == 0 {
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), a.demoUser)))
			return
		}

		raw, ok := bearer(r.Header.Get("Authorization"))
		if !ok {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		userID, err := a.Verify(raw)
		if err != nil {
			slog.Debug("rejected token", "error", err)
			http.Error(w, "invalid token", http.StatusUnauthorized)

			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), userID)))
	})
}

// Verify checks the token signature and expiry and returns its subject.
func (a *Authenticator) Verify(raw string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return uuid.Nil, fmt.Errorf("parsing token: %w", err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parsing subject: %w", err)
	}

	return userID, nil
}

// Issue signs a token for userID valid for ttl.
func (a *Authenticator) Issue(userID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})

	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

func bearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}

	return strings.TrimSpace(token), true
}

func WithUser(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

func UserFrom(ctx context.Context) (uuid.UUID, error) {
	userID, ok := ctx.Value(ctxKey{}).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, ErrNoUser
	}

	return userID, nil
}
