// Package auth resolves a presented credential token to a user
// identity. The check runs once, synchronously with connection
// admission; no event handler runs before it succeeds.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ledyaev/amity/internal/domain"
)

// Claims is the signed token body issued by the account service.
type Claims struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserFinder is the slice of the persistence contract admission needs.
type UserFinder interface {
	FindUser(ctx context.Context, id domain.UserID) (*domain.User, error)
}

type Verifier struct {
	secret  []byte
	users   UserFinder
	timeout time.Duration
}

func NewVerifier(secret string, users UserFinder, timeout time.Duration) *Verifier {
	return &Verifier{secret: []byte(secret), users: users, timeout: timeout}
}

// Verify validates the token signature and expiry, then confirms the
// resolved user still exists within the configured bound. Every
// failure maps to domain.ErrAuthentication.
func (v *Verifier) Verify(ctx context.Context, token string) (domain.Profile, error) {
	if token == "" {
		return domain.Profile{}, fmt.Errorf("%w: missing token", domain.ErrAuthentication)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid || claims.ID == "" {
		return domain.Profile{}, fmt.Errorf("%w: %v", domain.ErrAuthentication, err)
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	user, err := v.users.FindUser(ctx, domain.UserID(claims.ID))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Profile{}, fmt.Errorf("%w: user no longer exists", domain.ErrAuthentication)
		}
		return domain.Profile{}, fmt.Errorf("%w: %v", domain.ErrAuthentication, err)
	}

	profile := user.Profile
	profile.Online = true
	return profile, nil
}

// TokenFromRequest extracts the credential from the Authorization
// header, falling back to the token query parameter for transports
// that cannot set headers.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return r.URL.Query().Get("token")
}
