package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ledyaev/amity/internal/domain"
)

const testSecret = "test-secret"

type fakeUsers struct {
	users map[domain.UserID]*domain.User
}

func (f *fakeUsers) FindUser(ctx context.Context, id domain.UserID) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func newTestVerifier() *Verifier {
	users := &fakeUsers{users: map[domain.UserID]*domain.User{
		"u1": {Profile: domain.Profile{ID: "u1", Username: "alice"}},
	}}
	return NewVerifier(testSecret, users, time.Second)
}

func TestVerifyValidToken(t *testing.T) {
	v := newTestVerifier()
	token := signToken(t, testSecret, Claims{
		ID:       "u1",
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	profile, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if profile.ID != "u1" || profile.Username != "alice" {
		t.Errorf("profile = %+v", profile)
	}
	if !profile.Online {
		t.Error("resolved profile should be marked online")
	}
}

func TestVerifyMissingToken(t *testing.T) {
	v := newTestVerifier()
	if _, err := v.Verify(context.Background(), ""); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("err = %v, want ErrAuthentication", err)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	v := newTestVerifier()
	token := signToken(t, testSecret, Claims{
		ID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	if _, err := v.Verify(context.Background(), token); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("err = %v, want ErrAuthentication", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	v := newTestVerifier()
	token := signToken(t, "other-secret", Claims{ID: "u1"})
	if _, err := v.Verify(context.Background(), token); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("err = %v, want ErrAuthentication", err)
	}
}

func TestVerifyUnknownUser(t *testing.T) {
	v := newTestVerifier()
	token := signToken(t, testSecret, Claims{
		ID: "deleted",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	if _, err := v.Verify(context.Background(), token); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("err = %v, want ErrAuthentication", err)
	}
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Authorization", "Bearer abc123")
	if got := TokenFromRequest(r); got != "abc123" {
		t.Errorf("header token = %q", got)
	}

	r = httptest.NewRequest("GET", "/ws?token=qrs456", nil)
	if got := TokenFromRequest(r); got != "qrs456" {
		t.Errorf("query token = %q", got)
	}

	r = httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Authorization", "Basic abc123")
	if got := TokenFromRequest(r); got != "" {
		t.Errorf("non-bearer header produced %q", got)
	}
}
