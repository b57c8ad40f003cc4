package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"voicenote-service/internal/clock"
	"voicenote-service/internal/models"

	"go.uber.org/zap"
)

func newSessionService(t *testing.T, store *memStore) *SessionService {
	t.Helper()
	svc, err := NewSessionService(store, SessionConfig{Secret: "test-secret", TokenTTL: time.Hour}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionService: %v", err)
	}
	return svc
}

func TestLoginDefaultsName(t *testing.T) {
	t.Parallel()

	store := &memStore{}
	svc := newSessionService(t, store)

	session, token, err := svc.Login(context.Background(), "mya.thida@example.com", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.Name != "mya.thida" {
		t.Errorf("name = %q, want mya.thida", session.Name)
	}
	if token == "" {
		t.Error("empty token")
	}
	if store.session == nil || store.session.Email != "mya.thida@example.com" {
		t.Errorf("session not persisted: %+v", store.session)
	}
}

func TestLoginRejectsBadEmail(t *testing.T) {
	t.Parallel()

	svc := newSessionService(t, &memStore{})
	for _, email := range []string{"", "nobody", "@example.com"} {
		if _, _, err := svc.Login(context.Background(), email, "x"); !errors.Is(err, ErrInvalidEmail) {
			t.Errorf("Login(%q) err = %v, want ErrInvalidEmail", email, err)
		}
	}
}

func TestValidateAndLogout(t *testing.T) {
	t.Parallel()

	store := &memStore{}
	svc := newSessionService(t, store)
	_, token, err := svc.Login(context.Background(), "a@b.c", "A")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.Name != "A" {
		t.Errorf("claims name = %q, want A", claims.Name)
	}

	if err := svc.Logout(context.Background(), claims); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.Current(); !errors.Is(err, models.ErrNotSignedIn) {
		t.Errorf("Current err = %v, want ErrNotSignedIn", err)
	}
	if store.session != nil {
		t.Error("stored session not cleared")
	}
	if _, err := svc.Validate(token); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("Validate after logout err = %v, want ErrTokenRevoked", err)
	}
}

func TestTokenFromEarlierLoginRejected(t *testing.T) {
	t.Parallel()

	svc := newSessionService(t, &memStore{})
	ctx := context.Background()

	_, oldToken, err := svc.Login(ctx, "a@b.c", "A")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	// sign out without presenting the token, then sign in again as the same user
	if err := svc.Logout(ctx, nil); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	_, newToken, err := svc.Login(ctx, "a@b.c", "A")
	if err != nil {
		t.Fatalf("second Login: %v", err)
	}

	if _, err := svc.Validate(oldToken); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("Validate(old token) err = %v, want ErrTokenRevoked", err)
	}
	if _, err := svc.Validate(newToken); err != nil {
		t.Errorf("Validate(new token): %v", err)
	}
}

func TestTokenSurvivesReload(t *testing.T) {
	t.Parallel()

	store := &memStore{}
	svc := newSessionService(t, store)
	_, token, err := svc.Login(context.Background(), "a@b.c", "A")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	restarted := newSessionService(t, store)
	if err := restarted.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := restarted.Validate(token); err != nil {
		t.Errorf("Validate after reload: %v", err)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := &memStore{}
	issuer, err := NewSessionService(store, SessionConfig{Secret: "s", TokenTTL: time.Minute, Clock: clock.Fixed{T: start}}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionService: %v", err)
	}
	_, token, err := issuer.Login(context.Background(), "a@b.c", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	later, err := NewSessionService(store, SessionConfig{Secret: "s", Clock: clock.Fixed{T: start.Add(time.Hour)}}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionService: %v", err)
	}
	if err := later.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := later.Validate(token); err == nil {
		t.Error("expired token accepted")
	}
}

func TestLoadRestoresSession(t *testing.T) {
	t.Parallel()

	store := &memStore{session: &models.Session{Email: "x@y.z", Name: "x"}}
	svc := newSessionService(t, store)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	s, err := svc.Current()
	if err != nil || s.Email != "x@y.z" {
		t.Errorf("Current = %+v, %v", s, err)
	}
}
