package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"voicenote-service/internal/clock"
	"voicenote-service/internal/models"
	"voicenote-service/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

var (
	ErrInvalidEmail = errors.New("email must contain @")
	ErrTokenRevoked = errors.New("token revoked")
)

// SessionConfig tunes token issuing
type SessionConfig struct {
	Secret           string
	TokenTTL         time.Duration
	RevokedCacheSize int
	Clock            clock.Clock
}

// SessionService holds the locally signed-in identity. There is no password;
// login only records who is using the app and issues a bearer token for the API.
type SessionService struct {
	mu      sync.RWMutex
	current *models.Session
	store   repository.Store
	secret  []byte
	ttl     time.Duration
	revoked *lru.Cache[string, time.Time]
	clock   clock.Clock
	logger  *zap.Logger
}

// NewSessionService creates the service. An empty secret is replaced by a
// random one, so tokens do not survive a restart.
func NewSessionService(store repository.Store, cfg SessionConfig, logger *zap.Logger) (*SessionService, error) {
	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate jwt secret: %w", err)
		}
		logger.Warn("No JWT secret configured, using a random one")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 30 * 24 * time.Hour
	}
	if cfg.RevokedCacheSize <= 0 {
		cfg.RevokedCacheSize = 1024
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System{}
	}

	revoked, err := lru.New[string, time.Time](cfg.RevokedCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create revocation cache: %w", err)
	}

	return &SessionService{
		store:   store,
		secret:  secret,
		ttl:     cfg.TokenTTL,
		revoked: revoked,
		clock:   cfg.Clock,
		logger:  logger,
	}, nil
}

// Load restores the stored session, if any
func (s *SessionService) Load(ctx context.Context) error {
	session, err := s.store.LoadSession(ctx)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	s.mu.Lock()
	s.current = session
	s.mu.Unlock()
	return nil
}

// Login records the identity and returns a signed token.
// name defaults to the part of email before the @.
func (s *SessionService) Login(ctx context.Context, email, name string) (*models.Session, string, error) {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	if at <= 0 {
		return nil, "", ErrInvalidEmail
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = email[:at]
	}

	session := &models.Session{ID: uuid.NewString(), Email: email, Name: name}
	token, err := s.issueToken(session)
	if err != nil {
		return nil, "", err
	}

	s.mu.Lock()
	s.current = session
	s.mu.Unlock()

	s.logger.Info("User signed in", zap.String("email", email))

	if err := s.store.SaveSession(ctx, session); err != nil {
		return session, token, &models.PersistError{Op: "login", Err: err}
	}
	return session, token, nil
}

// Token issues a fresh token for the current session
func (s *SessionService) Token() (string, error) {
	session, err := s.Current()
	if err != nil {
		return "", err
	}
	return s.issueToken(session)
}

func (s *SessionService) issueToken(session *models.Session) (string, error) {
	now := s.clock.Now()
	claims := &models.Claims{
		Email:     session.Email,
		Name:      session.Name,
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   session.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate parses token and checks it was issued for the current login
func (s *SessionService) Validate(tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.clock.Now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if s.revoked.Contains(claims.ID) {
		return nil, ErrTokenRevoked
	}

	current, err := s.Current()
	if err != nil {
		return nil, err
	}
	if current.Email != claims.Email {
		return nil, models.ErrNotSignedIn
	}
	// tokens from an earlier login stay invalid after signing in again
	if current.ID != claims.SessionID {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Current returns the signed-in identity or models.ErrNotSignedIn
func (s *SessionService) Current() (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, models.ErrNotSignedIn
	}
	out := *s.current
	return &out, nil
}

// Logout forgets the identity. A non-nil claims has its token revoked.
func (s *SessionService) Logout(ctx context.Context, claims *models.Claims) error {
	if claims != nil && claims.ID != "" {
		var exp time.Time
		if claims.ExpiresAt != nil {
			exp = claims.ExpiresAt.Time
		}
		s.revoked.Add(claims.ID, exp)
	}

	s.mu.Lock()
	had := s.current != nil
	s.current = nil
	s.mu.Unlock()

	if had {
		s.logger.Info("User signed out")
	}

	if err := s.store.ClearSession(ctx); err != nil {
		return &models.PersistError{Op: "logout", Err: err}
	}
	return nil
}
