package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"voicenote-service/internal/models"

	"go.uber.org/zap"
)

// Keys under which the two persisted records live
const (
	KeyNotes   = "voice_notes"
	KeySession = "session"
)

// Store is the durable home of the note collection and the session.
// Every write replaces the whole value.
type Store interface {
	LoadNotes(ctx context.Context) ([]models.VoiceNote, error)
	SaveNotes(ctx context.Context, notes []models.VoiceNote) error
	// LoadSession returns nil, nil when nobody is signed in
	LoadSession(ctx context.Context) (*models.Session, error)
	SaveSession(ctx context.Context, session *models.Session) error
	ClearSession(ctx context.Context) error
	Close() error
}

// Open creates the store for driver: "bolt", "sqlite" or "postgres"
func Open(ctx context.Context, driver, path string, logger *zap.Logger) (Store, error) {
	switch driver {
	case "", "bolt":
		if err := ensureDir(path); err != nil {
			return nil, err
		}
		return NewBoltStore(path, logger)
	case "sqlite":
		if err := ensureDir(path); err != nil {
			return nil, err
		}
		return NewSQLStore(ctx, "sqlite", path, logger)
	case "postgres":
		return NewSQLStore(ctx, "postgres", path, logger)
	}
	return nil, fmt.Errorf("unknown storage driver %q", driver)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}
	return nil
}

func encodeNotes(notes []models.VoiceNote) ([]byte, error) {
	if notes == nil {
		notes = []models.VoiceNote{}
	}
	data, err := json.Marshal(notes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode notes: %w", err)
	}
	return data, nil
}

func decodeNotes(data []byte) ([]models.VoiceNote, error) {
	notes := []models.VoiceNote{}
	if len(data) == 0 {
		return notes, nil
	}
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil, fmt.Errorf("failed to decode notes: %w", err)
	}
	return notes, nil
}

func decodeSession(data []byte) (*models.Session, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &s, nil
}
