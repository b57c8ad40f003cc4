package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"voicenote-service/internal/models"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var kvBucket = []byte("kv")

// BoltStore keeps both records in a single bbolt bucket
type BoltStore struct {
	db     *bbolt.DB
	logger *zap.Logger
}

// NewBoltStore opens or creates the database file at path
func NewBoltStore(path string, logger *zap.Logger) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(kvBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	logger.Info("Bolt store initialized", zap.String("path", path))

	return &BoltStore{db: db, logger: logger}, nil
}

func (s *BoltStore) get(key string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(kvBucket).Get([]byte(key)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	return data, err
}

func (s *BoltStore) put(key string, value []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(kvBucket).Put([]byte(key), value)
	})
}

// LoadNotes reads the note collection; a missing key yields an empty slice
func (s *BoltStore) LoadNotes(ctx context.Context) ([]models.VoiceNote, error) {
	data, err := s.get(KeyNotes)
	if err != nil {
		return nil, fmt.Errorf("failed to read notes: %w", err)
	}
	return decodeNotes(data)
}

// SaveNotes overwrites the note collection
func (s *BoltStore) SaveNotes(ctx context.Context, notes []models.VoiceNote) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeNotes(notes)
	if err != nil {
		return err
	}
	if err := s.put(KeyNotes, data); err != nil {
		s.logger.Error("Failed to save notes", zap.Int("count", len(notes)), zap.Error(err))
		return fmt.Errorf("failed to write notes: %w", err)
	}
	return nil
}

func (s *BoltStore) LoadSession(ctx context.Context) (*models.Session, error) {
	data, err := s.get(KeySession)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	return decodeSession(data)
}

func (s *BoltStore) SaveSession(ctx context.Context, session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.put(KeySession, data); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

func (s *BoltStore) ClearSession(ctx context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(kvBucket).Delete([]byte(KeySession))
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
