package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"voicenote-service/internal/models"
	"voicenote-service/internal/repository"

	"go.uber.org/zap"
)

// NoteObserver is told about every note added to the collection
type NoteObserver interface {
	NoteCreated(ctx context.Context, note models.VoiceNote)
}

// NoteService owns the in-memory note collection, most recent first.
// Every mutation writes the whole collection back to the store.
type NoteService struct {
	mu        sync.RWMutex
	notes     []models.VoiceNote
	store     repository.Store
	observers []NoteObserver
	logger    *zap.Logger
}

// NewNoteService creates an empty service; call Load before use
func NewNoteService(store repository.Store, logger *zap.Logger, observers ...NoteObserver) *NoteService {
	return &NoteService{
		store:     store,
		observers: observers,
		logger:    logger,
	}
}

// Load replaces the in-memory collection with the stored one
func (s *NoteService) Load(ctx context.Context) error {
	notes, err := s.store.LoadNotes(ctx)
	if err != nil {
		return fmt.Errorf("failed to load notes: %w", err)
	}

	s.mu.Lock()
	s.notes = notes
	s.mu.Unlock()

	s.logger.Info("Notes loaded", zap.Int("count", len(notes)))
	return nil
}

// persist writes the collection. Caller holds mu.
func (s *NoteService) persist(ctx context.Context, op string) error {
	if err := s.store.SaveNotes(ctx, s.notes); err != nil {
		s.logger.Error("Failed to persist notes", zap.String("op", op), zap.Error(err))
		return &models.PersistError{Op: op, Err: err}
	}
	return nil
}

func (s *NoteService) indexOf(id string) int {
	for i := range s.notes {
		if s.notes[i].ID == id {
			return i
		}
	}
	return -1
}

// Create prepends note to the collection.
// A *models.PersistError means the note is kept in memory but was not saved.
func (s *NoteService) Create(ctx context.Context, note models.VoiceNote) error {
	s.mu.Lock()
	if s.indexOf(note.ID) >= 0 {
		s.mu.Unlock()
		return fmt.Errorf("note %s already exists", note.ID)
	}
	s.notes = append([]models.VoiceNote{note.Clone()}, s.notes...)
	err := s.persist(ctx, "create")
	s.mu.Unlock()

	s.logger.Info("Note created",
		zap.String("id", note.ID),
		zap.String("category", string(note.Category)),
		zap.Bool("urgent", note.IsUrgent))

	for _, o := range s.observers {
		o.NoteCreated(ctx, note.Clone())
	}
	return err
}

// Update applies patch to the note with id.
// An unknown id returns models.ErrNoteNotFound and leaves the store untouched.
func (s *NoteService) Update(ctx context.Context, id string, patch models.NotePatch) (models.VoiceNote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.VoiceNote{}, models.ErrNoteNotFound
	}
	s.notes[i] = patch.Apply(s.notes[i])
	updated := s.notes[i].Clone()

	s.logger.Info("Note updated", zap.String("id", id))
	return updated, s.persist(ctx, "update")
}

// Delete removes the note with id
func (s *NoteService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.ErrNoteNotFound
	}
	s.notes = append(s.notes[:i:i], s.notes[i+1:]...)

	s.logger.Info("Note deleted", zap.String("id", id))
	return s.persist(ctx, "delete")
}

// Get returns a copy of the note with id
func (s *NoteService) Get(id string) (models.VoiceNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.VoiceNote{}, models.ErrNoteNotFound
	}
	return s.notes[i].Clone(), nil
}

// List returns a copy of the collection, most recent first
func (s *NoteService) List() []models.VoiceNote {
	return s.Search("")
}

// Search matches term case-insensitively against the enhanced text, the
// category slug and labels, and every keyword. An empty term matches all.
func (s *NoteService) Search(term string) []models.VoiceNote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(term)
	out := make([]models.VoiceNote, 0, len(s.notes))
	for _, n := range s.notes {
		if needle == "" || matches(n, needle) {
			out = append(out, n.Clone())
		}
	}
	return out
}

func matches(n models.VoiceNote, needle string) bool {
	if strings.Contains(strings.ToLower(n.EnhancedText), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(string(n.Category)), needle) {
		return true
	}
	for locale := range models.CategoryLabels {
		if strings.Contains(strings.ToLower(n.Category.Label(locale)), needle) {
			return true
		}
	}
	for _, k := range n.Keywords {
		if strings.Contains(strings.ToLower(k), needle) {
			return true
		}
	}
	return false
}
