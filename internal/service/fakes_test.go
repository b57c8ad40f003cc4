package service

import (
	"context"
	"errors"
	"sync"

	"voicenote-service/internal/models"
)

type memStore struct {
	mu      sync.Mutex
	notes   []models.VoiceNote
	session *models.Session
	saves   int
	failing bool
}

var errDiskFull = errors.New("disk full")

func (m *memStore) LoadNotes(ctx context.Context) ([]models.VoiceNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.VoiceNote{}, m.notes...), nil
}

func (m *memStore) SaveNotes(ctx context.Context, notes []models.VoiceNote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.failing {
		return errDiskFull
	}
	m.notes = append([]models.VoiceNote{}, notes...)
	return nil
}

func (m *memStore) LoadSession(ctx context.Context) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, nil
}

func (m *memStore) SaveSession(ctx context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = s
	return nil
}

func (m *memStore) ClearSession(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}

func (m *memStore) Close() error { return nil }

type fakeGateway struct {
	calls int
	got   []models.VoiceNote
	err   error
}

func (f *fakeGateway) GenerateReport(ctx context.Context, notes []models.VoiceNote, period models.Period) (*models.Report, error) {
	f.calls++
	f.got = notes
	if f.err != nil {
		return nil, f.err
	}
	return &models.Report{Period: period, TotalNotes: len(notes), Summary: "ok"}, nil
}

type recordingObserver struct {
	created []string
}

func (r *recordingObserver) NoteCreated(ctx context.Context, note models.VoiceNote) {
	r.created = append(r.created, note.ID)
}
