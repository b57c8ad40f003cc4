// Package recorder captures one audio recording at a time and turns it into
// a note through the AI gateway.
package recorder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"voicenote-service/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State of the recorder
type State string

const (
	StateIdle       State = "idle"
	StateRecording  State = "recording"
	StateProcessing State = "processing"
	StateError      State = "error"
)

// ErrNotRecording is returned by Stop when nothing is being captured
var ErrNotRecording = errors.New("not recording")

// Transcriber turns an audio blob into a note
type Transcriber interface {
	TranscribeAndEnhance(ctx context.Context, audio []byte, mimeType string) (*models.VoiceNote, error)
}

// NoteSink stores a finished note
type NoteSink interface {
	Create(ctx context.Context, note models.VoiceNote) error
}

// Config tunes the recorder
type Config struct {
	MaxDuration time.Duration // zero means unlimited
	Tick        time.Duration // elapsed counter resolution, one second by default
	Locale      models.Locale
}

// Status is a snapshot of the recorder
type Status struct {
	State       State  `json:"state"`
	RecordingID string `json:"recordingId,omitempty"`
	Elapsed     int    `json:"elapsed"`
	ElapsedText string `json:"elapsedText"`
	Bytes       int    `json:"bytes"`
	LastError   string `json:"lastError,omitempty"`
}

type session struct {
	id       string
	stream   Stream
	chunks   [][]byte
	bytes    int
	elapsed  int
	stopping bool
	readErr  error
	cancel   context.CancelFunc
	done     chan struct{} // closed when the read loop exits
}

// Recorder is safe for concurrent use
type Recorder struct {
	mu      sync.Mutex
	state   State
	active  *session
	lastErr string

	gateway Transcriber
	sink    NoteSink
	cfg     Config
	logger  *zap.Logger
}

// New creates an idle recorder
func New(gateway Transcriber, sink NoteSink, cfg Config, logger *zap.Logger) *Recorder {
	if cfg.Tick <= 0 {
		cfg.Tick = time.Second
	}
	if cfg.Locale == "" {
		cfg.Locale = models.LocaleEnglish
	}
	return &Recorder{
		state:   StateIdle,
		gateway: gateway,
		sink:    sink,
		cfg:     cfg,
		logger:  logger,
	}
}

// FormatElapsed renders seconds as m:ss
func FormatElapsed(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// Status returns the current state
func (r *Recorder) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statusLocked()
}

func (r *Recorder) statusLocked() Status {
	st := Status{State: r.state, LastError: r.lastErr, ElapsedText: FormatElapsed(0)}
	if s := r.active; s != nil {
		st.RecordingID = s.id
		st.Elapsed = s.elapsed
		st.ElapsedText = FormatElapsed(s.elapsed)
		st.Bytes = s.bytes
	}
	return st
}

// Start begins capturing from src. It is a no-op while a recording is
// active or being processed.
func (r *Recorder) Start(ctx context.Context, src Source) (Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateRecording || r.state == StateProcessing {
		return r.statusLocked(), nil
	}
	r.lastErr = ""

	stream, err := src.Open(ctx)
	if err != nil {
		r.state = StateError
		r.logger.Error("Failed to open audio source", zap.Error(err))
		r.lastErr = err.Error()
		if errors.Is(err, models.ErrPermissionDenied) {
			pe := &models.PermissionError{
				Message: models.Message(r.cfg.Locale, models.MsgMicrophoneDenied),
				Err:     err,
			}
			r.lastErr = pe.Message
			err = pe
		}
		// the failed attempt is terminal; the next Start begins from idle
		r.state = StateIdle
		return r.statusLocked(), err
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	s := &session{
		id:     uuid.NewString(),
		stream: stream,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	r.active = s
	r.state = StateRecording

	go r.readLoop(s)
	go r.tickLoop(loopCtx, s)

	r.logger.Info("Recording started",
		zap.String("recording_id", s.id),
		zap.String("mime_type", stream.MIMEType()))

	return r.statusLocked(), nil
}

func (r *Recorder) readLoop(s *session) {
	defer close(s.done)
	for {
		chunk, err := s.stream.ReadChunk()
		r.mu.Lock()
		if len(chunk) > 0 {
			s.chunks = append(s.chunks, chunk)
			s.bytes += len(chunk)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !s.stopping {
				s.readErr = err
				r.logger.Error("Audio capture failed", zap.String("recording_id", s.id), zap.Error(err))
			}
			r.mu.Unlock()
			return
		}
		r.mu.Unlock()
	}
}

func (r *Recorder) tickLoop(ctx context.Context, s *session) {
	ticker := time.NewTicker(r.cfg.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.mu.Lock()
			if r.active != s || r.state != StateRecording {
				r.mu.Unlock()
				return
			}
			s.elapsed++
			limit := r.cfg.MaxDuration > 0 && time.Duration(s.elapsed)*r.cfg.Tick >= r.cfg.MaxDuration
			r.mu.Unlock()

			if limit {
				r.logger.Info("Max recording duration reached", zap.String("recording_id", s.id))
				if _, err := r.Stop(context.Background()); err != nil && !errors.Is(err, ErrNotRecording) {
					r.logger.Warn("Auto-stopped recording failed", zap.Error(err))
				}
				return
			}
		}
	}
}

// detach ends capture of the active session and returns it with its audio.
// Caller must not hold mu.
func (r *Recorder) detach(next State) (*session, error) {
	r.mu.Lock()
	s := r.active
	if r.state != StateRecording || s == nil {
		r.mu.Unlock()
		return nil, ErrNotRecording
	}
	r.state = next
	s.stopping = true
	r.mu.Unlock()

	s.cancel()
	if err := s.stream.Close(); err != nil {
		r.logger.Warn("Failed to release audio stream", zap.Error(err))
	}
	<-s.done
	return s, nil
}

// WaitCaptured blocks until the source has delivered all its audio or ctx ends.
// Useful for finite sources such as files and uploads.
func (r *Recorder) WaitCaptured(ctx context.Context) error {
	r.mu.Lock()
	s := r.active
	recording := r.state == StateRecording
	r.mu.Unlock()
	if !recording || s == nil {
		return ErrNotRecording
	}

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop ends capture and processes the recording into a note.
// If the note is created but could not be persisted, both are returned.
func (r *Recorder) Stop(ctx context.Context) (*models.VoiceNote, error) {
	s, err := r.detach(StateProcessing)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	readErr := s.readErr
	blob := bytes.Join(s.chunks, nil)
	mimeType := s.stream.MIMEType()
	r.mu.Unlock()

	r.logger.Info("Recording stopped",
		zap.String("recording_id", s.id),
		zap.Int("bytes", len(blob)),
		zap.Int("elapsed", s.elapsed))

	if readErr != nil {
		err := fmt.Errorf("audio capture failed: %w", readErr)
		r.finish(s, err.Error())
		return nil, err
	}

	note, err := r.gateway.TranscribeAndEnhance(ctx, blob, mimeType)
	if err != nil {
		r.finish(s, userMessage(err))
		return nil, err
	}

	if err := r.sink.Create(ctx, *note); err != nil {
		r.finish(s, err.Error())
		return note, err
	}

	r.finish(s, "")
	return note, nil
}

// Cancel discards the active recording without processing it
func (r *Recorder) Cancel() error {
	s, err := r.detach(StateIdle)
	if err != nil {
		return err
	}
	r.mu.Lock()
	if r.active == s {
		r.active = nil
	}
	r.mu.Unlock()

	r.logger.Info("Recording cancelled", zap.String("recording_id", s.id))
	return nil
}

func (r *Recorder) finish(s *session, lastErr string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == s {
		r.active = nil
	}
	r.lastErr = lastErr
	r.state = StateIdle
}

func userMessage(err error) string {
	var ue models.UserError
	if errors.As(err, &ue) {
		return ue.UserMessage()
	}
	return err.Error()
}
