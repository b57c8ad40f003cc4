package llm

import (
	"context"
	"errors"
	"math"
	"time"

	"voicenote-service/internal/clock"
	"voicenote-service/internal/gemini"
	"voicenote-service/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GatewayConfig tunes a Gateway. Zero values get defaults.
type GatewayConfig struct {
	Timeout  time.Duration
	Locale   models.Locale
	Location *time.Location
	Clock    clock.Clock
	NewID    func() string
}

// Gateway turns provider responses into notes and reports.
// It owns id and timestamp stamping, category clamping and the request deadline.
type Gateway struct {
	provider Provider
	timeout  time.Duration
	locale   models.Locale
	location *time.Location
	clock    clock.Clock
	newID    func() string
	logger   *zap.Logger
}

// NewGateway creates a gateway over provider
func NewGateway(provider Provider, cfg GatewayConfig, logger *zap.Logger) *Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if cfg.Locale == "" {
		cfg.Locale = models.LocaleEnglish
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System{}
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return &Gateway{
		provider: provider,
		timeout:  cfg.Timeout,
		locale:   cfg.Locale,
		location: cfg.Location,
		clock:    cfg.Clock,
		newID:    cfg.NewID,
		logger:   logger,
	}
}

var errEmptyAudio = errors.New("empty audio")

// TranscribeAndEnhance sends one recording to the provider and returns a new note
func (g *Gateway) TranscribeAndEnhance(ctx context.Context, audio []byte, mimeType string) (*models.VoiceNote, error) {
	if len(audio) == 0 {
		return nil, &models.TranscriptionError{
			Message: models.Message(g.locale, models.MsgEmptyRecording),
			Err:     errEmptyAudio,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := g.clock.Now()
	resp, err := g.provider.Transcribe(ctx, audio, mimeType)
	if err == nil {
		err = checkNote(resp)
	}
	if err != nil {
		g.logger.Error("Transcription failed",
			zap.Int("audio_bytes", len(audio)),
			zap.String("mime_type", mimeType),
			zap.Error(err))
		return nil, &models.TranscriptionError{
			Message: models.Message(g.locale, models.MsgTranscriptionFail),
			Err:     err,
		}
	}

	note := &models.VoiceNote{
		ID:           g.newID(),
		Timestamp:    g.clock.Now().UnixMilli(),
		OriginalText: *resp.OriginalText,
		EnhancedText: *resp.EnhancedText,
		Category:     models.ParseCategory(*resp.Category),
		Summary:      *resp.Summary,
		IsUrgent:     *resp.IsUrgent,
		Keywords:     append([]string{}, resp.Keywords...),
	}

	if string(note.Category) != *resp.Category {
		g.logger.Debug("Category normalized",
			zap.String("raw", *resp.Category),
			zap.String("category", string(note.Category)))
	}

	g.logger.Info("Note transcribed",
		zap.String("id", note.ID),
		zap.String("category", string(note.Category)),
		zap.Bool("urgent", note.IsUrgent),
		zap.Duration("took", g.clock.Now().Sub(start)))

	return note, nil
}

// GenerateReport asks the provider for a digest of notes.
// The caller filters notes to the period window beforehand.
func (g *Gateway) GenerateReport(ctx context.Context, notes []models.VoiceNote, period models.Period) (*models.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	prompt := gemini.BuildReportPrompt(notes, period, g.location)
	resp, err := g.provider.Report(ctx, prompt)
	if err == nil {
		err = checkReport(resp)
	}
	if err != nil {
		g.logger.Error("Report generation failed",
			zap.String("period", string(period)),
			zap.Int("notes", len(notes)),
			zap.Error(err))
		return nil, &models.ReportGenerationError{
			Message: models.Message(g.locale, models.MsgReportFail),
			Err:     err,
		}
	}

	report := &models.Report{
		Period:                period,
		GeneratedAt:           g.clock.Now(),
		TotalNotes:            int(math.Round(*resp.TotalNotes)),
		Summary:               *resp.Summary,
		KeyTopics:             append([]string{}, resp.KeyTopics...),
		Insights:              append([]string{}, resp.Insights...),
		ActionRecommendations: append([]string{}, resp.ActionRecommendations...),
	}

	g.logger.Info("Report generated",
		zap.String("period", string(period)),
		zap.Int("notes", len(notes)),
		zap.Int("total_notes", report.TotalNotes))

	return report, nil
}

var errIncomplete = errors.New("provider returned an incomplete response")

func checkNote(r *models.NoteResponse) error {
	if r == nil || r.OriginalText == nil || r.EnhancedText == nil || r.Category == nil ||
		r.Summary == nil || r.IsUrgent == nil {
		return errIncomplete
	}
	return nil
}

func checkReport(r *models.ReportResponse) error {
	if r == nil || r.TotalNotes == nil || r.Summary == nil {
		return errIncomplete
	}
	return nil
}

// Close releases the provider
func (g *Gateway) Close() error {
	return g.provider.Close()
}

// GetModelInfo describes the provider in use
func (g *Gateway) GetModelInfo() map[string]interface{} {
	return g.provider.GetModelInfo()
}
