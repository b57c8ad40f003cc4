package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"voicenote-service/internal/clock"
	"voicenote-service/internal/models"

	"go.uber.org/zap"
)

type fakeProvider struct {
	note       *models.NoteResponse
	report     *models.ReportResponse
	err        error
	calls      int
	lastPrompt string
	closed     bool
}

func (f *fakeProvider) Transcribe(ctx context.Context, audio []byte, mimeType string) (*models.NoteResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.note, nil
}

func (f *fakeProvider) Report(ctx context.Context, prompt string) (*models.ReportResponse, error) {
	f.calls++
	f.lastPrompt = prompt
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func (f *fakeProvider) Close() error {
	f.closed = true
	return nil
}

func (f *fakeProvider) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{"provider": "fake"}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func sampleNoteResponse(category string) *models.NoteResponse {
	return &models.NoteResponse{
		OriginalText: strPtr("buy ore sample tomorrow"),
		EnhancedText: strPtr("Buy an ore sample tomorrow."),
		Category:     strPtr(category),
		Summary:      strPtr("Ore sample purchase."),
		IsUrgent:     boolPtr(true),
		Keywords:     []string{"ore", "sample"},
	}
}

func newTestGateway(p Provider, now time.Time) *Gateway {
	return NewGateway(p, GatewayConfig{
		Timeout:  time.Second,
		Location: time.UTC,
		Clock:    clock.Fixed{T: now},
		NewID:    func() string { return "fixed-id" },
	}, zap.NewNop())
}

func TestTranscribeStampsIDAndTimestamp(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	p := &fakeProvider{note: sampleNoteResponse("mining")}
	g := newTestGateway(p, now)

	note, err := g.TranscribeAndEnhance(context.Background(), []byte("audio"), "audio/webm")
	if err != nil {
		t.Fatalf("TranscribeAndEnhance: %v", err)
	}
	if note.ID != "fixed-id" {
		t.Errorf("id = %q, want fixed-id", note.ID)
	}
	if note.Timestamp != now.UnixMilli() {
		t.Errorf("timestamp = %d, want %d", note.Timestamp, now.UnixMilli())
	}
	if note.Category != models.CategoryMining {
		t.Errorf("category = %q, want mining", note.Category)
	}
	if !note.IsUrgent || len(note.Keywords) != 2 {
		t.Errorf("unexpected note: %+v", note)
	}
}

func TestTranscribeClampsUnknownCategory(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{note: sampleNoteResponse("astrology")}
	g := newTestGateway(p, time.Now())

	note, err := g.TranscribeAndEnhance(context.Background(), []byte("audio"), "audio/webm")
	if err != nil {
		t.Fatalf("TranscribeAndEnhance: %v", err)
	}
	if note.Category != models.CategoryUncategorized {
		t.Errorf("category = %q, want uncategorized", note.Category)
	}
}

func TestTranscribeEmptyAudioSkipsProvider(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{note: sampleNoteResponse("work")}
	g := newTestGateway(p, time.Now())

	_, err := g.TranscribeAndEnhance(context.Background(), nil, "audio/webm")
	if !errors.Is(err, models.ErrTranscription) {
		t.Fatalf("err = %v, want ErrTranscription", err)
	}
	if p.calls != 0 {
		t.Errorf("provider calls = %d, want 0", p.calls)
	}
}

func TestTranscribeWrapsProviderError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	p := &fakeProvider{err: cause}
	g := newTestGateway(p, time.Now())

	_, err := g.TranscribeAndEnhance(context.Background(), []byte("audio"), "audio/webm")
	var te *models.TranscriptionError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *TranscriptionError", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("cause not preserved: %v", err)
	}
	if te.UserMessage() == "" {
		t.Error("user message is empty")
	}
}

func TestTranscribeRejectsIncompleteResponse(t *testing.T) {
	t.Parallel()

	resp := sampleNoteResponse("work")
	resp.Summary = nil
	g := newTestGateway(&fakeProvider{note: resp}, time.Now())

	if _, err := g.TranscribeAndEnhance(context.Background(), []byte("audio"), "audio/webm"); !errors.Is(err, models.ErrTranscription) {
		t.Fatalf("err = %v, want ErrTranscription", err)
	}
}

func TestGenerateReportBuildsPromptAndStampsPeriod(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	total := 2.0
	p := &fakeProvider{report: &models.ReportResponse{
		TotalNotes:            &total,
		Summary:               strPtr("Busy day."),
		KeyTopics:             []string{"ore"},
		Insights:              []string{},
		ActionRecommendations: []string{"rest"},
	}}
	g := newTestGateway(p, now)

	notes := []models.VoiceNote{
		{ID: "a", Timestamp: now.UnixMilli(), Category: models.CategoryWork, EnhancedText: "Ship it."},
		{ID: "b", Timestamp: now.UnixMilli(), Category: models.CategoryIdeas, EnhancedText: "New idea."},
	}

	report, err := g.GenerateReport(context.Background(), notes, models.PeriodDaily)
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}
	if report.Period != models.PeriodDaily || !report.GeneratedAt.Equal(now) {
		t.Errorf("unexpected stamp: %+v", report)
	}
	if report.TotalNotes != 2 {
		t.Errorf("total = %d, want 2", report.TotalNotes)
	}
	for _, want := range []string{"- [2024-03-05] [work]: Ship it.", "- [2024-03-05] [ideas]: New idea."} {
		if !strings.Contains(p.lastPrompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGenerateReportWrapsError(t *testing.T) {
	t.Parallel()

	g := newTestGateway(&fakeProvider{err: errors.New("bad json")}, time.Now())
	_, err := g.GenerateReport(context.Background(), []models.VoiceNote{{ID: "a"}}, models.PeriodWeekly)
	if !errors.Is(err, models.ErrReportGeneration) {
		t.Fatalf("err = %v, want ErrReportGeneration", err)
	}
}
