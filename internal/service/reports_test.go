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

type staticNotes []models.VoiceNote

func (s staticNotes) List() []models.VoiceNote { return s }

var reportNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func noteAt(id string, t time.Time) models.VoiceNote {
	return models.VoiceNote{ID: id, Timestamp: t.UnixMilli(), Category: models.CategoryWork}
}

func windowNotes() staticNotes {
	return staticNotes{
		noteAt("today", reportNow.Add(-2*time.Hour)),
		noteAt("yesterday", reportNow.Add(-20*time.Hour)),
		noteAt("week", reportNow.Add(-6*24*time.Hour)),
		noteAt("month", reportNow.Add(-29*24*time.Hour)),
		noteAt("old", reportNow.Add(-31*24*time.Hour)),
	}
}

func TestFilterWindow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		period models.Period
		want   int
	}{
		{models.PeriodDaily, 1},
		{models.PeriodWeekly, 3},
		{models.PeriodMonthly, 4},
	}
	for _, tt := range tests {
		got := FilterWindow(windowNotes(), tt.period, reportNow, time.UTC)
		if len(got) != tt.want {
			t.Errorf("%s: got %d notes, want %d", tt.period, len(got), tt.want)
		}
	}
}

func TestFilterWindowDailyUsesLocation(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+7", 7*3600)
	// 2024-03-15 18:00 UTC is already the 16th at UTC+7
	now := time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)
	notes := []models.VoiceNote{
		noteAt("same-local-day", time.Date(2024, 3, 15, 17, 30, 0, 0, time.UTC)),
		noteAt("previous-local-day", time.Date(2024, 3, 15, 16, 0, 0, 0, time.UTC)),
	}

	got := FilterWindow(notes, models.PeriodDaily, now, loc)
	if len(got) != 1 || got[0].ID != "same-local-day" {
		t.Errorf("got %+v, want only same-local-day", got)
	}
}

func TestGenerateEmptyWindowSkipsGateway(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	notes := staticNotes{noteAt("old", reportNow.Add(-40*24*time.Hour))}
	svc := NewReportService(gw, notes, clock.Fixed{T: reportNow}, time.UTC, models.LocaleEnglish, zap.NewNop())

	_, err := svc.Generate(context.Background(), models.PeriodMonthly)
	if !errors.Is(err, models.ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
	var ee *models.EmptyInputError
	if !errors.As(err, &ee) || ee.UserMessage() == "" {
		t.Errorf("missing user message: %v", err)
	}
	if gw.calls != 0 {
		t.Errorf("gateway calls = %d, want 0", gw.calls)
	}
}

func TestGenerateHoldsReport(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	svc := NewReportService(gw, windowNotes(), clock.Fixed{T: reportNow}, time.UTC, models.LocaleEnglish, zap.NewNop())

	report, err := svc.Generate(context.Background(), models.PeriodWeekly)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(gw.got) != 3 || report.TotalNotes != 3 {
		t.Errorf("gateway got %d notes, report total %d; want 3", len(gw.got), report.TotalNotes)
	}
	if cur, ok := svc.Current(); !ok || cur.Period != models.PeriodWeekly {
		t.Fatalf("current = %+v, %v", cur, ok)
	}

	svc.SelectPeriod(models.PeriodWeekly)
	if _, ok := svc.Current(); !ok {
		t.Error("selecting the same period dropped the report")
	}

	svc.SelectPeriod(models.PeriodMonthly)
	if _, ok := svc.Current(); ok {
		t.Error("selecting another period kept the report")
	}
}

func TestGenerateFailureKeepsPrevious(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	svc := NewReportService(gw, windowNotes(), clock.Fixed{T: reportNow}, time.UTC, models.LocaleEnglish, zap.NewNop())
	if _, err := svc.Generate(context.Background(), models.PeriodDaily); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	gw.err = &models.ReportGenerationError{Message: "nope", Err: errors.New("bad")}
	if _, err := svc.Generate(context.Background(), models.PeriodDaily); !errors.Is(err, models.ErrReportGeneration) {
		t.Fatalf("err = %v, want ErrReportGeneration", err)
	}
	if _, ok := svc.Current(); !ok {
		t.Error("failed generation dropped the previous report")
	}

	svc.Discard()
	if _, ok := svc.Current(); ok {
		t.Error("Discard kept the report")
	}
}
