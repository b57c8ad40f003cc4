package service

import (
	"context"
	"sync"
	"time"

	"voicenote-service/internal/clock"
	"voicenote-service/internal/models"

	"go.uber.org/zap"
)

// ReportGateway generates a report from an already filtered set of notes
type ReportGateway interface {
	GenerateReport(ctx context.Context, notes []models.VoiceNote, period models.Period) (*models.Report, error)
}

// NoteLister supplies the current note collection
type NoteLister interface {
	List() []models.VoiceNote
}

// ReportService holds at most one generated report
type ReportService struct {
	mu       sync.Mutex
	gateway  ReportGateway
	notes    NoteLister
	clock    clock.Clock
	location *time.Location
	locale   models.Locale
	logger   *zap.Logger

	period  models.Period
	current *models.Report
}

// NewReportService creates a report service with the daily period selected
func NewReportService(gateway ReportGateway, notes NoteLister, clk clock.Clock, loc *time.Location, locale models.Locale, logger *zap.Logger) *ReportService {
	if clk == nil {
		clk = clock.System{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &ReportService{
		gateway:  gateway,
		notes:    notes,
		clock:    clk,
		location: loc,
		locale:   locale,
		logger:   logger,
		period:   models.PeriodDaily,
	}
}

// FilterWindow keeps the notes inside period relative to now. Daily means the
// same calendar day in loc; weekly and monthly are rolling 7 and 30 day windows.
func FilterWindow(notes []models.VoiceNote, period models.Period, now time.Time, loc *time.Location) []models.VoiceNote {
	out := make([]models.VoiceNote, 0, len(notes))
	switch period {
	case models.PeriodDaily:
		today := now.In(loc).Format("2006-01-02")
		for _, n := range notes {
			if n.CreatedAt().In(loc).Format("2006-01-02") == today {
				out = append(out, n)
			}
		}
	default:
		days := 7
		if period == models.PeriodMonthly {
			days = 30
		}
		cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)
		for _, n := range notes {
			if !n.CreatedAt().Before(cutoff) {
				out = append(out, n)
			}
		}
	}
	return out
}

// Generate produces a report for period and makes it the current one.
// An empty window returns *models.EmptyInputError without calling the gateway.
func (s *ReportService) Generate(ctx context.Context, period models.Period) (*models.Report, error) {
	notes := FilterWindow(s.notes.List(), period, s.clock.Now(), s.location)
	if len(notes) == 0 {
		s.logger.Info("Report skipped, empty window", zap.String("period", string(period)))
		return nil, &models.EmptyInputError{
			Message: models.Message(s.locale, models.MsgEmptyReportWindow),
			Period:  period,
		}
	}

	report, err := s.gateway.GenerateReport(ctx, notes, period)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.period = period
	s.current = report
	s.mu.Unlock()

	out := *report
	return &out, nil
}

// Current returns the held report, if any
func (s *ReportService) Current() (*models.Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, false
	}
	out := *s.current
	return &out, true
}

// Period returns the selected period
func (s *ReportService) Period() models.Period {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.period
}

// SelectPeriod switches the period; a different period drops the held report
func (s *ReportService) SelectPeriod(period models.Period) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if period != s.period {
		s.current = nil
	}
	s.period = period
}

// Discard drops the held report
func (s *ReportService) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}
