package models

import (
	"fmt"
	"time"
)

// Period selects the window a report covers
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// ParsePeriod validates a period name
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return p, nil
	}
	return "", fmt.Errorf("unknown report period %q (want daily, weekly or monthly)", s)
}

// Report is an AI-generated digest over a window of notes. It is never persisted.
type Report struct {
	Period                Period    `json:"period"`
	GeneratedAt           time.Time `json:"generatedAt"`
	TotalNotes            int       `json:"totalNotes"`
	Summary               string    `json:"summary"`
	KeyTopics             []string  `json:"keyTopics"`
	Insights              []string  `json:"insights"`
	ActionRecommendations []string  `json:"actionRecommendations"`
}

// ReportResponse is what a provider returns for a report request
type ReportResponse struct {
	TotalNotes            *float64 `json:"totalNotes"`
	Summary               *string  `json:"summary"`
	KeyTopics             []string `json:"keyTopics"`
	Insights              []string `json:"insights"`
	ActionRecommendations []string `json:"actionRecommendations"`
}
