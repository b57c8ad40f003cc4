package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"voicenote-service/internal/models"
)

// CleanJSON strips markdown code fences that models sometimes wrap JSON in
func CleanJSON(text string) string {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}

// ParseNoteResponse decodes a transcription response and checks that every field is present.
// Extra fields such as id or timestamp are ignored.
func ParseNoteResponse(text string) (*models.NoteResponse, error) {
	clean := CleanJSON(text)
	if clean == "" {
		return nil, errors.New("empty response")
	}

	var resp models.NoteResponse
	if err := json.Unmarshal([]byte(clean), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse note response: %w", err)
	}

	var missing []string
	if resp.OriginalText == nil {
		missing = append(missing, "originalText")
	}
	if resp.EnhancedText == nil {
		missing = append(missing, "enhancedText")
	}
	if resp.Category == nil {
		missing = append(missing, "category")
	}
	if resp.Summary == nil {
		missing = append(missing, "summary")
	}
	if resp.IsUrgent == nil {
		missing = append(missing, "isUrgent")
	}
	if resp.Keywords == nil {
		missing = append(missing, "keywords")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("note response missing fields: %s", strings.Join(missing, ", "))
	}

	return &resp, nil
}

// ParseReportResponse decodes a report response and checks that every field is present
func ParseReportResponse(text string) (*models.ReportResponse, error) {
	clean := CleanJSON(text)
	if clean == "" {
		return nil, errors.New("empty response")
	}

	var resp models.ReportResponse
	if err := json.Unmarshal([]byte(clean), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse report response: %w", err)
	}

	var missing []string
	if resp.TotalNotes == nil {
		missing = append(missing, "totalNotes")
	}
	if resp.Summary == nil {
		missing = append(missing, "summary")
	}
	if resp.KeyTopics == nil {
		missing = append(missing, "keyTopics")
	}
	if resp.Insights == nil {
		missing = append(missing, "insights")
	}
	if resp.ActionRecommendations == nil {
		missing = append(missing, "actionRecommendations")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("report response missing fields: %s", strings.Join(missing, ", "))
	}

	return &resp, nil
}
