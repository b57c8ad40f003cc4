package models

import "time"

// VoiceNote is a transcribed and enhanced voice recording
type VoiceNote struct {
	ID           string   `json:"id"`
	Timestamp    int64    `json:"timestamp"` // epoch milliseconds
	OriginalText string   `json:"originalText"`
	EnhancedText string   `json:"enhancedText"` // the only field editable after creation
	Category     Category `json:"category"`
	Summary      string   `json:"summary"`
	IsUrgent     bool     `json:"isUrgent"`
	Keywords     []string `json:"keywords"` // relevance order as returned by the model
}

// CreatedAt returns the note timestamp as time.Time
func (n VoiceNote) CreatedAt() time.Time {
	return time.UnixMilli(n.Timestamp)
}

// Clone returns a deep copy so callers cannot mutate the stored keyword slice
func (n VoiceNote) Clone() VoiceNote {
	c := n
	if n.Keywords != nil {
		c.Keywords = append([]string(nil), n.Keywords...)
	}
	return c
}

// NotePatch holds the user-editable fields of a note
type NotePatch struct {
	EnhancedText *string `json:"enhancedText" binding:"required"`
}

// Apply merges the patch into a copy of the note
func (p NotePatch) Apply(n VoiceNote) VoiceNote {
	out := n.Clone()
	if p.EnhancedText != nil {
		out.EnhancedText = *p.EnhancedText
	}
	return out
}

// NoteResponse is what a provider returns for a transcription request.
// Pointer fields let the parser tell a missing field from a zero value.
type NoteResponse struct {
	OriginalText *string  `json:"originalText"`
	EnhancedText *string  `json:"enhancedText"`
	Category     *string  `json:"category"`
	Summary      *string  `json:"summary"`
	IsUrgent     *bool    `json:"isUrgent"`
	Keywords     []string `json:"keywords"`
}
