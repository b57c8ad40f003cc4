package gemini

import (
	"fmt"
	"strings"
	"time"

	"voicenote-service/internal/models"
)

// NoteInstruction is sent with every audio clip
const NoteInstruction = `Transcribe the attached voice recording accurately, in the language that is spoken.

Instructions:
1. Rewrite the rough speech as clear, professional written text without changing its meaning.
2. Correct grammar and spelling according to the standard written form of the language.
3. Pick the single most fitting category for the note.

Respond with JSON only, in exactly this shape:
{
  "originalText": "the transcription as spoken",
  "enhancedText": "the professionally rewritten text",
  "category": "one of: work, personal, mining, finance, ideas, daily-log",
  "summary": "a one-sentence synopsis of the note",
  "isUrgent": true or false (true if the note needs immediate action),
  "keywords": ["most relevant keyword", "second", "third"]
}`

// EnhanceInstruction is used by providers that transcribe in a separate step
const EnhanceInstruction = `The text below is a raw speech transcription.

Instructions:
1. Rewrite the rough speech as clear, professional written text without changing its meaning.
2. Correct grammar and spelling according to the standard written form of the language.
3. Pick the single most fitting category for the note.

Respond with JSON only, in exactly this shape:
{
  "originalText": "the transcription exactly as given",
  "enhancedText": "the professionally rewritten text",
  "category": "one of: work, personal, mining, finance, ideas, daily-log",
  "summary": "a one-sentence synopsis of the note",
  "isUrgent": true or false (true if the note needs immediate action),
  "keywords": ["most relevant keyword", "second", "third"]
}

Transcription:
%s`

// BuildEnhancePrompt wraps a raw transcript with EnhanceInstruction
func BuildEnhancePrompt(transcript string) string {
	return fmt.Sprintf(EnhanceInstruction, transcript)
}

var periodTitles = map[models.Period]string{
	models.PeriodDaily:   "daily",
	models.PeriodWeekly:  "weekly",
	models.PeriodMonthly: "monthly",
}

// ReportContext renders one line per note: - [date] [category]: text
func ReportContext(notes []models.VoiceNote, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	lines := make([]string, 0, len(notes))
	for _, n := range notes {
		lines = append(lines, fmt.Sprintf("- [%s] [%s]: %s",
			n.CreatedAt().In(loc).Format("2006-01-02"), n.Category, n.EnhancedText))
	}
	return strings.Join(lines, "\n")
}

// BuildReportPrompt asks for a report over the given notes
func BuildReportPrompt(notes []models.VoiceNote, period models.Period, loc *time.Location) string {
	return fmt.Sprintf(`Write a %s report based on the notes below.

Notes:
%s

Respond with JSON only, in the language the notes are written in, in exactly this shape:
{
  "totalNotes": number of notes,
  "summary": "overall summary and assessment",
  "keyTopics": ["main topic 1", "2"],
  "insights": ["finding from the notes 1", "2"],
  "actionRecommendations": ["recommended action 1", "2"]
}`, periodTitles[period], ReportContext(notes, loc))
}
