// Package export renders notes and reports as downloadable documents.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"voicenote-service/internal/models"
)

const (
	// DocContentType is served with .doc exports
	DocContentType = "application/msword"
	// JSONFilename is the name of the full note export
	JSONFilename = "voice_notes.json"
)

const noteTemplate = `Myanmar Voice Note AI Report
Generated on: {{ .GeneratedAt }}

DATE: {{ .Date }}
CATEGORY: {{ .Category }}
SUMMARY: {{ .Note.Summary }}

DETAILED NOTE:
{{ .Note.EnhancedText }}

KEYWORDS: {{ join .Note.Keywords ", " }}
`

type reportLabels struct {
	Title           string
	Summary         string
	KeyTopics       string
	Insights        string
	Recommendations string
}

var periodNames = map[models.Locale]map[models.Period]string{
	models.LocaleEnglish: {
		models.PeriodDaily:   "Daily",
		models.PeriodWeekly:  "Weekly",
		models.PeriodMonthly: "Monthly",
	},
	models.LocaleBurmese: {
		models.PeriodDaily:   "နေ့စဉ်",
		models.PeriodWeekly:  "အပတ်စဉ်",
		models.PeriodMonthly: "လစဉ်",
	},
}

var reportText = map[models.Locale]reportLabels{
	models.LocaleEnglish: {
		Title:           "Myanmar Voice Note AI - %s Report",
		Summary:         "Report summary:",
		KeyTopics:       "Key topics:",
		Insights:        "Findings:",
		Recommendations: "Recommendations:",
	},
	models.LocaleBurmese: {
		Title:           "မြန်မာ Voice Note AI - %s အစီရင်ခံစာ",
		Summary:         "အစီရင်ခံစာ အကျဉ်းချုပ်:",
		KeyTopics:       "အဓိကအကြောင်းအရာများ:",
		Insights:        "ရှာဖွေတွေ့ရှိချက်များ:",
		Recommendations: "အကြံပြုချက်များ:",
	},
}

const reportTemplate = `{{ .Labels.Title }}
--------------------------------------------------
{{ .Labels.Summary }}
{{ .Report.Summary }}

{{ .Labels.KeyTopics }}
{{ join .Report.KeyTopics ", " }}

{{ .Labels.Insights }}
{{ join .Report.Insights "\n" }}

{{ .Labels.Recommendations }}
{{ join .Report.ActionRecommendations "\n" }}
`

var templates = template.Must(template.New("note").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(noteTemplate))

func init() {
	template.Must(templates.New("report").Parse(reportTemplate))
}

// Exporter renders documents in one locale and time zone
type Exporter struct {
	Locale   models.Locale
	Location *time.Location
}

func (e Exporter) loc() *time.Location {
	if e.Location == nil {
		return time.Local
	}
	return e.Location
}

// NoteFilename is Note_ followed by the first eight characters of the id
func NoteFilename(n models.VoiceNote) string {
	id := n.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("Note_%s.doc", id)
}

// ReportFilename is Report_<period>_<YYYY-MM-DD>.doc for the export date
func (e Exporter) ReportFilename(period models.Period, at time.Time) string {
	return fmt.Sprintf("Report_%s_%s.doc", period, at.In(e.loc()).Format("2006-01-02"))
}

// WriteNote renders a single note document
func (e Exporter) WriteNote(w io.Writer, n models.VoiceNote, generatedAt time.Time) error {
	data := struct {
		GeneratedAt string
		Date        string
		Category    string
		Note        models.VoiceNote
	}{
		GeneratedAt: generatedAt.In(e.loc()).Format("2006-01-02 15:04:05"),
		Date:        n.CreatedAt().In(e.loc()).Format("2006-01-02 15:04:05"),
		Category:    n.Category.Label(e.Locale),
		Note:        n,
	}
	if err := templates.ExecuteTemplate(w, "note", data); err != nil {
		return fmt.Errorf("failed to render note: %w", err)
	}
	return nil
}

// WriteReport renders a report document with labels in the exporter locale
func (e Exporter) WriteReport(w io.Writer, r *models.Report) error {
	labels, ok := reportText[e.Locale]
	if !ok {
		labels = reportText[models.LocaleEnglish]
	}
	names, ok := periodNames[e.Locale]
	if !ok {
		names = periodNames[models.LocaleEnglish]
	}
	labels.Title = fmt.Sprintf(labels.Title, names[r.Period])

	data := struct {
		Labels reportLabels
		Report *models.Report
	}{labels, r}
	if err := templates.ExecuteTemplate(w, "report", data); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// WriteJSON writes every note as an indented JSON array
func WriteJSON(w io.Writer, notes []models.VoiceNote) error {
	if notes == nil {
		notes = []models.VoiceNote{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(notes); err != nil {
		return fmt.Errorf("failed to encode notes: %w", err)
	}
	return nil
}
