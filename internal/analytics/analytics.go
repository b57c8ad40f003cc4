// Package analytics computes dashboard figures from a note collection.
// Every function is pure; callers pass a snapshot from the note service.
package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"voicenote-service/internal/models"
)

// DefaultTopKeywords is how many keywords the dashboard shows
const DefaultTopKeywords = 5

// Count is a label with its number of occurrences
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Dashboard bundles every aggregate the analytics view shows
type Dashboard struct {
	TotalNotes   int                     `json:"totalNotes"`
	TodayNotes   int                     `json:"todayNotes"`
	UrgentNotes  int                     `json:"urgentNotes"`
	TopCategory  models.Category         `json:"topCategory"`
	Categories   []Count                 `json:"categories"`
	Distribution map[models.Category]int `json:"distribution"`
	Days         []Count                 `json:"days"`
	TopKeywords  []Count                 `json:"topKeywords"`
	Insights     []string                `json:"insights"`
}

// CategoryDistribution counts notes per category. The slice keeps the order
// in which categories are first seen.
func CategoryDistribution(notes []models.VoiceNote) (map[models.Category]int, []Count) {
	dist := make(map[models.Category]int)
	var order []models.Category
	for _, n := range notes {
		if _, ok := dist[n.Category]; !ok {
			order = append(order, n.Category)
		}
		dist[n.Category]++
	}
	counts := make([]Count, 0, len(order))
	for _, c := range order {
		counts = append(counts, Count{Key: string(c), Count: dist[c]})
	}
	return dist, counts
}

// TimePattern counts notes per calendar day (YYYY-MM-DD in loc), in order of first appearance
func TimePattern(notes []models.VoiceNote, loc *time.Location) []Count {
	if loc == nil {
		loc = time.Local
	}
	idx := make(map[string]int)
	var out []Count
	for _, n := range notes {
		day := n.CreatedAt().In(loc).Format("2006-01-02")
		if i, ok := idx[day]; ok {
			out[i].Count++
			continue
		}
		idx[day] = len(out)
		out = append(out, Count{Key: day, Count: 1})
	}
	return out
}

// TopKeywords returns up to limit keywords by descending frequency.
// Ties keep first-seen order.
func TopKeywords(notes []models.VoiceNote, limit int) []Count {
	idx := make(map[string]int)
	var all []Count
	for _, n := range notes {
		for _, k := range n.Keywords {
			k = strings.TrimSpace(k)
			if k == "" {
				continue
			}
			if i, ok := idx[k]; ok {
				all[i].Count++
				continue
			}
			idx[k] = len(all)
			all = append(all, Count{Key: k, Count: 1})
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Count > all[j].Count })
	if limit >= 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}

// UrgentCount counts notes flagged urgent
func UrgentCount(notes []models.VoiceNote) int {
	n := 0
	for _, note := range notes {
		if note.IsUrgent {
			n++
		}
	}
	return n
}

// TodayCount counts notes created on the same calendar day as now in loc
func TodayCount(notes []models.VoiceNote, now time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.Local
	}
	today := now.In(loc).Format("2006-01-02")
	n := 0
	for _, note := range notes {
		if note.CreatedAt().In(loc).Format("2006-01-02") == today {
			n++
		}
	}
	return n
}

// TopCategory returns the most frequent category, the first seen on a tie.
// An empty collection yields "".
func TopCategory(counts []Count) models.Category {
	best := Count{}
	for _, c := range counts {
		if c.Count > best.Count {
			best = c
		}
	}
	return models.Category(best.Key)
}

var insightTemplates = map[models.Locale]struct {
	dominant string
	tooFew   string
	urgent   string
	allCalm  string
}{
	models.LocaleEnglish: {
		dominant: "You are focusing mostly on %q.",
		tooFew:   "Record more notes and the insights here will get better.",
		urgent:   "You have %d urgent notes. Review them so nothing slips.",
		allCalm:  "No urgent notes right now. Everything is on track.",
	},
	models.LocaleBurmese: {
		dominant: "သင်သည် \"%s\" နှင့် ပတ်သက်၍ အလေးပေး လုပ်ဆောင်နေသည်ကို တွေ့ရပါသည်။",
		tooFew:   "မှတ်စုများ ပိုမိုပြုလုပ်ပါက AI မှ သင့်အတွက် ပိုမိုကောင်းမွန်သော သုံးသပ်ချက်များ ထုတ်ပေးနိုင်ပါမည်။",
		urgent:   "သင့်တွင် အရေးကြီးမှတ်စု (%d) ခု ရှိနေပါသည်။ မမေ့လျော့စေရန် ပြန်လည်စစ်ဆေးပါ။",
		allCalm:  "လက်ရှိတွင် အရေးကြီးမှတ်စုများ မရှိသေးပါ။ အားလုံးအဆင်ပြေနေပါသည်။",
	},
}

// Insights returns two narrative lines. The first names the dominant
// category once there are more than five notes; the second reports urgency.
func Insights(notes []models.VoiceNote, locale models.Locale) []string {
	tpl, ok := insightTemplates[locale]
	if !ok {
		tpl = insightTemplates[models.LocaleEnglish]
	}

	out := make([]string, 0, 2)
	if len(notes) > 5 {
		_, counts := CategoryDistribution(notes)
		out = append(out, fmt.Sprintf(tpl.dominant, TopCategory(counts).Label(locale)))
	} else {
		out = append(out, tpl.tooFew)
	}
	if urgent := UrgentCount(notes); urgent > 0 {
		out = append(out, fmt.Sprintf(tpl.urgent, urgent))
	} else {
		out = append(out, tpl.allCalm)
	}
	return out
}

// Summarize computes the whole dashboard
func Summarize(notes []models.VoiceNote, now time.Time, loc *time.Location, locale models.Locale) Dashboard {
	dist, counts := CategoryDistribution(notes)
	return Dashboard{
		TotalNotes:   len(notes),
		TodayNotes:   TodayCount(notes, now, loc),
		UrgentNotes:  UrgentCount(notes),
		TopCategory:  TopCategory(counts),
		Categories:   counts,
		Distribution: dist,
		Days:         TimePattern(notes, loc),
		TopKeywords:  TopKeywords(notes, DefaultTopKeywords),
		Insights:     Insights(notes, locale),
	}
}
