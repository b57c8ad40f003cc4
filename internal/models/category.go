package models

import "strings"

// Category is one of the fixed note categories
type Category string

const (
	CategoryWork          Category = "work"
	CategoryPersonal      Category = "personal"
	CategoryMining        Category = "mining"
	CategoryFinance       Category = "finance"
	CategoryIdeas         Category = "ideas"
	CategoryDailyLog      Category = "daily-log"
	CategoryUncategorized Category = "uncategorized"
)

// Categories lists the closed set in display order
var Categories = []Category{
	CategoryWork,
	CategoryPersonal,
	CategoryMining,
	CategoryFinance,
	CategoryIdeas,
	CategoryDailyLog,
	CategoryUncategorized,
}

// CategoryLabels maps categories to their display names per locale
var CategoryLabels = map[Locale]map[Category]string{
	LocaleEnglish: {
		CategoryWork:          "Work",
		CategoryPersonal:      "Personal",
		CategoryMining:        "Mining",
		CategoryFinance:       "Finance",
		CategoryIdeas:         "Ideas",
		CategoryDailyLog:      "Daily log",
		CategoryUncategorized: "Uncategorized",
	},
	LocaleBurmese: {
		CategoryWork:          "အလုပ်",
		CategoryPersonal:      "ကိုယ်ရေးကိုယ်တာ",
		CategoryMining:        "သတ္တုတူးဖော်ရေး",
		CategoryFinance:       "ဘဏ္ဍာရေး",
		CategoryIdeas:         "စိတ်ကူးများ",
		CategoryDailyLog:      "နေ့စဉ်မှတ်တမ်း",
		CategoryUncategorized: "အမျိုးအစားမခွဲခြားရသေး",
	},
}

// Valid reports whether c belongs to the closed set
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Label returns the display name of c for the locale
func (c Category) Label(locale Locale) string {
	labels, ok := CategoryLabels[locale]
	if !ok {
		labels = CategoryLabels[LocaleEnglish]
	}
	if l, ok := labels[c]; ok {
		return l
	}
	return string(c)
}

// ParseCategory maps a slug or any localized label to a Category.
// Unknown values are clamped to CategoryUncategorized.
func ParseCategory(s string) Category {
	s = strings.TrimSpace(s)
	if s == "" {
		return CategoryUncategorized
	}
	lower := strings.ToLower(s)
	for _, c := range Categories {
		if lower == string(c) {
			return c
		}
		for _, labels := range CategoryLabels {
			if strings.ToLower(labels[c]) == lower {
				return c
			}
		}
	}
	switch lower {
	case "dailylog", "daily_log", "daily":
		return CategoryDailyLog
	}
	return CategoryUncategorized
}
