package models

import (
	"errors"
	"testing"
)

func TestParseCategory(t *testing.T) {
	cases := map[string]Category{
		"finance":       CategoryFinance,
		" Work ":        CategoryWork,
		"Daily log":     CategoryDailyLog,
		"daily_log":     CategoryDailyLog,
		"စိတ်ကူးများ":   CategoryIdeas,
		"":              CategoryUncategorized,
		"shopping":      CategoryUncategorized,
		"UNCATEGORIZED": CategoryUncategorized,
	}
	for in, want := range cases {
		if got := ParseCategory(in); got != want {
			t.Errorf("ParseCategory(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCategoryLabelFallsBack(t *testing.T) {
	if got := CategoryMining.Label("fr"); got != "Mining" {
		t.Errorf("Label(fr) = %q", got)
	}
	if got := Category("custom").Label(LocaleEnglish); got != "custom" {
		t.Errorf("unknown label = %q", got)
	}
	if Category("custom").Valid() {
		t.Error("custom category reported valid")
	}
}

func TestMessageLocales(t *testing.T) {
	if ParseLocale("de") != LocaleEnglish || ParseLocale("my") != LocaleBurmese {
		t.Fatal("ParseLocale mismatch")
	}
	for _, key := range []string{MsgMicrophoneDenied, MsgTranscriptionFail, MsgReportFail, MsgEmptyReportWindow, MsgEmptyRecording, MsgDeleteConfirmation} {
		if Message(LocaleEnglish, key) == "" || Message(LocaleBurmese, key) == "" {
			t.Errorf("message %q missing a translation", key)
		}
	}
	if Message("de", MsgReportFail) != Message(LocaleEnglish, MsgReportFail) {
		t.Error("unknown locale did not fall back to English")
	}
}

func TestErrorsUnwrap(t *testing.T) {
	cause := errors.New("boom")

	var ue UserError
	te := error(&TranscriptionError{Message: "m", Err: cause})
	if !errors.Is(te, ErrTranscription) || !errors.Is(te, cause) || !errors.As(te, &ue) {
		t.Errorf("TranscriptionError does not unwrap: %v", te)
	}

	pe := error(&PermissionError{Message: "m", Err: cause})
	if !errors.Is(pe, ErrPermissionDenied) {
		t.Error("PermissionError does not unwrap")
	}

	ee := error(&EmptyInputError{Message: "m", Period: PeriodWeekly})
	if !errors.Is(ee, ErrEmptyInput) {
		t.Error("EmptyInputError does not unwrap")
	}

	se := error(&PersistError{Op: "create", Err: cause})
	if !errors.Is(se, cause) || errors.As(se, &ue) {
		t.Error("PersistError should wrap its cause and carry no user message")
	}
}

func TestNotePatchApplyCopies(t *testing.T) {
	orig := VoiceNote{ID: "1", EnhancedText: "old", Keywords: []string{"a"}}
	text := "new"
	out := NotePatch{EnhancedText: &text}.Apply(orig)

	if out.EnhancedText != "new" || orig.EnhancedText != "old" {
		t.Errorf("apply mutated or failed: %+v / %+v", out, orig)
	}
	out.Keywords[0] = "z"
	if orig.Keywords[0] != "a" {
		t.Error("keywords slice is shared")
	}
}

func TestParsePeriod(t *testing.T) {
	if p, err := ParsePeriod("weekly"); err != nil || p != PeriodWeekly {
		t.Errorf("ParsePeriod(weekly) = %q, %v", p, err)
	}
	if _, err := ParsePeriod("yearly"); err == nil {
		t.Error("expected an error for yearly")
	}
}
