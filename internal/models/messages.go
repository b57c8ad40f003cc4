package models

// Locale selects the language of user-facing messages
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleBurmese Locale = "my"
)

// Message keys
const (
	MsgMicrophoneDenied   = "microphone_denied"
	MsgTranscriptionFail  = "transcription_failed"
	MsgReportFail         = "report_failed"
	MsgEmptyReportWindow  = "empty_report_window"
	MsgEmptyRecording     = "empty_recording"
	MsgDeleteConfirmation = "delete_confirmation"
)

var messages = map[Locale]map[string]string{
	LocaleEnglish: {
		MsgMicrophoneDenied:   "Microphone access is not allowed.",
		MsgTranscriptionFail:  "The AI could not turn this recording into a note.",
		MsgReportFail:         "The report could not be generated.",
		MsgEmptyReportWindow:  "There are no notes in this period yet.",
		MsgEmptyRecording:     "Nothing was recorded.",
		MsgDeleteConfirmation: "Are you sure you want to delete this note?",
	},
	LocaleBurmese: {
		MsgMicrophoneDenied:   "မိုက်ကရိုဖုန်း အသုံးပြုခွင့် မရှိပါ။",
		MsgTranscriptionFail:  "AI မှ မှတ်စုကို အကျဉ်းချုပ်ရန် ပျက်ကွက်ခဲ့ပါသည်။",
		MsgReportFail:         "အစီရင်ခံစာ ထုတ်ယူရန် ပျက်ကွက်ခဲ့ပါသည်။",
		MsgEmptyReportWindow:  "ဤကာလအတွင်း မှတ်စုများ မရှိသေးပါ။",
		MsgEmptyRecording:     "အသံ မဖမ်းယူရသေးပါ။",
		MsgDeleteConfirmation: "ဤမှတ်စုကို ဖျက်မည်မှာ သေချာပါသလား?",
	},
}

// ParseLocale falls back to English for unknown values
func ParseLocale(s string) Locale {
	if _, ok := messages[Locale(s)]; ok {
		return Locale(s)
	}
	return LocaleEnglish
}

// Message returns the localized text for key
func Message(locale Locale, key string) string {
	if m, ok := messages[locale][key]; ok {
		return m
	}
	return messages[LocaleEnglish][key]
}
