// Package notify pushes urgent notes to a Telegram chat.
package notify

import (
	"context"
	"fmt"
	"strings"

	"voicenote-service/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const previewLen = 150

// Sender is the subset of *tgbotapi.BotAPI used here
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends a message for every urgent note. Notes are queued by
// NoteCreated and delivered by Run.
type Telegram struct {
	sender Sender
	chatID int64
	locale models.Locale
	queue  chan models.VoiceNote
	logger *zap.Logger
}

// NewTelegram authorizes the bot token. It returns nil, nil when token is empty.
func NewTelegram(token string, chatID int64, locale models.Locale, logger *zap.Logger) (*Telegram, error) {
	if token == "" {
		logger.Info("Telegram notifications are disabled (bot token is empty)")
		return nil, nil
	}

	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot API: %w", err)
	}

	logger.Info("Telegram bot authorized", zap.String("username", botAPI.Self.UserName))

	return NewTelegramWithSender(botAPI, chatID, locale, logger), nil
}

// NewTelegramWithSender builds a notifier around an existing sender
func NewTelegramWithSender(sender Sender, chatID int64, locale models.Locale, logger *zap.Logger) *Telegram {
	return &Telegram{
		sender: sender,
		chatID: chatID,
		locale: locale,
		queue:  make(chan models.VoiceNote, 32),
		logger: logger,
	}
}

// NoteCreated queues urgent notes. It never blocks; a full queue drops the note.
func (t *Telegram) NoteCreated(ctx context.Context, note models.VoiceNote) {
	if t == nil || !note.IsUrgent {
		return
	}
	select {
	case t.queue <- note:
	default:
		t.logger.Warn("Notification queue full, dropping", zap.String("note_id", note.ID))
	}
}

// Run delivers queued notifications until ctx is done
func (t *Telegram) Run(ctx context.Context) error {
	if t == nil {
		return nil
	}

	t.logger.Info("Telegram notifier started")
	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Telegram notifier shutting down...")
			return nil
		case note := <-t.queue:
			if err := t.send(note); err != nil {
				t.logger.Error("Failed to send notification",
					zap.String("note_id", note.ID),
					zap.Error(err))
			}
		}
	}
}

var headers = map[models.Locale]string{
	models.LocaleEnglish: "🔔 Urgent voice note",
	models.LocaleBurmese: "🔔 အရေးကြီးမှတ်စု",
}

// Format renders the message text for an urgent note
func Format(note models.VoiceNote, locale models.Locale) string {
	header, ok := headers[locale]
	if !ok {
		header = headers[models.LocaleEnglish]
	}

	preview := []rune(note.EnhancedText)
	text := string(preview)
	if len(preview) > previewLen {
		text = string(preview[:previewLen]) + "..."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", header)
	fmt.Fprintf(&b, "📂 %s\n", note.Category.Label(locale))
	if note.Summary != "" {
		fmt.Fprintf(&b, "📝 %s\n", note.Summary)
	}
	fmt.Fprintf(&b, "\n%s", text)
	if len(note.Keywords) > 0 {
		fmt.Fprintf(&b, "\n\n#%s", strings.Join(note.Keywords, " #"))
	}
	return b.String()
}

func (t *Telegram) send(note models.VoiceNote) error {
	msg := tgbotapi.NewMessage(t.chatID, Format(note, t.locale))
	if _, err := t.sender.Send(msg); err != nil {
		return err
	}
	t.logger.Info("Urgent note notification sent", zap.String("note_id", note.ID))
	return nil
}
