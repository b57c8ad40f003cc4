package notify

import (
	"context"
	"strings"
	"testing"
	"time"

	"voicenote-service/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type chanSender struct {
	sent chan tgbotapi.MessageConfig
}

func (s *chanSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.sent <- c.(tgbotapi.MessageConfig)
	return tgbotapi.Message{}, nil
}

func TestOnlyUrgentNotesAreSent(t *testing.T) {
	t.Parallel()

	sender := &chanSender{sent: make(chan tgbotapi.MessageConfig, 4)}
	n := NewTelegramWithSender(sender, 42, models.LocaleEnglish, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go n.Run(ctx)

	n.NoteCreated(ctx, models.VoiceNote{ID: "calm", EnhancedText: "later"})
	n.NoteCreated(ctx, models.VoiceNote{ID: "hot", IsUrgent: true, EnhancedText: "Pump failure", Category: models.CategoryMining})

	select {
	case msg := <-sender.sent:
		if msg.ChatID != 42 {
			t.Errorf("chat id = %d, want 42", msg.ChatID)
		}
		if !strings.Contains(msg.Text, "Pump failure") {
			t.Errorf("text = %q", msg.Text)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no notification sent")
	}

	select {
	case msg := <-sender.sent:
		t.Errorf("unexpected second message: %q", msg.Text)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFormatTruncatesByRune(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("မ", 200)
	out := Format(models.VoiceNote{EnhancedText: long, Category: models.CategoryWork, Keywords: []string{"a", "b"}}, models.LocaleBurmese)

	if !strings.Contains(out, strings.Repeat("မ", previewLen)+"...") {
		t.Error("preview not truncated at 150 runes")
	}
	if !strings.Contains(out, "အလုပ်") || !strings.HasSuffix(out, "#a #b") {
		t.Errorf("unexpected message:\n%s", out)
	}
}

func TestNilNotifierIsSafe(t *testing.T) {
	t.Parallel()

	var n *Telegram
	n.NoteCreated(context.Background(), models.VoiceNote{IsUrgent: true})
	if err := n.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}
