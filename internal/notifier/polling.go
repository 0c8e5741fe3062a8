package notifier

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Message is an incoming text message.
type Message struct {
	ChatID   int64
	UserID   int64
	Username string
	Text     string
}

// MessageHandler is called once per incoming text message.
type MessageHandler func(ctx context.Context, msg Message)

// telegramUpdate represents a Telegram update from long polling.
type telegramUpdate struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		From *struct {
			ID       int64  `json:"id"`
			Username string `json:"username"`
		} `json:"from"`
	} `json:"message"`
}

// PollTimeout is the long-poll duration passed to getUpdates.
var PollTimeout = 30 * time.Second

// HandlerTimeout bounds one handler call. Handlers keep running after the
// polling context is cancelled so in-flight replies are still delivered.
var HandlerTimeout = 2 * time.Minute

// StartPolling long-polls for updates and runs handler in its own goroutine
// for each message. It blocks until ctx is cancelled and in-flight handlers
// have returned. Handlers get a context detached from ctx cancellation and
// limited to HandlerTimeout.
func (t *TelegramClient) StartPolling(ctx context.Context, handler MessageHandler) {
	var wg sync.WaitGroup
	defer wg.Wait()

	offset := 0
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("telegram polling stopped")
			return
		default:
		}

		var updates []telegramUpdate
		err := t.call(ctx, "getUpdates", map[string]any{
			"offset":          offset,
			"timeout":         int(PollTimeout / time.Second),
			"allowed_updates": []string{"message"},
		}, &updates)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Warn().Err(err).Msg("polling request failed")
			sleep(ctx, 5*time.Second)
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			if update.Message == nil || strings.TrimSpace(update.Message.Text) == "" {
				continue
			}
			msg := Message{
				ChatID: update.Message.Chat.ID,
				Text:   strings.TrimSpace(update.Message.Text),
			}
			if from := update.Message.From; from != nil {
				msg.UserID = from.ID
				msg.Username = from.Username
			}
			log.Info().Int64("chat_id", msg.ChatID).Int64("user_id", msg.UserID).
				Str("text", msg.Text).Msg("received message")

			wg.Add(1)
			go func() {
				defer wg.Done()
				hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), HandlerTimeout)
				defer cancel()
				handler(hctx, msg)
			}()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
