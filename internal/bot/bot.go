// Package bot dispatches chat commands to the analysis pipeline.
package bot

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"SignalSG/internal/notifier"
)

// Messenger sends and edits chat messages.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) (int, error)
	EditMessage(ctx context.Context, chatID int64, messageID int, text string) error
}

// Analyzer produces the reply for one ticker.
type Analyzer interface {
	Reply(ctx context.Context, ticker string) string
}

// Bot routes incoming messages to static replies or the analyzer.
type Bot struct {
	Messenger Messenger
	Analyzer  Analyzer
	allowed   map[int64]bool
}

// New creates a bot. An empty allowedChats accepts every chat.
func New(m Messenger, a Analyzer, allowedChats []int64) *Bot {
	b := &Bot{Messenger: m, Analyzer: a}
	if len(allowedChats) > 0 {
		b.allowed = make(map[int64]bool, len(allowedChats))
		for _, id := range allowedChats {
			b.allowed[id] = true
		}
	}
	return b
}

// ParseCommand splits "/analyze@SomeBot btc usdt" into "analyze" and
// "btc usdt". Text without a leading slash yields an empty command.
func ParseCommand(text string) (command, args string) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", strings.TrimSpace(text)
	}
	command = strings.TrimPrefix(fields[0], "/")
	if i := strings.IndexByte(command, '@'); i >= 0 {
		command = command[:i]
	}
	return strings.ToLower(command), strings.Join(fields[1:], " ")
}

// HandleMessage answers one message. It matches notifier.MessageHandler.
func (b *Bot) HandleMessage(ctx context.Context, msg notifier.Message) {
	if b.allowed != nil && !b.allowed[msg.ChatID] {
		log.Warn().Int64("chat_id", msg.ChatID).Str("username", msg.Username).
			Msg("message from unauthorized chat ignored")
		return
	}

	command, args := ParseCommand(msg.Text)
	switch command {
	case "start":
		b.send(ctx, msg.ChatID, notifier.WelcomeText)
	case "help":
		b.send(ctx, msg.ChatID, notifier.HelpText)
	case "analyze":
		if args == "" {
			b.send(ctx, msg.ChatID, notifier.UsageText)
			return
		}
		b.analyze(ctx, msg, args)
	default:
		b.send(ctx, msg.ChatID, notifier.UnknownText)
	}
}

func (b *Bot) analyze(ctx context.Context, msg notifier.Message, ticker string) {
	logger := log.With().Str("request_id", uuid.NewString()).
		Str("ticker", ticker).Int64("user_id", msg.UserID).Logger()
	ctx = logger.WithContext(ctx)
	logger.Info().Msg("analyzing ticker")

	placeholder, err := b.Messenger.SendMessage(ctx, msg.ChatID, notifier.ThinkingText(ticker))
	if err != nil {
		logger.Error().Err(err).Msg("send placeholder")
	}

	reply := b.Analyzer.Reply(ctx, ticker)

	if placeholder != 0 {
		err := b.Messenger.EditMessage(ctx, msg.ChatID, placeholder, reply)
		if err == nil {
			logger.Info().Msg("analysis delivered")
			return
		}
		logger.Warn().Err(err).Msg("edit placeholder failed, sending new message")
	}
	b.send(ctx, msg.ChatID, reply)
}

func (b *Bot) send(ctx context.Context, chatID int64, text string) {
	if _, err := b.Messenger.SendMessage(ctx, chatID, text); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("send reply")
	}
}
