package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/google/uuid"
)

// eventPrefix introduces a line that is sent as a non-message activity.
const eventPrefix = "/event "

// Runner handles the conversation loop of a bot using the provided IO.
type Runner struct {
	Bot Bot

	// Handler is the strategy for IO. If nil, a TextHandler over Stdin/Stdout is used.
	Handler IOHandler

	// Logger is used for internal debug logging.
	Logger *slog.Logger

	Conversation domain.ConversationKey
	From         domain.Account
	Renderer     ContentRenderer

	now func() time.Time
}

// New creates a Runner for bot.
func New(bot Bot, opts ...Option) *Runner {
	r := &Runner{
		Bot:          bot,
		Logger:       logging.NewNop(),
		Conversation: domain.ConversationKey{ChannelID: "console", ConversationID: "local"},
		From:         domain.Account{ID: "console-user", Name: "You"},
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reads lines until the input ends, the user quits or ctx is cancelled.
// It returns nil on a normal end and ctx.Err() on cancellation.
func (r *Runner) Run(ctx context.Context) error {
	handler := r.resolveHandler()

	for {
		line, err := handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if ctx.Err() != nil {
				r.Logger.Debug("Runner input: Context cancelled", "err", ctx.Err())
				return ctx.Err()
			}
			return fmt.Errorf("input error: %w", err)
		}

		if line == "exit" || line == "quit" {
			return nil
		}

		act := r.activity(line)
		replies, err := r.Bot.ProcessTurn(ctx, act)
		if err != nil {
			return fmt.Errorf("turn error: %w", err)
		}
		r.Logger.Debug("turn processed", "conversation", r.Conversation.String(), "activity_type", act.Type, "replies", len(replies))

		if err := handler.Output(ctx, replies); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}
}

// activity maps one input line to an activity of the runner's conversation.
func (r *Runner) activity(line string) domain.Activity {
	act := domain.Activity{
		ID:             uuid.NewString(),
		Type:           domain.ActivityMessage,
		ChannelID:      r.Conversation.ChannelID,
		ConversationID: r.Conversation.ConversationID,
		From:           r.From,
		Text:           line,
		Timestamp:      r.now().UTC(),
	}
	if kind, ok := strings.CutPrefix(line, eventPrefix); ok && strings.TrimSpace(kind) != "" {
		act.Type = domain.ActivityType(strings.TrimSpace(kind))
		act.Text = ""
	}
	return act
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler != nil {
		return r.Handler
	}
	r.Handler = NewTextHandler(os.Stdin, os.Stdout, WithTextHandlerRenderer(r.Renderer))
	return r.Handler
}
