package runner

import (
	"log/slog"

	"github.com/aretw0/colloquy/pkg/domain"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithConversation sets the channel and conversation every turn belongs to.
func WithConversation(channelID, conversationID string) Option {
	return func(r *Runner) {
		r.Conversation = domain.ConversationKey{ChannelID: channelID, ConversationID: conversationID}
	}
}

// WithUser sets the account the activities come from.
func WithUser(id, name string) Option {
	return func(r *Runner) {
		r.From = domain.Account{ID: id, Name: name}
	}
}

// WithRenderer configures the content renderer of the default text handler.
func WithRenderer(renderer ContentRenderer) Option {
	return func(r *Runner) {
		r.Renderer = renderer
	}
}
