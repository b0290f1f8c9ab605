package colloquy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/internal/runtime"
	"github.com/aretw0/colloquy/pkg/adapters/memory"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
	"github.com/aretw0/colloquy/pkg/session"
	"github.com/aretw0/colloquy/pkg/turn"
)

// ApologyText is the single reply of a turn that failed.
const ApologyText = "Sorry, it looks like something went wrong."

// Bot is the high-level entry point of the library.
// It turns one inbound activity into the replies of that turn.
type Bot struct {
	engine   *runtime.Engine
	sessions *session.Manager

	store     ports.StateStore
	directory ports.UserDirectory
	locker    ports.DistributedLocker
	lockTTL   time.Duration
	hooks     domain.LifecycleHooks
	onError   func(context.Context, domain.Activity, error)
	logger    *slog.Logger
	now       func() time.Time
}

// Option defines a functional option for configuring the Bot.
type Option func(*Bot)

// WithStore sets the conversation state backend (default: in-memory).
func WithStore(store ports.StateStore) Option {
	return func(b *Bot) {
		b.store = store
	}
}

// WithDirectory sets the registration directory (default: empty, in-memory).
func WithDirectory(directory ports.UserDirectory) Option {
	return func(b *Bot) {
		b.directory = directory
	}
}

// WithLocker serializes turns of a conversation across replicas.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(b *Bot) {
		b.locker = locker
		b.lockTTL = ttl
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(b *Bot) {
		b.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the bot.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		b.logger = logger
	}
}

// WithTurnErrorHandler is called with every turn-fatal error, after it has been logged.
func WithTurnErrorHandler(fn func(context.Context, domain.Activity, error)) Option {
	return func(b *Bot) {
		b.onError = fn
	}
}

// WithClock overrides the time source of replies and snapshots.
func WithClock(now func() time.Time) Option {
	return func(b *Bot) {
		b.now = now
	}
}

// New initializes a Bot.
func New(opts ...Option) *Bot {
	b := &Bot{now: time.Now}
	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = logging.NewNop()
	}
	if b.store == nil {
		b.store = memory.NewStore()
	}
	if b.directory == nil {
		b.directory = memory.NewDirectory()
	}

	sessionOpts := []session.Option{
		session.WithLogger(b.logger),
		session.WithClock(b.now),
	}
	if b.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(b.locker), session.WithLockTTL(b.lockTTL))
	}
	b.sessions = session.NewManager(b.store, sessionOpts...)

	b.engine = runtime.NewEngine(b.directory,
		runtime.WithLogger(b.logger),
		runtime.WithLifecycleHooks(b.hooks),
	)
	return b
}

// ProcessTurn runs one turn and returns its replies.
//
// Replies are released only after the state of the turn is committed. A
// turn-fatal error is logged and answered with a single apology; the state
// of the conversation is left as it was before the turn.
func (b *Bot) ProcessTurn(ctx context.Context, act domain.Activity) ([]domain.Reply, error) {
	key := act.ConversationKey()
	if key.IsZero() || act.Type == "" {
		return nil, domain.NewError(domain.ErrInvalidActivity, "activity needs a type, a channel and a conversation", nil, map[string]any{
			"channel":      act.ChannelID,
			"conversation": act.ConversationID,
		})
	}

	start := b.now()
	b.emitTurnStart(ctx, key.String(), act)

	tc := turn.New(act, turn.WithClock(b.now))
	var branch domain.Branch
	err := b.sessions.Run(ctx, key.String(), func(ctx context.Context, st *session.State) error {
		var err error
		branch, err = b.engine.OnTurn(ctx, tc, st)
		if err != nil {
			return err
		}
		return st.Commit(ctx)
	})

	if err != nil {
		branch = domain.BranchFailed
		b.logger.Error("Turn failed",
			"conversation", key.String(),
			"activity", act.ID,
			"code", domain.Code(err),
			"err", err,
		)
		if b.onError != nil {
			b.onError(ctx, act, err)
		}
		tc.Reset()
		tc.SendText(ApologyText)
	}

	replies := tc.Replies()
	b.emitTurnEnd(ctx, key.String(), act, branch, len(replies), b.now().Sub(start), err)
	return replies, nil
}

// Converse is a convenience for adapters that only deal with text.
func (b *Bot) Converse(ctx context.Context, act domain.Activity) ([]string, error) {
	replies, err := b.ProcessTurn(ctx, act)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(replies))
	for i, r := range replies {
		texts[i] = r.Text
	}
	return texts, nil
}

// Sessions returns the conversation state manager.
func (b *Bot) Sessions() *session.Manager {
	return b.sessions
}

// Directory returns the registration directory.
func (b *Bot) Directory() ports.UserDirectory {
	return b.directory
}

// Dialogs returns the ids of the registered dialogs.
func (b *Bot) Dialogs() []string {
	return b.engine.Dialogs().IDs()
}

// ResetConversation drops the persisted state of a conversation.
func (b *Bot) ResetConversation(ctx context.Context, key domain.ConversationKey) error {
	if key.IsZero() {
		return fmt.Errorf("conversation key is required")
	}
	return b.sessions.Delete(ctx, key.String())
}

func (b *Bot) emitTurnStart(ctx context.Context, key string, act domain.Activity) {
	if b.hooks.OnTurnStart == nil {
		return
	}
	b.hooks.OnTurnStart(ctx, &domain.TurnEvent{
		EventBase: domain.EventBase{
			Timestamp:    b.now(),
			Type:         domain.EventTurnStart,
			Conversation: key,
		},
		ActivityType: act.Type,
	})
}

func (b *Bot) emitTurnEnd(ctx context.Context, key string, act domain.Activity, branch domain.Branch, replies int, d time.Duration, err error) {
	if b.hooks.OnTurnEnd == nil {
		return
	}
	b.hooks.OnTurnEnd(ctx, &domain.TurnEvent{
		EventBase: domain.EventBase{
			Timestamp:    b.now(),
			Type:         domain.EventTurnEnd,
			Conversation: key,
		},
		ActivityType: act.Type,
		Branch:       branch,
		Replies:      replies,
		Duration:     d,
		Err:          err,
	})
}
