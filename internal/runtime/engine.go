package runtime

import (
	"context"
	"log/slog"

	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/pkg/dialog"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
	"github.com/aretw0/colloquy/pkg/session"
	"github.com/aretw0/colloquy/pkg/turn"
)

// Engine is the greeting-flow orchestrator.
//
// The conversation moves Idle -> AwaitingName -> AwaitingCallName -> Greeted.
// The state is implicit: the dialog stack tells whether the greeting
// dialog is running and GreetingState tells whether the user was greeted.
type Engine struct {
	dialogs   *dialog.Set
	directory ports.UserDirectory
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers dialog begin/end callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// NewEngine creates an engine backed by the registration directory.
func NewEngine(directory ports.UserDirectory, opts ...Option) *Engine {
	e := &Engine{
		directory: directory,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.dialogs = dialog.NewSet(
		dialog.WithLogger(e.logger),
		dialog.WithLifecycleHooks(e.hooks),
	)
	e.dialogs.MustRegister(TextPromptID, dialog.NewTextPrompt())
	e.dialogs.MustRegister(GreetingDialogID, newGreetingDialog(directory))
	return e
}

// Dialogs returns the dialog set of the engine.
func (e *Engine) Dialogs() *dialog.Set {
	return e.dialogs
}

// OnTurn runs one turn. Replies are buffered in tc and state writes in st;
// committing and delivering them is up to the caller.
func (e *Engine) OnTurn(ctx context.Context, tc *turn.Context, st *session.State) (domain.Branch, error) {
	act := tc.Activity()
	if !act.IsMessage() {
		// Non-message activities never touch the dialog stack, even mid-dialog.
		tc.SendTextf("%s event detected", act.Type)
		return domain.BranchEvent, nil
	}

	dc, err := e.dialogs.CreateContext(tc, st)
	if domain.IsCode(err, domain.CodeCorruptDialogState) {
		e.logger.Warn("Discarding undecodable dialog stack", "conversation", st.Key(), "err", err)
		if err := e.dialogs.Reset(st); err != nil {
			return domain.BranchFailed, err
		}
		dc, err = e.dialogs.CreateContext(tc, st)
	}
	if err != nil {
		return domain.BranchFailed, err
	}

	if id, active := dc.ActiveDialog(); active {
		_, err := dc.ContinueDialog(ctx)
		switch {
		case err == nil:
			return domain.BranchContinue, nil
		case domain.IsCode(err, domain.CodeNoActiveDialog):
			// Stray continue; idle orchestration takes the turn.
		case domain.IsCode(err, domain.CodeCorruptDialogState):
			e.logger.Warn("Resetting corrupt dialog stack", "conversation", st.Key(), "dialog", id, "err", err)
			st.Discard()
			tc.Reset()
			if err := dc.CancelAll(ctx); err != nil {
				return domain.BranchFailed, err
			}
		default:
			return domain.BranchFailed, err
		}
	}

	return e.idle(ctx, dc, tc, st)
}

func (e *Engine) idle(ctx context.Context, dc *dialog.Context, tc *turn.Context, st *session.State) (domain.Branch, error) {
	act := tc.Activity()

	greeting, err := session.GreetingSlot.Get(st)
	if err != nil {
		return domain.BranchFailed, err
	}

	if !greeting.Greeted() {
		rec, err := e.directory.FindByChannelUser(ctx, act.ChannelID, act.From.ID)
		if err != nil {
			return domain.BranchFailed, domain.CollaboratorUnavailable("user directory", "lookup", err)
		}

		if name := callName(rec); name != "" {
			if err := session.GreetingSlot.Set(st, domain.GreetingState{CallName: name}); err != nil {
				return domain.BranchFailed, err
			}
			tc.SendTextf("Hi %s, nice to talk to you again!", name)
			return domain.BranchWelcome, nil
		}

		tc.SendTextf("Hi %s! You are not registered in our database.", act.From.DisplayName())
		if _, err := dc.BeginDialog(ctx, GreetingDialogID, nil); err != nil {
			return domain.BranchFailed, err
		}
		return domain.BranchRegister, nil
	}

	var counter domain.CounterState
	err = session.CounterSlot.Update(st, func(c *domain.CounterState) {
		c.TurnCount++
		counter = *c
	})
	if err != nil {
		return domain.BranchFailed, err
	}
	tc.SendTextf("Hi %s (Turn %d): You typed \"%s\"", greeting.CallName, counter.TurnCount, act.Text)
	return domain.BranchEcho, nil
}

// callName picks how to address a registered user.
func callName(rec *domain.UserRecord) string {
	if rec == nil {
		return ""
	}
	if rec.CallName != "" {
		return rec.CallName
	}
	return rec.Name
}
