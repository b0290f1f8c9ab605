package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/session"
	"github.com/aretw0/colloquy/pkg/turn"
)

// maxSettleSteps bounds the begin/complete chain of a single operation.
// A chain longer than this means dialogs keep beginning each other.
const maxSettleSteps = 64

// Context is the dialog stack of one conversation, bound to one turn.
// Every successful operation buffers the stack back into the session state.
type Context struct {
	set     *Set
	turn    *turn.Context
	state   *session.State
	dialogs domain.DialogState
	logger  *slog.Logger
}

// Turn returns the turn being processed.
func (dc *Context) Turn() *turn.Context {
	return dc.turn
}

// State returns the conversation state of the turn.
func (dc *Context) State() *session.State {
	return dc.state
}

// Logger returns a logger scoped to the conversation.
func (dc *Context) Logger() *slog.Logger {
	return dc.logger
}

// Frame returns the top frame, or nil when the stack is empty.
// The pointer is only valid until the stack changes.
func (dc *Context) Frame() *domain.Frame {
	return dc.dialogs.Active()
}

// Depth returns the number of frames on the stack.
func (dc *Context) Depth() int {
	return len(dc.dialogs.Stack)
}

// ActiveDialog returns the id of the top frame.
func (dc *Context) ActiveDialog() (string, bool) {
	if f := dc.dialogs.Active(); f != nil {
		return f.DialogID, true
	}
	return "", false
}

// BeginDialog pushes a new frame for dialogID and runs its entry logic.
func (dc *Context) BeginDialog(ctx context.Context, dialogID string, args any) (Result, error) {
	d, ok := dc.set.Find(dialogID)
	if !ok {
		return Result{}, domain.UnknownDialog(dialogID)
	}
	dc.push(ctx, dialogID)
	res, err := d.Begin(ctx, dc, args)
	return dc.settle(ctx, res, err)
}

// ContinueDialog resumes the top frame with the raw text of the turn.
func (dc *Context) ContinueDialog(ctx context.Context) (Result, error) {
	frame := dc.dialogs.Active()
	if frame == nil {
		return Result{}, domain.NoActiveDialog()
	}
	d, ok := dc.set.Find(frame.DialogID)
	if !ok {
		return Result{}, domain.CorruptDialogState(*frame, fmt.Sprintf("dialog %q is not registered", frame.DialogID))
	}
	res, err := d.Resume(ctx, dc, dc.turn.Text())
	return dc.settle(ctx, res, err)
}

// EndDialog pops the top frame with value. A parent frame resumes with value
// as its input; without a parent the value is returned as Completed.
func (dc *Context) EndDialog(ctx context.Context, value any) (Result, error) {
	if dc.dialogs.Active() == nil {
		return Result{}, domain.NoActiveDialog()
	}
	return dc.settle(ctx, Completed(value), nil)
}

// CancelAll clears the stack.
func (dc *Context) CancelAll(ctx context.Context) error {
	for len(dc.dialogs.Stack) > 0 {
		dc.pop(ctx)
	}
	return dc.persist()
}

// settle drives a result until the stack is waiting or empty: child
// requests are pushed and begun, completed frames are popped and their value
// resumes the parent.
func (dc *Context) settle(ctx context.Context, res Result, err error) (Result, error) {
	for range maxSettleSteps {
		if err != nil {
			return Result{}, err
		}

		switch res.Status {
		case StatusWaiting:
			return res, dc.persist()

		case StatusBeginChild:
			child, ok := dc.set.Find(res.ChildID)
			if !ok {
				return Result{}, domain.UnknownDialog(res.ChildID)
			}
			dc.push(ctx, res.ChildID)
			res, err = child.Begin(ctx, dc, res.ChildArgs)

		case StatusCompleted:
			dc.pop(ctx)
			parent := dc.dialogs.Active()
			if parent == nil {
				return res, dc.persist()
			}
			d, ok := dc.set.Find(parent.DialogID)
			if !ok {
				return Result{}, domain.CorruptDialogState(*parent, fmt.Sprintf("dialog %q is not registered", parent.DialogID))
			}
			res, err = d.Resume(ctx, dc, res.Value)

		default:
			return Result{}, fmt.Errorf("unknown dialog status %d", res.Status)
		}
	}
	return Result{}, fmt.Errorf("dialog chain exceeded %d steps", maxSettleSteps)
}

func (dc *Context) push(ctx context.Context, dialogID string) {
	dc.dialogs.Stack = append(dc.dialogs.Stack, domain.NewFrame(dialogID))
	dc.logger.Debug("Dialog begun", "dialog", dialogID, "depth", len(dc.dialogs.Stack))
	if dc.set.hooks.OnDialogBegin != nil {
		dc.set.hooks.OnDialogBegin(ctx, dc.event(domain.EventDialogBegin, dialogID))
	}
}

func (dc *Context) pop(ctx context.Context) {
	top := dc.dialogs.Active()
	if top == nil {
		return
	}
	dialogID := top.DialogID
	dc.dialogs.Stack = dc.dialogs.Stack[:len(dc.dialogs.Stack)-1]
	dc.logger.Debug("Dialog ended", "dialog", dialogID, "depth", len(dc.dialogs.Stack))
	if dc.set.hooks.OnDialogEnd != nil {
		dc.set.hooks.OnDialogEnd(ctx, dc.event(domain.EventDialogEnd, dialogID))
	}
}

func (dc *Context) event(kind domain.EventType, dialogID string) *domain.DialogEvent {
	return &domain.DialogEvent{
		EventBase: domain.EventBase{
			Timestamp:    time.Now(),
			Type:         kind,
			Conversation: dc.state.Key(),
		},
		DialogID: dialogID,
		Depth:    len(dc.dialogs.Stack),
	}
}

func (dc *Context) persist() error {
	if dc.dialogs.Stack == nil {
		dc.dialogs.Stack = []domain.Frame{}
	}
	return session.DialogStateSlot.Set(dc.state, dc.dialogs)
}
