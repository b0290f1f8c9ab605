package dialog

import "context"

// Status tags the outcome of a dialog invocation.
type Status int

const (
	// StatusWaiting means a prompt was issued and the turn ends.
	StatusWaiting Status = iota
	// StatusCompleted means the frame finished with a value.
	StatusCompleted
	// StatusBeginChild asks the Context to push and begin another dialog.
	StatusBeginChild
)

func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusCompleted:
		return "completed"
	case StatusBeginChild:
		return "begin_child"
	default:
		return "unknown"
	}
}

// Result is the outcome of a dialog turn.
type Result struct {
	Status Status
	Value  any

	// Child request, only set with StatusBeginChild.
	ChildID   string
	ChildArgs any
}

// Waiting is the result of a dialog that suspended on a prompt.
func Waiting() Result {
	return Result{Status: StatusWaiting}
}

// Completed is the result of a dialog that ended with value.
func Completed(value any) Result {
	return Result{Status: StatusCompleted, Value: value}
}

// BeginChild requests dialogID to be pushed on top of the calling frame.
// The child's completion value becomes the caller's next input.
func BeginChild(dialogID string, args any) Result {
	return Result{Status: StatusBeginChild, ChildID: dialogID, ChildArgs: args}
}

// Dialog is a registered unit of interaction logic.
//
// Begin runs when a frame is pushed, with the arguments of the begin request.
// Resume runs when the frame is on top again, with the raw text of the turn
// or the value of a child that just completed. Both find their frame through
// dc.Frame().
type Dialog interface {
	Begin(ctx context.Context, dc *Context, args any) (Result, error)
	Resume(ctx context.Context, dc *Context, input any) (Result, error)
}

// Validator is implemented by dialogs that can check their own definition.
type Validator interface {
	Validate() error
}
