package domain

import "time"

// Well-known slot names. They are part of the persisted format.
const (
	SlotDialogState   = "DialogState"
	SlotGreetingState = "GreetingState"
	SlotCounterState  = "CounterState"
)

// Snapshot holds every state slot of one conversation.
// Slot values are JSON-compatible data (maps, slices, strings, numbers, bools).
type Snapshot struct {
	Key       string         `json:"key"`
	Slots     map[string]any `json:"slots"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewSnapshot creates an empty snapshot for the given conversation key.
func NewSnapshot(key string) *Snapshot {
	return &Snapshot{
		Key:   key,
		Slots: make(map[string]any),
	}
}

// Frame is the persisted record of one active dialog instance.
// Values is scratch storage private to the frame.
type Frame struct {
	DialogID  string         `json:"dialog_id"`
	StepIndex int            `json:"step_index"`
	Values    map[string]any `json:"values"`
}

// NewFrame creates a frame positioned at the first step.
func NewFrame(dialogID string) Frame {
	return Frame{
		DialogID: dialogID,
		Values:   make(map[string]any),
	}
}

// DialogState is the dialog stack of a conversation. The last frame is the top.
type DialogState struct {
	Stack []Frame `json:"stack"`
}

// Active returns the top frame, or nil when the stack is empty.
func (s *DialogState) Active() *Frame {
	if len(s.Stack) == 0 {
		return nil
	}
	return &s.Stack[len(s.Stack)-1]
}

// GreetingState remembers how to address the user once greeted.
type GreetingState struct {
	CallName string `json:"call_name,omitempty"`
}

// Greeted reports whether a call name has been recorded.
func (g GreetingState) Greeted() bool {
	return g.CallName != ""
}

// CounterState counts echo turns.
type CounterState struct {
	TurnCount int `json:"turn_count"`
}
