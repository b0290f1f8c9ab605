package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTurnStart   EventType = "turn_start"
	EventTurnEnd     EventType = "turn_end"
	EventDialogBegin EventType = "dialog_begin"
	EventDialogEnd   EventType = "dialog_end"
)

// Branch names the orchestration path a turn took.
type Branch string

const (
	BranchEvent    Branch = "event"
	BranchContinue Branch = "continue"
	BranchWelcome  Branch = "welcome"
	BranchRegister Branch = "register"
	BranchEcho     Branch = "echo"
	BranchFailed   Branch = "failed"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp    time.Time `json:"timestamp"`
	Type         EventType `json:"type"`
	Conversation string    `json:"conversation"`
}

// TurnEvent describes the start or the end of a turn.
type TurnEvent struct {
	EventBase
	ActivityType ActivityType  `json:"activity_type"`
	Branch       Branch        `json:"branch,omitempty"`
	Replies      int           `json:"replies,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
	Err          error         `json:"-"`
}

// DialogEvent describes a frame being pushed or popped.
type DialogEvent struct {
	EventBase
	DialogID string `json:"dialog_id"`
	Depth    int    `json:"depth"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnTurnStart   func(context.Context, *TurnEvent)
	OnTurnEnd     func(context.Context, *TurnEvent)
	OnDialogBegin func(context.Context, *DialogEvent)
	OnDialogEnd   func(context.Context, *DialogEvent)
}

// ChainHooks fans every callback out to all non-nil hooks in order.
func ChainHooks(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTurnStart: func(ctx context.Context, e *TurnEvent) {
			for _, h := range hooks {
				if h.OnTurnStart != nil {
					h.OnTurnStart(ctx, e)
				}
			}
		},
		OnTurnEnd: func(ctx context.Context, e *TurnEvent) {
			for _, h := range hooks {
				if h.OnTurnEnd != nil {
					h.OnTurnEnd(ctx, e)
				}
			}
		},
		OnDialogBegin: func(ctx context.Context, e *DialogEvent) {
			for _, h := range hooks {
				if h.OnDialogBegin != nil {
					h.OnDialogBegin(ctx, e)
				}
			}
		},
		OnDialogEnd: func(ctx context.Context, e *DialogEvent) {
			for _, h := range hooks {
				if h.OnDialogEnd != nil {
					h.OnDialogEnd(ctx, e)
				}
			}
		},
	}
}
