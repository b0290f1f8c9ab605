package session

import "github.com/aretw0/colloquy/pkg/domain"

var (
	// DialogStateSlot holds the dialog stack. Idle conversations keep an empty stack.
	DialogStateSlot = Slot[domain.DialogState]{
		Name:    domain.SlotDialogState,
		Default: func() domain.DialogState { return domain.DialogState{Stack: []domain.Frame{}} },
	}

	GreetingSlot = Slot[domain.GreetingState]{Name: domain.SlotGreetingState}

	// CounterSlot starts at zero.
	CounterSlot = Slot[domain.CounterState]{Name: domain.SlotCounterState}
)
