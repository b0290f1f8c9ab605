package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/colloquy/pkg/dialog"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
	"github.com/aretw0/colloquy/pkg/session"
)

const (
	GreetingDialogID = "greeting"
	TextPromptID     = "text"

	// MaxNameLength caps both registration answers.
	MaxNameLength = 50
)

// newGreetingDialog registers a new user: it asks for the name, then for
// the call name, and stores both in the directory.
func newGreetingDialog(directory ports.UserDirectory) *dialog.Waterfall {
	return dialog.NewWaterfall(
		func(ctx context.Context, s *dialog.WaterfallStep) (dialog.StepResult, error) {
			return s.BeginDialog(TextPromptID, dialog.PromptOptions{
				Text:        "Please enter your name",
				MaxLength:   MaxNameLength,
				TooLongText: fmt.Sprintf("That is a bit long. Please use at most %d characters", MaxNameLength),
			})
		},
		func(ctx context.Context, s *dialog.WaterfallStep) (dialog.StepResult, error) {
			name, _ := s.Input.(string)
			s.Values["name"] = name
			return s.BeginDialog(TextPromptID, dialog.PromptOptions{
				Text:        "Thanks " + name + ", How do you want me to call you?",
				MaxLength:   MaxNameLength,
				TooLongText: fmt.Sprintf("That is a bit long. Please use at most %d characters", MaxNameLength),
			})
		},
		func(ctx context.Context, s *dialog.WaterfallStep) (dialog.StepResult, error) {
			name, _ := s.Values["name"].(string)
			call, _ := s.Input.(string)
			act := s.Turn.Activity()

			rec := domain.UserRecord{
				ChannelID: act.ChannelID,
				UserID:    act.From.ID,
				Name:      name,
				CallName:  call,
			}
			if err := directory.Add(ctx, rec); err != nil {
				return dialog.StepResult{}, domain.CollaboratorUnavailable("user directory", "add", err)
			}
			if err := session.GreetingSlot.Set(s.State, domain.GreetingState{CallName: call}); err != nil {
				return dialog.StepResult{}, err
			}

			s.Turn.SendTextf("Thanks %s, I'll echo you from now on, just type anything", call)
			return s.End(call)
		},
	)
}
