package dialog

import (
	"context"
	"fmt"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/session"
	"github.com/aretw0/colloquy/pkg/turn"
)

// Step is one function of a waterfall.
type Step func(ctx context.Context, step *WaterfallStep) (StepResult, error)

// WaterfallStep is what a step sees of its dialog.
type WaterfallStep struct {
	Turn     *turn.Context
	State    *session.State
	DialogID string
	Index    int
	// Values is the private scratch map of the frame, persisted between turns.
	Values map[string]any
	// Input is the dialog arguments for the first step, the previous step's
	// result afterwards.
	Input any
}

type stepKind int

const (
	stepPrompt stepKind = iota
	stepBegin
	stepNext
	stepEnd
)

// StepResult tells the waterfall what to do after a step.
type StepResult struct {
	kind     stepKind
	text     string
	dialogID string
	value    any
}

// Prompt sends text and suspends. The next inbound text feeds the next step.
func (s *WaterfallStep) Prompt(text string) (StepResult, error) {
	return StepResult{kind: stepPrompt, text: text}, nil
}

// BeginDialog pushes a child dialog. Its result feeds the next step.
func (s *WaterfallStep) BeginDialog(dialogID string, args any) (StepResult, error) {
	return StepResult{kind: stepBegin, dialogID: dialogID, value: args}, nil
}

// Next runs the next step in the same turn with value as its input.
func (s *WaterfallStep) Next(value any) (StepResult, error) {
	return StepResult{kind: stepNext, value: value}, nil
}

// End completes the waterfall with value.
func (s *WaterfallStep) End(value any) (StepResult, error) {
	return StepResult{kind: stepEnd, value: value}, nil
}

// Waterfall is a dialog made of a strictly linear sequence of steps.
// The frame's step index points at the step that runs on the next resume.
type Waterfall struct {
	steps []Step
}

// NewWaterfall creates a waterfall dialog.
func NewWaterfall(steps ...Step) *Waterfall {
	return &Waterfall{steps: steps}
}

// Len returns the number of steps.
func (w *Waterfall) Len() int {
	return len(w.steps)
}

// Validate checks the waterfall has steps and none is nil.
func (w *Waterfall) Validate() error {
	if len(w.steps) == 0 {
		return fmt.Errorf("waterfall has no steps")
	}
	for i, s := range w.steps {
		if s == nil {
			return fmt.Errorf("waterfall step %d is nil", i)
		}
	}
	return nil
}

func (w *Waterfall) Begin(ctx context.Context, dc *Context, args any) (Result, error) {
	frame := dc.Frame()
	frame.StepIndex = 0
	return w.run(ctx, dc, args)
}

func (w *Waterfall) Resume(ctx context.Context, dc *Context, input any) (Result, error) {
	frame := dc.Frame()
	switch {
	case frame.StepIndex < 0 || frame.StepIndex > len(w.steps):
		return Result{}, domain.CorruptDialogState(*frame,
			fmt.Sprintf("step index %d out of range for %d steps", frame.StepIndex, len(w.steps)))
	case frame.StepIndex == len(w.steps):
		// The last step prompted; its answer is the waterfall's result.
		return Completed(input), nil
	}
	return w.run(ctx, dc, input)
}

func (w *Waterfall) run(ctx context.Context, dc *Context, input any) (Result, error) {
	frame := dc.Frame()
	if frame.Values == nil {
		frame.Values = make(map[string]any)
	}

	for frame.StepIndex < len(w.steps) {
		idx := frame.StepIndex
		step := &WaterfallStep{
			Turn:     dc.Turn(),
			State:    dc.State(),
			DialogID: frame.DialogID,
			Index:    idx,
			Values:   frame.Values,
			Input:    input,
		}

		out, err := w.steps[idx](ctx, step)
		if err != nil {
			return Result{}, err
		}

		switch out.kind {
		case stepPrompt:
			dc.Turn().SendText(out.text)
			frame.StepIndex = idx + 1
			return Waiting(), nil
		case stepBegin:
			frame.StepIndex = idx + 1
			return BeginChild(out.dialogID, out.value), nil
		case stepNext:
			frame.StepIndex = idx + 1
			input = out.value
		case stepEnd:
			return Completed(out.value), nil
		}
	}
	return Completed(input), nil
}
