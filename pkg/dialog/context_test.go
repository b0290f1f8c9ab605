package dialog_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/colloquy/pkg/dialog"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// profileSet registers a waterfall that collects two answers through a child prompt.
func profileSet(opts ...dialog.SetOption) *dialog.Set {
	return dialog.NewSet(opts...).
		MustRegister("text", dialog.NewTextPrompt()).
		MustRegister("profile", dialog.NewWaterfall(
			func(ctx context.Context, s *dialog.WaterfallStep) (dialog.StepResult, error) {
				return s.BeginDialog("text", "Name?")
			},
			func(ctx context.Context, s *dialog.WaterfallStep) (dialog.StepResult, error) {
				s.Values["name"] = s.Input
				return s.BeginDialog("text", dialog.PromptOptions{Text: "Nickname?", RetryText: "Please type a nickname"})
			},
			func(ctx context.Context, s *dialog.WaterfallStep) (dialog.StepResult, error) {
				s.Turn.SendTextf("%s aka %s", s.Values["name"], s.Input)
				return s.End(s.Input)
			},
		))
}

func TestContext_BeginUnknown(t *testing.T) {
	h := newHarness(t, profileSet())

	_, _, err := h.turn("hi", begin("missing", nil))
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeUnknownDialog))
	assert.Empty(t, h.stack())
}

func TestContext_ContinueEmptyStack(t *testing.T) {
	h := newHarness(t, profileSet())

	_, _, err := h.turn("hi", func(ctx context.Context, dc *dialog.Context) (dialog.Result, error) {
		_, active := dc.ActiveDialog()
		assert.False(t, active)
		return dc.ContinueDialog(ctx)
	})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeNoActiveDialog))
}

func TestContext_NestedFlow(t *testing.T) {
	h := newHarness(t, profileSet())

	res, replies, err := h.turn("hi", begin("profile", nil))
	require.NoError(t, err)
	assert.Equal(t, dialog.StatusWaiting, res.Status)
	assert.Equal(t, []string{"Name?"}, replies)

	stack := h.stack()
	require.Len(t, stack, 2)
	assert.Equal(t, "profile", stack[0].DialogID)
	assert.Equal(t, 1, stack[0].StepIndex)
	assert.Equal(t, "text", stack[1].DialogID)

	// The child's answer resumes the parent in the same turn.
	res, replies, err = h.turn("Miguel", cont)
	require.NoError(t, err)
	assert.Equal(t, dialog.StatusWaiting, res.Status)
	assert.Equal(t, []string{"Nickname?"}, replies)

	stack = h.stack()
	require.Len(t, stack, 2)
	assert.Equal(t, 2, stack[0].StepIndex)
	assert.Equal(t, "Miguel", stack[0].Values["name"])
	assert.NotContains(t, stack[1].Values, "name", "frame values are private to their frame")

	// Blank input re-prompts and keeps the stack where it is.
	_, replies, err = h.turn("   ", cont)
	require.NoError(t, err)
	assert.Equal(t, []string{"Please type a nickname"}, replies)
	assert.Len(t, h.stack(), 2)

	res, replies, err = h.turn("Mike", cont)
	require.NoError(t, err)
	assert.Equal(t, dialog.StatusCompleted, res.Status)
	assert.Equal(t, "Mike", res.Value)
	assert.Equal(t, []string{"Miguel aka Mike"}, replies)
	assert.Empty(t, h.stack())
}

func TestContext_EndWithoutParent(t *testing.T) {
	h := newHarness(t, profileSet())
	h.seed(domain.NewFrame("text"))

	res, _, err := h.turn("", func(ctx context.Context, dc *dialog.Context) (dialog.Result, error) {
		return dc.EndDialog(ctx, "dropped")
	})
	require.NoError(t, err)
	assert.Equal(t, dialog.StatusCompleted, res.Status)
	assert.Equal(t, "dropped", res.Value)
	assert.Empty(t, h.stack())
}

func TestContext_EndWithParent(t *testing.T) {
	h := newHarness(t, profileSet())
	parent := domain.NewFrame("profile")
	parent.StepIndex = 1
	h.seed(parent, domain.NewFrame("text"))

	// The parent receives the value as the input of its next step.
	res, replies, err := h.turn("", func(ctx context.Context, dc *dialog.Context) (dialog.Result, error) {
		return dc.EndDialog(ctx, "Ana")
	})
	require.NoError(t, err)
	assert.Equal(t, dialog.StatusWaiting, res.Status)
	assert.Equal(t, []string{"Nickname?"}, replies)

	stack := h.stack()
	require.Len(t, stack, 2)
	assert.Equal(t, "Ana", stack[0].Values["name"])
}

func TestContext_EndEmptyStack(t *testing.T) {
	h := newHarness(t, profileSet())

	_, _, err := h.turn("", func(ctx context.Context, dc *dialog.Context) (dialog.Result, error) {
		return dc.EndDialog(ctx, nil)
	})
	assert.True(t, domain.IsCode(err, domain.CodeNoActiveDialog))
}

func TestContext_UnregisteredFrameIsCorrupt(t *testing.T) {
	h := newHarness(t, profileSet())
	h.seed(domain.NewFrame("removed-in-last-release"))

	_, _, err := h.turn("hi", cont)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeCorruptDialogState))
}

func TestContext_CancelAll(t *testing.T) {
	h := newHarness(t, profileSet())
	h.seed(domain.NewFrame("profile"), domain.NewFrame("text"))

	_, _, err := h.turn("", func(ctx context.Context, dc *dialog.Context) (dialog.Result, error) {
		assert.Equal(t, 2, dc.Depth())
		return dialog.Result{}, dc.CancelAll(ctx)
	})
	require.NoError(t, err)
	assert.Empty(t, h.stack())
}

func TestContext_Hooks(t *testing.T) {
	var events []string
	hooks := domain.LifecycleHooks{
		OnDialogBegin: func(ctx context.Context, e *domain.DialogEvent) {
			events = append(events, fmt.Sprintf("begin %s %d", e.DialogID, e.Depth))
		},
		OnDialogEnd: func(ctx context.Context, e *domain.DialogEvent) {
			events = append(events, fmt.Sprintf("end %s %d", e.DialogID, e.Depth))
			assert.Equal(t, testKey, e.Conversation)
		},
	}
	h := newHarness(t, profileSet(dialog.WithLifecycleHooks(hooks)))

	_, _, err := h.turn("hi", begin("profile", nil))
	require.NoError(t, err)
	_, _, err = h.turn("Miguel", cont)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"begin profile 1",
		"begin text 2",
		"end text 1",
		"begin text 2",
	}, events)
}

func TestContext_ChildLoopIsBounded(t *testing.T) {
	set := dialog.NewSet()
	var loop dialog.Step = func(ctx context.Context, s *dialog.WaterfallStep) (dialog.StepResult, error) {
		return s.BeginDialog("loop", nil)
	}
	set.MustRegister("loop", dialog.NewWaterfall(loop))
	h := newHarness(t, set)

	_, _, err := h.turn("", begin("loop", nil))
	assert.Error(t, err)
}

func TestTextPrompt_MaxLength(t *testing.T) {
	set := dialog.NewSet().MustRegister("text", dialog.NewTextPrompt())
	h := newHarness(t, set)

	_, replies, err := h.turn("", begin("text", dialog.PromptOptions{
		Text:        "Name?",
		MaxLength:   5,
		TooLongText: "At most 5 characters",
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Name?"}, replies)

	// The limit survives the round trip through the store.
	res, replies, err := h.turn("Maximiliano", cont)
	require.NoError(t, err)
	assert.Equal(t, dialog.StatusWaiting, res.Status)
	assert.Equal(t, []string{"At most 5 characters"}, replies)
	assert.Len(t, h.stack(), 1)

	res, _, err = h.turn("Mäxi", cont)
	require.NoError(t, err)
	assert.Equal(t, dialog.StatusCompleted, res.Status)
	assert.Equal(t, "Mäxi", res.Value)
}
