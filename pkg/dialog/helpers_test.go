package dialog_test

import (
	"context"
	"testing"

	"github.com/aretw0/colloquy/pkg/adapters/memory"
	"github.com/aretw0/colloquy/pkg/dialog"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/session"
	"github.com/aretw0/colloquy/pkg/turn"
	"github.com/stretchr/testify/require"
)

const testKey = "test/conv"

// harness runs turns of a single conversation against an in-memory store.
type harness struct {
	t       *testing.T
	set     *dialog.Set
	manager *session.Manager
}

func newHarness(t *testing.T, set *dialog.Set) *harness {
	return &harness{t: t, set: set, manager: session.NewManager(memory.NewStore())}
}

// turn opens the state, builds the dialog context and commits after fn.
func (h *harness) turn(text string, fn func(ctx context.Context, dc *dialog.Context) (dialog.Result, error)) (dialog.Result, []string, error) {
	h.t.Helper()
	ctx := context.Background()
	st, err := h.manager.Open(ctx, testKey)
	require.NoError(h.t, err)

	tc := turn.New(domain.Activity{ID: "a", Type: domain.ActivityMessage, ChannelID: "test", ConversationID: "conv", Text: text})
	dc, err := h.set.CreateContext(tc, st)
	require.NoError(h.t, err)

	res, err := fn(ctx, dc)
	if err == nil {
		require.NoError(h.t, st.Commit(ctx))
	}

	var texts []string
	for _, r := range tc.Replies() {
		texts = append(texts, r.Text)
	}
	return res, texts, err
}

func (h *harness) stack() []domain.Frame {
	h.t.Helper()
	st, err := h.manager.Open(context.Background(), testKey)
	require.NoError(h.t, err)
	ds, err := session.DialogStateSlot.Get(st)
	require.NoError(h.t, err)
	return ds.Stack
}

func (h *harness) seed(frames ...domain.Frame) {
	h.t.Helper()
	ctx := context.Background()
	st, err := h.manager.Open(ctx, testKey)
	require.NoError(h.t, err)
	require.NoError(h.t, session.DialogStateSlot.Set(st, domain.DialogState{Stack: frames}))
	require.NoError(h.t, st.Commit(ctx))
}

func begin(id string, args any) func(context.Context, *dialog.Context) (dialog.Result, error) {
	return func(ctx context.Context, dc *dialog.Context) (dialog.Result, error) {
		return dc.BeginDialog(ctx, id, args)
	}
}

func cont(ctx context.Context, dc *dialog.Context) (dialog.Result, error) {
	return dc.ContinueDialog(ctx)
}
