package runner

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextHandler_Output(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), out, WithTextHandlerRenderer(func(s string) (string, error) {
		return "Rendered: " + s + "\n\n", nil
	}))

	err := handler.Output(context.Background(), []domain.Reply{{Text: "Hello"}, {Text: "World"}})
	require.NoError(t, err)
	assert.Equal(t, "Rendered: Hello\nRendered: World\n", out.String())
}

func TestTextHandler_Input(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("  my user input  \nlast"), out, WithPrompt(true))

	val, err := handler.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "my user input", val)

	val, err = handler.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "last", val, "a final line without newline is still delivered")

	_, err = handler.Input(context.Background())
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "> > > ", out.String())
}

func TestTextHandler_NoPromptForPipes(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("x\n"), out)
	assert.False(t, handler.Interactive)

	_, err := handler.Input(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out.String())
}

func TestTextHandler_RetriesRejectedInput(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "5")
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("way too long\nok\n"), out)

	val, err := handler.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Contains(t, out.String(), "Please try again")
}

func TestTextHandler_Cancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	handler := NewTextHandler(pr, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := handler.Input(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
