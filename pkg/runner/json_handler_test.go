package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONHandler_Output(t *testing.T) {
	buf := &bytes.Buffer{}
	handler := NewJSONHandler(strings.NewReader(""), buf)

	require.NoError(t, handler.Output(context.Background(), []domain.Reply{{ID: "r1", Text: "Hello"}}))
	require.NoError(t, handler.Output(context.Background(), nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var decoded []domain.Reply
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "Hello", decoded[0].Text)
	assert.Equal(t, "[]", lines[1])
}

func TestJSONHandler_Input(t *testing.T) {
	handler := NewJSONHandler(strings.NewReader("\"quoted value\"\n\nraw text\n"), io.Discard)

	val, err := handler.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "quoted value", val)

	val, err = handler.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "raw text", val, "blank lines are skipped")

	_, err = handler.Input(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}
