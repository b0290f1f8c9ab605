package lambda

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/aretw0/colloquy"
	"github.com/aretw0/colloquy/internal/dto"
	"github.com/aretw0/colloquy/pkg/adapters/memory"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"
)

type stubBot struct {
	replies []domain.Reply
	err     error
	in      domain.Activity
}

func (s *stubBot) ProcessTurn(_ context.Context, act domain.Activity) ([]domain.Reply, error) {
	s.in = act
	return s.replies, s.err
}

func makeEvent(body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/turns",
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}
}

func parseBody[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

const helloTurn = `{"channel_id":"web","conversation_id":"c1","from":{"id":"u1","name":"Ana"},"text":"Hi"}`

func TestNewHandler_ValidatesDependency(t *testing.T) {
	_, err := NewHandler(nil)
	require.Error(t, err)
}

func TestHandle_HappyPath(t *testing.T) {
	bot := &stubBot{replies: []domain.Reply{{ID: "r1", Text: "hello"}}}
	h, err := NewHandler(bot)
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), makeEvent(helloTurn))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, domain.ActivityMessage, bot.in.Type)
	require.Equal(t, "Hi", bot.in.Text)
	require.False(t, bot.in.Timestamp.IsZero())

	out := parseBody[dto.TurnResponse](t, resp.Body)
	require.Equal(t, "web/c1", out.Conversation)
	require.Len(t, out.Replies, 1)
	require.Equal(t, "hello", out.Replies[0].Text)
	require.NotEmpty(t, resp.Headers[correlationHeader])
	require.Equal(t, resp.Headers[correlationHeader], bot.in.ID)
}

func TestHandle_InvalidBody(t *testing.T) {
	h, err := NewHandler(&stubBot{})
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), makeEvent(`not-json`))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, domain.CodeInvalidActivity, parseBody[dto.ErrorResponse](t, resp.Body).Code)
}

func TestHandle_MethodNotAllowed(t *testing.T) {
	h, err := NewHandler(&stubBot{})
	require.NoError(t, err)

	event := makeEvent(helloTurn)
	event.HTTPMethod = http.MethodGet
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHandle_MapsBotErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "invalid activity", err: domain.NewError(domain.ErrInvalidActivity, "missing channel", nil, nil), status: http.StatusBadRequest, code: domain.CodeInvalidActivity},
		{name: "persistence", err: domain.Persistence("commit", "web/c1", errors.New("down")), status: http.StatusInternalServerError, code: domain.CodePersistence},
		{name: "unexpected", err: errors.New("boom"), status: http.StatusInternalServerError, code: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, err := NewHandler(&stubBot{err: tc.err})
			require.NoError(t, err)

			resp, err := h.Handle(context.Background(), makeEvent(helloTurn))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
			require.Equal(t, tc.code, parseBody[dto.ErrorResponse](t, resp.Body).Code)
		})
	}
}

func TestHandle_UsesProvidedCorrelationID_CaseInsensitive(t *testing.T) {
	h, err := NewHandler(&stubBot{})
	require.NoError(t, err)

	event := makeEvent(helloTurn)
	event.Headers["x-correlation-id"] = "corr-123"
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, "corr-123", resp.Headers[correlationHeader])
	require.Equal(t, "[]", string(mustReplies(t, resp.Body)))
}

func TestHandle_DrivesBot(t *testing.T) {
	bot := colloquy.New(colloquy.WithDirectory(memory.NewDirectory(
		domain.UserRecord{ChannelID: "web", UserID: "u1", Name: "Ana", CallName: "Annie"},
	)))
	h, err := NewHandler(bot)
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), makeEvent(helloTurn))
	require.NoError(t, err)
	out := parseBody[dto.TurnResponse](t, resp.Body)
	require.Len(t, out.Replies, 1)
	require.Equal(t, "Hi Annie, nice to talk to you again!", out.Replies[0].Text)
}

func mustReplies(t *testing.T, body string) json.RawMessage {
	t.Helper()
	var out struct {
		Replies json.RawMessage `json:"replies"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return out.Replies
}
