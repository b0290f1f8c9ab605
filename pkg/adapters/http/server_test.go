package http_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/colloquy"
	httpadapter "github.com/aretw0/colloquy/pkg/adapters/http"
	"github.com/aretw0/colloquy/pkg/adapters/memory"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, opts ...httpadapter.Option) (*httptest.Server, *colloquy.Bot) {
	t.Helper()
	bot := colloquy.New(colloquy.WithDirectory(memory.NewDirectory(
		domain.UserRecord{ChannelID: "web", UserID: "u1", Name: "Eduard", CallName: "Ed"},
	)))
	opts = append([]httpadapter.Option{
		httpadapter.WithDirectory(bot.Directory()),
		httpadapter.WithSessions(bot.Sessions()),
	}, opts...)
	srv := httptest.NewServer(httpadapter.NewHandler(bot, opts...))
	t.Cleanup(srv.Close)
	return srv, bot
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func turnBody(user, text string) map[string]any {
	return map[string]any{
		"id":              "a1",
		"channel_id":      "web",
		"conversation_id": "c-" + user,
		"from":            map[string]string{"id": user, "name": user},
		"text":            text,
	}
}

func texts(replies []domain.Reply) []string {
	out := make([]string, len(replies))
	for i, r := range replies {
		out[i] = r.Text
	}
	return out
}

type turnResponse struct {
	Conversation string         `json:"conversation"`
	Replies      []domain.Reply `json:"replies"`
}

func TestServer_Health(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "ok", decode[map[string]string](t, resp)["status"])

	info, err := http.Get(srv.URL + "/info")
	require.NoError(t, err)
	defer info.Body.Close()
	assert.Equal(t, colloquy.Version, decode[map[string]string](t, info)["version"])
}

func TestServer_PostTurn(t *testing.T) {
	srv, _ := newServer(t)

	resp := postJSON(t, srv.URL+"/v1/turns", turnBody("u1", "Hi"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[turnResponse](t, resp)
	assert.Equal(t, "web/c-u1", body.Conversation)
	assert.Equal(t, []string{"Hi Ed, nice to talk to you again!"}, texts(body.Replies))
	assert.Equal(t, "a1", body.Replies[0].ReplyToID)

	resp = postJSON(t, srv.URL+"/v1/turns", turnBody("u1", "Howdy"))
	body = decode[turnResponse](t, resp)
	assert.Equal(t, []string{`Hi Ed (Turn 1): You typed "Howdy"`}, texts(body.Replies))
}

func TestServer_PostTurnRegistration(t *testing.T) {
	srv, _ := newServer(t)

	steps := []struct {
		text string
		want []string
	}{
		{"Hi", []string{"Hi u2! You are not registered in our database.", "Please enter your name"}},
		{"Miguel", []string{"Thanks Miguel, How do you want me to call you?"}},
		{"Mike", []string{"Thanks Mike, I'll echo you from now on, just type anything"}},
	}
	for _, step := range steps {
		resp := postJSON(t, srv.URL+"/v1/turns", turnBody("u2", step.text))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, step.want, texts(decode[turnResponse](t, resp).Replies))
	}

	users, err := http.Get(srv.URL + "/v1/users")
	require.NoError(t, err)
	defer users.Body.Close()
	records := decode[[]domain.UserRecord](t, users)
	assert.Contains(t, records, domain.UserRecord{ChannelID: "web", UserID: "u2", Name: "Miguel", CallName: "Mike"})
}

func TestServer_PostTurnRejectsBadInput(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Post(srv.URL+"/v1/turns", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	missing := postJSON(t, srv.URL+"/v1/turns", map[string]any{"text": "hi"})
	assert.Equal(t, http.StatusBadRequest, missing.StatusCode)
	assert.Equal(t, domain.CodeInvalidActivity, decode[map[string]string](t, missing)["code"])
}

func TestServer_Users(t *testing.T) {
	srv, bot := newServer(t)

	resp := postJSON(t, srv.URL+"/v1/users", domain.UserRecord{ChannelID: "web", UserID: "u3", Name: "Ana", CallName: "Annie"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	rec, err := bot.Directory().FindByChannelUser(context.Background(), "web", "u3")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "Annie", rec.CallName)

	bad := postJSON(t, srv.URL+"/v1/users", domain.UserRecord{Name: "nobody"})
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestServer_Sessions(t *testing.T) {
	srv, _ := newServer(t)
	postJSON(t, srv.URL+"/v1/turns", turnBody("u1", "Hi"))

	list, err := http.Get(srv.URL + "/v1/sessions")
	require.NoError(t, err)
	defer list.Body.Close()
	assert.Equal(t, []string{"web/c-u1"}, decode[[]string](t, list))

	show, err := http.Get(srv.URL + "/v1/sessions/web/c-u1")
	require.NoError(t, err)
	defer show.Body.Close()
	require.Equal(t, http.StatusOK, show.StatusCode)
	snap := decode[domain.Snapshot](t, show)
	assert.Equal(t, "web/c-u1", snap.Key)
	assert.Contains(t, snap.Slots, domain.SlotGreetingState)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/v1/sessions/web/c-u1", nil)
	require.NoError(t, err)
	del, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer del.Body.Close()
	assert.Equal(t, http.StatusNoContent, del.StatusCode)

	gone, err := http.Get(srv.URL + "/v1/sessions/web/c-u1")
	require.NoError(t, err)
	defer gone.Body.Close()
	assert.Equal(t, http.StatusNotFound, gone.StatusCode)
}

func TestServer_Metrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "colloquy_turns_total 1\n")
	})
	srv, _ := newServer(t, httpadapter.WithMetricsHandler(metrics))

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "colloquy_turns_total")
}

func TestServer_SubscribeEvents(t *testing.T) {
	srv, _ := newServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/events?conversation=web/c-u1", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() (string, string) {
		var event, data string
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case line == "":
				return event, data
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			}
		}
	}

	event, _ := readEvent()
	require.Equal(t, "ping", event)

	postJSON(t, srv.URL+"/v1/turns", turnBody("u1", "Hi"))

	event, data := readEvent()
	assert.Equal(t, "replies", event)
	var replies []domain.Reply
	require.NoError(t, json.Unmarshal([]byte(data), &replies))
	assert.Equal(t, []string{"Hi Ed, nice to talk to you again!"}, texts(replies))
}

func TestServer_SubscribeEventsNeedsConversation(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/v1/events?conversation=nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStreamManager_Unsubscribe(t *testing.T) {
	sm := httpadapter.NewStreamManager()
	ch, cancel := sm.Subscribe("web/c1")
	assert.Equal(t, 1, sm.Subscribers("web/c1"))

	sm.Broadcast("web/c1", "hello")
	assert.Equal(t, "hello", <-ch)

	cancel()
	assert.Equal(t, 0, sm.Subscribers("web/c1"))
	_, open := <-ch
	assert.False(t, open)

	// Broadcasting to a conversation nobody listens to is a no-op.
	sm.Broadcast("web/c1", "lost")
}
