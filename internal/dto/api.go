// Package dto holds the wire payloads shared by the HTTP and Lambda transports.
package dto

import (
	"strings"
	"time"

	"github.com/aretw0/colloquy/pkg/domain"
)

// TurnRequest is one inbound activity as posted by a channel connector.
type TurnRequest struct {
	ID             string    `json:"id,omitempty"`
	Type           string    `json:"type,omitempty"`
	ChannelID      string    `json:"channel_id"`
	ConversationID string    `json:"conversation_id"`
	From           Account   `json:"from"`
	Text           string    `json:"text,omitempty"`
	Timestamp      time.Time `json:"timestamp,omitzero"`
}

type Account struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Activity maps the request to a domain activity. A missing type means a message.
func (r TurnRequest) Activity() domain.Activity {
	kind := domain.ActivityType(strings.TrimSpace(r.Type))
	if kind == "" {
		kind = domain.ActivityMessage
	}
	return domain.Activity{
		ID:             r.ID,
		Type:           kind,
		ChannelID:      r.ChannelID,
		ConversationID: r.ConversationID,
		From:           domain.Account{ID: r.From.ID, Name: r.From.Name},
		Text:           r.Text,
		Timestamp:      r.Timestamp,
	}
}

// TurnResponse carries the replies of a turn.
type TurnResponse struct {
	Conversation string         `json:"conversation"`
	Replies      []domain.Reply `json:"replies"`
}

// NewTurnResponse never returns a nil reply list, so it encodes as [].
func NewTurnResponse(key domain.ConversationKey, replies []domain.Reply) TurnResponse {
	if replies == nil {
		replies = []domain.Reply{}
	}
	return TurnResponse{Conversation: key.String(), Replies: replies}
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
