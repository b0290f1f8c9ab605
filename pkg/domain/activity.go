package domain

import (
	"net/url"
	"strings"
	"time"
)

// ActivityType identifies the kind of inbound activity.
type ActivityType string

const (
	ActivityMessage            ActivityType = "message"
	ActivityConversationUpdate ActivityType = "conversationUpdate"
	ActivityContactRelation    ActivityType = "contactRelationUpdate"
	ActivityTyping             ActivityType = "typing"
	ActivityEndOfConversation  ActivityType = "endOfConversation"
	ActivityEvent              ActivityType = "event"
)

// Account identifies the sender of an activity.
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// DisplayName returns the account name, falling back to its id.
func (a Account) DisplayName() string {
	if strings.TrimSpace(a.Name) != "" {
		return a.Name
	}
	return a.ID
}

// Activity is the normalized turn delivered by a transport adapter.
type Activity struct {
	ID             string       `json:"id,omitempty"`
	Type           ActivityType `json:"type"`
	ChannelID      string       `json:"channel_id"`
	ConversationID string       `json:"conversation_id"`
	From           Account      `json:"from"`
	Text           string       `json:"text,omitempty"`
	Timestamp      time.Time    `json:"timestamp,omitzero"`
}

// IsMessage reports whether the activity carries user text.
func (a Activity) IsMessage() bool {
	return a.Type == ActivityMessage
}

// ConversationKey returns the identity all conversation state is scoped to.
func (a Activity) ConversationKey() ConversationKey {
	return ConversationKey{ChannelID: a.ChannelID, ConversationID: a.ConversationID}
}

// Reply is one outbound text produced during a turn.
type Reply struct {
	ID        string    `json:"id"`
	ReplyToID string    `json:"reply_to_id,omitempty"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationKey is the stable (channel, conversation) identity.
type ConversationKey struct {
	ChannelID      string `json:"channel_id"`
	ConversationID string `json:"conversation_id"`
}

// String renders the key as "<channel>/<conversation>". Each part is
// path-escaped, so distinct keys never render to the same string.
func (k ConversationKey) String() string {
	return joinKey(k.ChannelID, k.ConversationID)
}

// IsZero reports whether either part of the key is missing.
func (k ConversationKey) IsZero() bool {
	return strings.TrimSpace(k.ChannelID) == "" || strings.TrimSpace(k.ConversationID) == ""
}

// ParseConversationKey is the inverse of ConversationKey.String.
// The channel ends at the first "/"; an unescaped conversation part may
// itself contain slashes.
func ParseConversationKey(s string) (ConversationKey, bool) {
	rawChannel, rawConversation, ok := strings.Cut(s, "/")
	if !ok {
		return ConversationKey{}, false
	}
	channel, err := url.PathUnescape(rawChannel)
	if err != nil {
		return ConversationKey{}, false
	}
	conversation, err := url.PathUnescape(rawConversation)
	if err != nil {
		return ConversationKey{}, false
	}
	key := ConversationKey{ChannelID: channel, ConversationID: conversation}
	if key.IsZero() {
		return ConversationKey{}, false
	}
	return key, true
}

func joinKey(a, b string) string {
	return url.PathEscape(a) + "/" + url.PathEscape(b)
}
