// Package turn provides the per-turn context handed to the dialog engine:
// the inbound activity plus a buffer of outbound replies.
//
// Replies are buffered, not sent. The bot boundary releases them only after
// the conversation state of the turn has been committed.
package turn

import (
	"fmt"
	"time"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/google/uuid"
)

// Context represents one inbound activity and the replies produced for it.
// A Context is owned by a single turn and is not safe for concurrent use.
type Context struct {
	activity domain.Activity
	replies  []domain.Reply
	now      func() time.Time
}

// Option configures a Context.
type Option func(*Context)

// WithClock overrides the timestamp source for replies.
func WithClock(now func() time.Time) Option {
	return func(c *Context) {
		c.now = now
	}
}

// New creates a turn context for the activity.
func New(activity domain.Activity, opts ...Option) *Context {
	c := &Context{
		activity: activity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Activity returns the inbound activity.
func (c *Context) Activity() domain.Activity {
	return c.activity
}

// Text returns the raw text of the inbound activity.
func (c *Context) Text() string {
	return c.activity.Text
}

// SendText buffers a reply.
func (c *Context) SendText(text string) {
	c.replies = append(c.replies, domain.Reply{
		ID:        uuid.NewString(),
		ReplyToID: c.activity.ID,
		Text:      text,
		Timestamp: c.now().UTC(),
	})
}

// SendTextf buffers a formatted reply.
func (c *Context) SendTextf(format string, args ...any) {
	c.SendText(fmt.Sprintf(format, args...))
}

// Responded reports whether any reply has been buffered.
func (c *Context) Responded() bool {
	return len(c.replies) > 0
}

// Replies returns a copy of the buffered replies.
func (c *Context) Replies() []domain.Reply {
	out := make([]domain.Reply, len(c.replies))
	copy(out, c.replies)
	return out
}

// Reset drops every buffered reply. Used when a turn fails before commit.
func (c *Context) Reset() {
	c.replies = nil
}
