package ports

import (
	"context"

	"github.com/aretw0/colloquy/pkg/domain"
)

// UserDirectory is the registration collaborator consumed by the greeting flow.
type UserDirectory interface {
	// FindByChannelUser returns the record for (channel, user), or nil when not registered.
	FindByChannelUser(ctx context.Context, channelID, userID string) (*domain.UserRecord, error)

	// Add stores a new record, replacing an existing one for the same (channel, user).
	Add(ctx context.Context, record domain.UserRecord) error

	// List returns every registered record.
	List(ctx context.Context) ([]domain.UserRecord, error)
}
