package ports

import (
	"context"

	"github.com/aretw0/colloquy/pkg/domain"
)

// StateStore defines the interface for persisting conversation state.
// A snapshot is saved as a unit so one Save is the commit of one turn.
type StateStore interface {
	// Save persists the snapshot for a conversation key, replacing any previous one.
	Save(ctx context.Context, key string, snapshot *domain.Snapshot) error

	// Load retrieves the snapshot for a conversation key.
	// Returns domain.ErrSnapshotNotFound if the conversation has no state yet.
	Load(ctx context.Context, key string) (*domain.Snapshot, error)

	// Delete removes the snapshot for a conversation key.
	Delete(ctx context.Context, key string) error

	// List returns the keys of all persisted conversations.
	List(ctx context.Context) ([]string, error)
}
