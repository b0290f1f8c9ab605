package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/colloquy/pkg/domain"
)

// Directory implements ports.UserDirectory in memory.
// Safe for concurrent use.
type Directory struct {
	users map[string]domain.UserRecord
	mu    sync.RWMutex
}

// NewDirectory creates a directory pre-populated with records.
func NewDirectory(records ...domain.UserRecord) *Directory {
	d := &Directory{
		users: make(map[string]domain.UserRecord, len(records)),
	}
	for _, r := range records {
		d.users[r.Key()] = r
	}
	return d
}

// FindByChannelUser returns the registration, or nil when the user is unknown.
func (d *Directory) FindByChannelUser(ctx context.Context, channelID, userID string) (*domain.UserRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rec, ok := d.users[domain.UserKey(channelID, userID)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// Add inserts or replaces a registration.
func (d *Directory) Add(ctx context.Context, rec domain.UserRecord) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[rec.Key()] = rec
	return nil
}

// List returns every registration ordered by key.
func (d *Directory) List(ctx context.Context) ([]domain.UserRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]domain.UserRecord, 0, len(d.users))
	for _, r := range d.users {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out, nil
}
