package session

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/stretchr/testify/assert"
)

type nopStore struct{}

func (nopStore) Save(context.Context, string, *domain.Snapshot) error { return nil }
func (nopStore) Load(context.Context, string) (*domain.Snapshot, error) {
	return nil, domain.ErrSnapshotNotFound
}
func (nopStore) Delete(context.Context, string) error   { return nil }
func (nopStore) List(context.Context) ([]string, error) { return nil, nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(nopStore{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("test/%d", i%7)
			_ = mgr.Run(ctx, key, func(ctx context.Context, st *State) error {
				return st.Commit(ctx)
			})
			_ = mgr.Delete(ctx, key)
		}(i)
	}
	wg.Wait()

	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	assert.Empty(t, mgr.locks, "lock entries must be released once no turn holds them")
}
