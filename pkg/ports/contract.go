package ports

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	key := "contract/" + time.Now().Format("20060102150405.000000000")

	t.Run("Save and Load", func(t *testing.T) {
		snap := domain.NewSnapshot(key)
		snap.Slots[domain.SlotGreetingState] = map[string]any{"call_name": "Mike"}
		snap.Slots[domain.SlotCounterState] = map[string]any{"turn_count": 3}

		err := store.Save(ctx, key, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, key, loaded.Key)
		greeting, ok := loaded.Slots[domain.SlotGreetingState].(map[string]any)
		require.True(t, ok, "slot should load back as a map")
		assert.Equal(t, "Mike", greeting["call_name"])
		// JSON backends turn ints into float64; the slot layer decodes either.
		assert.NotNil(t, loaded.Slots[domain.SlotCounterState])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing/"+key)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Isolation", func(t *testing.T) {
		snap := domain.NewSnapshot(key)
		snap.Slots["Scratch"] = map[string]any{"v": "before"}
		require.NoError(t, store.Save(ctx, key, snap))

		// Mutating the caller's copy after Save must not leak into the store.
		snap.Slots["Scratch"].(map[string]any)["v"] = "after"

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "before", loaded.Slots["Scratch"].(map[string]any)["v"])

		// Neither may mutating a loaded copy.
		loaded.Slots["Scratch"].(map[string]any)["v"] = "mutated"
		again, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "before", again.Slots["Scratch"].(map[string]any)["v"])
	})

	t.Run("Keys Do Not Share State", func(t *testing.T) {
		other := key + "-other"
		a := domain.NewSnapshot(key)
		a.Slots["Owner"] = "a"
		b := domain.NewSnapshot(other)
		b.Slots["Owner"] = "b"
		require.NoError(t, store.Save(ctx, key, a))
		require.NoError(t, store.Save(ctx, other, b))
		defer func() { _ = store.Delete(ctx, other) }()

		loadedA, err := store.Load(ctx, key)
		require.NoError(t, err)
		loadedB, err := store.Load(ctx, other)
		require.NoError(t, err)
		assert.Equal(t, "a", loadedA.Slots["Owner"])
		assert.Equal(t, "b", loadedB.Slots["Owner"])
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, key, domain.NewSnapshot(key))
		require.NoError(t, err)

		err = store.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")

		assert.NoError(t, store.Delete(ctx, key), "Deleting a missing key is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := key + "-1"
		id2 := key + "-2"
		_ = store.Save(ctx, id1, domain.NewSnapshot(id1))
		_ = store.Save(ctx, id2, domain.NewSnapshot(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, id1)
		assert.Contains(t, keys, id2)
	})
}

// RunUserDirectoryContract verifies that a UserDirectory implementation honours
// the lookup/insert/list contract of the registration collaborator.
func RunUserDirectoryContract(t *testing.T, dir UserDirectory) {
	ctx := context.Background()

	t.Run("Find Missing", func(t *testing.T) {
		rec, err := dir.FindByChannelUser(ctx, "test", "nobody")
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("Add and Find", func(t *testing.T) {
		want := domain.UserRecord{ChannelID: "test", UserID: "User1", Name: "Eduard", CallName: "Ed"}
		require.NoError(t, dir.Add(ctx, want))

		rec, err := dir.FindByChannelUser(ctx, "test", "User1")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, want, *rec)

		// Same user on another channel is a different registration.
		other, err := dir.FindByChannelUser(ctx, "sms", "User1")
		require.NoError(t, err)
		assert.Nil(t, other)
	})

	t.Run("Add Replaces", func(t *testing.T) {
		require.NoError(t, dir.Add(ctx, domain.UserRecord{ChannelID: "test", UserID: "User2", Name: "Miguel", CallName: "Mike"}))
		require.NoError(t, dir.Add(ctx, domain.UserRecord{ChannelID: "test", UserID: "User2", Name: "Miguel", CallName: "Miggy"}))

		rec, err := dir.FindByChannelUser(ctx, "test", "User2")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, "Miggy", rec.CallName)
	})

	t.Run("List", func(t *testing.T) {
		records, err := dir.List(ctx)
		require.NoError(t, err)
		keys := make([]string, 0, len(records))
		for _, r := range records {
			keys = append(keys, r.Key())
		}
		assert.Contains(t, keys, domain.UserKey("test", "User1"))
		assert.Contains(t, keys, domain.UserKey("test", "User2"))
	})

	t.Run("Concurrent Adds", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := range 8 {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				rec := domain.UserRecord{ChannelID: "load", UserID: string(rune('a' + i)), Name: "n", CallName: "c"}
				assert.NoError(t, dir.Add(ctx, rec))
			}(i)
		}
		wg.Wait()
	})
}
