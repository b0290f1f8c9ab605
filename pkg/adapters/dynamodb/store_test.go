package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNewStore(t *testing.T, db *fakeDynamo, opts ...StoreOption) *Store {
	t.Helper()
	s, err := NewStore(db, "test-table", opts...)
	require.NoError(t, err)
	return s
}

func TestNewStore_Validation(t *testing.T) {
	_, err := NewStore(nil, "t")
	assert.Error(t, err)
	_, err = NewStore(newFakeDynamo(), "  ")
	assert.Error(t, err)
}

func TestStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, mustNewStore(t, newFakeDynamo()))
}

func TestStore_ItemLayout(t *testing.T) {
	db := newFakeDynamo()
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s := mustNewStore(t, db, WithTTL(time.Hour))
	s.now = func() time.Time { return now }

	require.NoError(t, s.Save(context.Background(), "test/c1", domain.NewSnapshot("test/c1")))

	item := db.items["CONV#test/c1|STATE#"]
	require.NotNil(t, item)
	conv, err := strAttr(item, "conversation")
	require.NoError(t, err)
	assert.Equal(t, "test/c1", conv)
	ttl, ok := item["ttl"].(*types.AttributeValueMemberN)
	require.True(t, ok)
	assert.Equal(t, "1704168245", ttl.Value)
}

func TestStore_ListPaginates(t *testing.T) {
	db := newFakeDynamo()
	db.pageSize = 1
	s := mustNewStore(t, db)
	ctx := context.Background()

	for _, k := range []string{"test/a", "test/b", "test/c"} {
		require.NoError(t, s.Save(ctx, k, domain.NewSnapshot(k)))
	}
	dir, err := NewDirectory(db, "test-table")
	require.NoError(t, err)
	require.NoError(t, dir.Add(ctx, domain.UserRecord{ChannelID: "test", UserID: "u"}))

	keys, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"test/a", "test/b", "test/c"}, keys)
	assert.GreaterOrEqual(t, db.scans, 3)
}

func TestStore_BackendError(t *testing.T) {
	db := newFakeDynamo()
	db.err = errors.New("ProvisionedThroughputExceededException")
	s := mustNewStore(t, db)

	_, err := s.Load(context.Background(), "test/c1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSnapshotNotFound)
	assert.Error(t, s.Save(context.Background(), "test/c1", domain.NewSnapshot("test/c1")))
}

func TestDirectory_Contract(t *testing.T) {
	dir, err := NewDirectory(newFakeDynamo(), "test-table")
	require.NoError(t, err)
	ports.RunUserDirectoryContract(t, dir)
}

func TestDirectory_SharesTableWithStore(t *testing.T) {
	db := newFakeDynamo()
	s := mustNewStore(t, db)
	dir, err := NewDirectory(db, "test-table")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "test/c1", domain.NewSnapshot("test/c1")))
	require.NoError(t, dir.Add(ctx, domain.UserRecord{ChannelID: "test", UserID: "User1", Name: "Eduard", CallName: "Ed"}))

	users, err := dir.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	keys, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"test/c1"}, keys)
}
