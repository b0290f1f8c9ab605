package dynamodb

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Store implements ports.StateStore on DynamoDB.
// The snapshot is one item; its slots are kept as a JSON document.
type Store struct {
	table table
	ttl   time.Duration
	now   func() time.Time
}

type StoreOption func(*Store)

// WithTTL sets the "ttl" attribute so DynamoDB expires idle conversations.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// NewStore creates a state store over the named table.
func NewStore(api dynamodbAPI, tableName string, opts ...StoreOption) (*Store, error) {
	t, err := newTable(api, tableName)
	if err != nil {
		return nil, err
	}
	s := &Store{table: t, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Save writes the snapshot in a single PutItem.
func (s *Store) Save(ctx context.Context, key string, snap *domain.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("dynamodb: marshal snapshot: %w", err)
	}

	now := s.now().UTC()
	item := itemKey(pkConversation+key, skState)
	item["conversation"] = &types.AttributeValueMemberS{Value: key}
	item["snapshot"] = &types.AttributeValueMemberS{Value: string(data)}
	item["updatedAt"] = &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)}
	if s.ttl > 0 {
		item["ttl"] = numAttr(now.Add(s.ttl).Unix())
	}

	if err := s.table.put(ctx, item); err != nil {
		return fmt.Errorf("dynamodb: save state: %w", err)
	}
	return nil
}

// Load reads the snapshot with a consistent read.
func (s *Store) Load(ctx context.Context, key string) (*domain.Snapshot, error) {
	item, err := s.table.get(ctx, pkConversation+key, skState)
	if err != nil {
		return nil, fmt.Errorf("dynamodb: load state: %w", err)
	}
	if item == nil {
		return nil, domain.ErrSnapshotNotFound
	}

	raw, err := strAttr(item, "snapshot")
	if err != nil {
		return nil, err
	}
	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("dynamodb: unmarshal snapshot: %w", err)
	}
	if snap.Slots == nil {
		snap.Slots = make(map[string]any)
	}
	return &snap, nil
}

// Delete removes the snapshot. Deleting a missing item is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.table.delete(ctx, pkConversation+key, skState); err != nil {
		return fmt.Errorf("dynamodb: delete state: %w", err)
	}
	return nil
}

// List scans the table for conversation items.
func (s *Store) List(ctx context.Context) ([]string, error) {
	items, err := s.table.scan(ctx, pkConversation, skState)
	if err != nil {
		return nil, fmt.Errorf("dynamodb: list states: %w", err)
	}
	keys := make([]string, 0, len(items))
	for _, item := range items {
		pk, err := strAttr(item, "PK")
		if err != nil {
			return nil, err
		}
		keys = append(keys, strings.TrimPrefix(pk, pkConversation))
	}
	return keys, nil
}
