package dynamodb

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Directory implements ports.UserDirectory on DynamoDB.
type Directory struct {
	table table
}

// NewDirectory creates a registration directory over the named table.
// It can share the table of the state store.
func NewDirectory(api dynamodbAPI, tableName string) (*Directory, error) {
	t, err := newTable(api, tableName)
	if err != nil {
		return nil, err
	}
	return &Directory{table: t}, nil
}

func (d *Directory) FindByChannelUser(ctx context.Context, channelID, userID string) (*domain.UserRecord, error) {
	item, err := d.table.get(ctx, pkUser+domain.UserKey(channelID, userID), skProfile)
	if err != nil {
		return nil, fmt.Errorf("dynamodb: find user: %w", err)
	}
	if item == nil {
		return nil, nil
	}
	rec, err := itemToUser(item)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (d *Directory) Add(ctx context.Context, rec domain.UserRecord) error {
	if err := d.table.put(ctx, userItem(rec)); err != nil {
		return fmt.Errorf("dynamodb: add user: %w", err)
	}
	return nil
}

func (d *Directory) List(ctx context.Context) ([]domain.UserRecord, error) {
	items, err := d.table.scan(ctx, pkUser, skProfile)
	if err != nil {
		return nil, fmt.Errorf("dynamodb: list users: %w", err)
	}
	out := make([]domain.UserRecord, 0, len(items))
	for _, item := range items {
		rec, err := itemToUser(item)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out, nil
}

func userItem(rec domain.UserRecord) map[string]types.AttributeValue {
	item := itemKey(pkUser+rec.Key(), skProfile)
	item["channelId"] = &types.AttributeValueMemberS{Value: rec.ChannelID}
	item["userId"] = &types.AttributeValueMemberS{Value: rec.UserID}
	item["name"] = &types.AttributeValueMemberS{Value: rec.Name}
	item["callName"] = &types.AttributeValueMemberS{Value: rec.CallName}
	return item
}

func itemToUser(item map[string]types.AttributeValue) (domain.UserRecord, error) {
	channel, err := strAttr(item, "channelId")
	if err != nil {
		return domain.UserRecord{}, err
	}
	user, err := strAttr(item, "userId")
	if err != nil {
		return domain.UserRecord{}, err
	}
	name, _ := strAttr(item, "name")         // allow empty
	callName, _ := strAttr(item, "callName") // allow empty
	return domain.UserRecord{
		ChannelID: channel,
		UserID:    user,
		Name:      name,
		CallName:  callName,
	}, nil
}
