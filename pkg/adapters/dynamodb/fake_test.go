package dynamodb

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo is an in-memory table that understands the few expressions the adapters use.
type fakeDynamo struct {
	mu       sync.Mutex
	items    map[string]map[string]types.AttributeValue
	pageSize int
	err      error
	scans    int
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]types.AttributeValue)}
}

func keyOf(item map[string]types.AttributeValue) string {
	pk, _ := strAttr(item, "PK")
	sk, _ := strAttr(item, "SK")
	return pk + "|" + sk
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	item, ok := f.items[keyOf(in.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: maps.Clone(item)}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.items[keyOf(in.Item)] = maps.Clone(in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	delete(f.items, keyOf(in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

// Scan evaluates "begins_with(PK, :prefix) AND SK = :sk" and pages by pageSize.
func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.scans++

	prefix, _ := strAttr(in.ExpressionAttributeValues, ":prefix")
	sk, _ := strAttr(in.ExpressionAttributeValues, ":sk")

	keys := slices.Sorted(maps.Keys(f.items))
	startAfter := ""
	if len(in.ExclusiveStartKey) > 0 {
		startAfter = keyOf(in.ExclusiveStartKey)
	}

	out := &dynamodb.ScanOutput{}
	for _, k := range keys {
		if startAfter != "" && k <= startAfter {
			continue
		}
		item := f.items[k]
		pk, _ := strAttr(item, "PK")
		itemSK, _ := strAttr(item, "SK")
		if strings.HasPrefix(pk, prefix) && itemSK == sk {
			out.Items = append(out.Items, maps.Clone(item))
		}
		if f.pageSize > 0 && len(out.Items) == f.pageSize {
			out.LastEvaluatedKey = itemKey(pk, itemSK)
			break
		}
	}
	return out, nil
}
