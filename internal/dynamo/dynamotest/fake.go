// Package dynamotest provides an in-memory stand-in for the DynamoDB client.
//
// It understands the expressions produced by package dynamo: equality key
// conditions, attribute_exists / attribute_not_exists on the partition key,
// and SET update expressions. It does not paginate.
package dynamotest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type table struct {
	partition string
	sort      string
	items     map[string]map[string]types.AttributeValue
}

// Fake implements dynamo.API in memory.
type Fake struct {
	mu     sync.Mutex
	tables map[string]*table

	// Err, when set, is returned by every call.
	Err error
}

// New creates an empty Fake.
func New() *Fake {
	return &Fake{tables: make(map[string]*table)}
}

// CreateTable registers a table with its key attributes.
func (f *Fake) CreateTable(name, partition, sortKey string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables[name] = &table{
		partition: partition,
		sort:      sortKey,
		items:     make(map[string]map[string]types.AttributeValue),
	}
	return f
}

// Len returns the number of items in a table.
func (f *Fake) Len(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tables[name]; ok {
		return len(t.items)
	}
	return 0
}

func (f *Fake) table(name *string) (*table, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	t, ok := f.tables[aws.ToString(name)]
	if !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("table not found: " + aws.ToString(name))}
	}
	return t, nil
}

func (t *table) key(item map[string]types.AttributeValue) (string, error) {
	pk := str(item[t.partition])
	if pk == "" {
		return "", fmt.Errorf("missing key attribute %s", t.partition)
	}
	if t.sort == "" {
		return pk, nil
	}
	sk := str(item[t.sort])
	if sk == "" {
		return "", fmt.Errorf("missing key attribute %s", t.sort)
	}
	return pk + "\x00" + sk, nil
}

func str(v types.AttributeValue) string {
	switch tv := v.(type) {
	case *types.AttributeValueMemberS:
		return tv.Value
	case *types.AttributeValueMemberN:
		return tv.Value
	}
	return ""
}

func checkCondition(cond *string, exists bool) error {
	switch aws.ToString(cond) {
	case "":
		return nil
	case "attribute_exists(#pk)":
		if !exists {
			return &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
		}
	case "attribute_not_exists(#pk)":
		if exists {
			return &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
		}
	default:
		return fmt.Errorf("dynamotest: unsupported condition %q", aws.ToString(cond))
	}
	return nil
}

func clone(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

// GetItem implements dynamo.API.
func (f *Fake) GetItem(_ context.Context, in *sdk.GetItemInput, _ ...func(*sdk.Options)) (*sdk.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, err := f.table(in.TableName)
	if err != nil {
		return nil, err
	}
	k, err := t.key(in.Key)
	if err != nil {
		return nil, err
	}
	item, ok := t.items[k]
	if !ok {
		return &sdk.GetItemOutput{}, nil
	}
	return &sdk.GetItemOutput{Item: clone(item)}, nil
}

// PutItem implements dynamo.API.
func (f *Fake) PutItem(_ context.Context, in *sdk.PutItemInput, _ ...func(*sdk.Options)) (*sdk.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, err := f.table(in.TableName)
	if err != nil {
		return nil, err
	}
	k, err := t.key(in.Item)
	if err != nil {
		return nil, err
	}
	_, exists := t.items[k]
	if err := checkCondition(in.ConditionExpression, exists); err != nil {
		return nil, err
	}
	t.items[k] = clone(in.Item)
	return &sdk.PutItemOutput{}, nil
}

// DeleteItem implements dynamo.API.
func (f *Fake) DeleteItem(_ context.Context, in *sdk.DeleteItemInput, _ ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, err := f.table(in.TableName)
	if err != nil {
		return nil, err
	}
	k, err := t.key(in.Key)
	if err != nil {
		return nil, err
	}
	_, exists := t.items[k]
	if err := checkCondition(in.ConditionExpression, exists); err != nil {
		return nil, err
	}
	delete(t.items, k)
	return &sdk.DeleteItemOutput{}, nil
}

// UpdateItem implements dynamo.API for "SET #a = :a, #b = :b" expressions.
func (f *Fake) UpdateItem(_ context.Context, in *sdk.UpdateItemInput, _ ...func(*sdk.Options)) (*sdk.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, err := f.table(in.TableName)
	if err != nil {
		return nil, err
	}
	k, err := t.key(in.Key)
	if err != nil {
		return nil, err
	}
	item, exists := t.items[k]
	if err := checkCondition(in.ConditionExpression, exists); err != nil {
		return nil, err
	}
	if !exists {
		item = clone(in.Key)
	} else {
		item = clone(item)
	}

	expr := strings.TrimSpace(aws.ToString(in.UpdateExpression))
	if !strings.HasPrefix(expr, "SET ") {
		return nil, fmt.Errorf("dynamotest: unsupported update %q", expr)
	}
	for _, clause := range strings.Split(strings.TrimPrefix(expr, "SET "), ",") {
		parts := strings.SplitN(clause, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("dynamotest: bad clause %q", clause)
		}
		name := in.ExpressionAttributeNames[strings.TrimSpace(parts[0])]
		value, ok := in.ExpressionAttributeValues[strings.TrimSpace(parts[1])]
		if name == "" || !ok {
			return nil, errors.New("dynamotest: unresolved placeholder in " + clause)
		}
		item[name] = value
	}

	t.items[k] = item
	return &sdk.UpdateItemOutput{Attributes: clone(item)}, nil
}

// Query implements dynamo.API for "#pk = :pk" key conditions. Index names are
// ignored; the attribute named by #pk is matched directly.
func (f *Fake) Query(_ context.Context, in *sdk.QueryInput, _ ...func(*sdk.Options)) (*sdk.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, err := f.table(in.TableName)
	if err != nil {
		return nil, err
	}
	if aws.ToString(in.KeyConditionExpression) != "#pk = :pk" {
		return nil, fmt.Errorf("dynamotest: unsupported key condition %q", aws.ToString(in.KeyConditionExpression))
	}
	attr := in.ExpressionAttributeNames["#pk"]
	want := str(in.ExpressionAttributeValues[":pk"])

	var items []map[string]types.AttributeValue
	for _, k := range t.sortedKeys() {
		item := t.items[k]
		if str(item[attr]) == want {
			items = append(items, clone(item))
		}
	}
	if in.ScanIndexForward != nil && !*in.ScanIndexForward {
		for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
			items[i], items[j] = items[j], items[i]
		}
	}
	return &sdk.QueryOutput{Items: items, Count: int32(len(items))}, nil
}

// Scan implements dynamo.API, returning items in key order.
func (f *Fake) Scan(_ context.Context, in *sdk.ScanInput, _ ...func(*sdk.Options)) (*sdk.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, err := f.table(in.TableName)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]types.AttributeValue, 0, len(t.items))
	for _, k := range t.sortedKeys() {
		items = append(items, clone(t.items[k]))
	}
	return &sdk.ScanOutput{Items: items, Count: int32(len(items))}, nil
}

// ListTables implements dynamo.API.
func (f *Fake) ListTables(_ context.Context, _ *sdk.ListTablesInput, _ ...func(*sdk.Options)) (*sdk.ListTablesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	names := make([]string, 0, len(f.tables))
	for n := range f.tables {
		names = append(names, n)
	}
	sort.Strings(names)
	return &sdk.ListTablesOutput{TableNames: names}, nil
}

func (t *table) sortedKeys() []string {
	keys := make([]string, 0, len(t.items))
	for k := range t.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
