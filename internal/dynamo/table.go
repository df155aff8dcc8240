package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	condExists    = "attribute_exists(#pk)"
	condNotExists = "attribute_not_exists(#pk)"
)

// KeySchema names the key attributes of a table. Sort is empty for tables
// with a simple primary key.
type KeySchema struct {
	Partition string
	Sort      string
}

// Key identifies one item. SortValue is ignored for simple-key tables.
type Key struct {
	PartitionValue string
	SortValue      string
}

func (k Key) String() string {
	if k.SortValue == "" {
		return k.PartitionValue
	}
	return k.PartitionValue + "/" + k.SortValue
}

// QueryInput selects items sharing a partition value, on the table itself or
// on a secondary index.
type QueryInput struct {
	// IndexName is empty for the base table.
	IndexName string
	// Attribute is the partition attribute of the table or index.
	Attribute string
	Value     string
	// Descending reverses sort-key order.
	Descending bool
}

// Table stores records of type T.
type Table[T any] struct {
	api    API
	name   string
	schema KeySchema
}

// NewTable creates a typed view over a DynamoDB table.
func NewTable[T any](api API, name string, schema KeySchema) *Table[T] {
	return &Table[T]{api: api, name: name, schema: schema}
}

// Name returns the physical table name.
func (t *Table[T]) Name() string {
	return t.name
}

func (t *Table[T]) keyMap(k Key) map[string]types.AttributeValue {
	m := map[string]types.AttributeValue{
		t.schema.Partition: &types.AttributeValueMemberS{Value: k.PartitionValue},
	}
	if t.schema.Sort != "" {
		m[t.schema.Sort] = &types.AttributeValueMemberS{Value: k.SortValue}
	}
	return m
}

func (t *Table[T]) pkNames() map[string]string {
	return map[string]string{"#pk": t.schema.Partition}
}

// Get returns the item with the given key, or a NotFoundError.
func (t *Table[T]) Get(ctx context.Context, k Key) (*T, error) {
	out, err := t.api.GetItem(ctx, &sdk.GetItemInput{
		TableName:      aws.String(t.name),
		Key:            t.keyMap(k),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("getting %s item: %w", t.name, err)
	}
	if out.Item == nil {
		return nil, &NotFoundError{Table: t.name, Key: k.String()}
	}

	result := new(T)
	if err := attributevalue.UnmarshalMap(out.Item, result); err != nil {
		return nil, fmt.Errorf("unmarshalling %s item: %w", t.name, err)
	}
	return result, nil
}

// Put writes the item unconditionally.
func (t *Table[T]) Put(ctx context.Context, item T) error {
	return t.put(ctx, item, "", "")
}

// Create writes the item only if no item with the same key exists.
func (t *Table[T]) Create(ctx context.Context, item T) error {
	return t.put(ctx, item, condNotExists, "create")
}

// Replace overwrites an existing item; it fails with NotFoundError if the key
// is absent.
func (t *Table[T]) Replace(ctx context.Context, item T) error {
	return t.put(ctx, item, condExists, "replace")
}

func (t *Table[T]) put(ctx context.Context, item T, condition, op string) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshalling %s item: %w", t.name, err)
	}

	in := &sdk.PutItemInput{
		TableName: aws.String(t.name),
		Item:      av,
	}
	if condition != "" {
		in.ConditionExpression = aws.String(condition)
		in.ExpressionAttributeNames = t.pkNames()
	}

	if _, err := t.api.PutItem(ctx, in); err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			key := t.keyFromItem(av)
			if op == "create" {
				return &AlreadyExistsError{Table: t.name, Key: key}
			}
			return &NotFoundError{Table: t.name, Key: key}
		}
		return fmt.Errorf("putting %s item: %w", t.name, err)
	}
	return nil
}

// Delete removes an existing item; it fails with NotFoundError if absent.
func (t *Table[T]) Delete(ctx context.Context, k Key) error {
	_, err := t.api.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName:                aws.String(t.name),
		Key:                      t.keyMap(k),
		ConditionExpression:      aws.String(condExists),
		ExpressionAttributeNames: t.pkNames(),
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return &NotFoundError{Table: t.name, Key: k.String()}
		}
		return fmt.Errorf("deleting %s item: %w", t.name, err)
	}
	return nil
}

// Update sets the given attributes on an existing item and returns the
// updated record.
func (t *Table[T]) Update(ctx context.Context, k Key, updates map[string]any) (*T, error) {
	expr, names, values, err := buildUpdateExpression(updates)
	if err != nil {
		return nil, err
	}
	names["#pk"] = t.schema.Partition

	out, err := t.api.UpdateItem(ctx, &sdk.UpdateItemInput{
		TableName:                 aws.String(t.name),
		Key:                       t.keyMap(k),
		UpdateExpression:          aws.String(expr),
		ConditionExpression:       aws.String(condExists),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return nil, &NotFoundError{Table: t.name, Key: k.String()}
		}
		return nil, fmt.Errorf("updating %s item: %w", t.name, err)
	}

	result := new(T)
	if err := attributevalue.UnmarshalMap(out.Attributes, result); err != nil {
		return nil, fmt.Errorf("unmarshalling %s item: %w", t.name, err)
	}
	return result, nil
}

// Query returns every item matching the partition value, following pagination.
func (t *Table[T]) Query(ctx context.Context, q QueryInput) ([]T, error) {
	in := &sdk.QueryInput{
		TableName:              aws.String(t.name),
		KeyConditionExpression: aws.String("#pk = :pk"),
		ExpressionAttributeNames: map[string]string{
			"#pk": q.Attribute,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: q.Value},
		},
		ScanIndexForward: aws.Bool(!q.Descending),
	}
	if q.IndexName != "" {
		in.IndexName = aws.String(q.IndexName)
	}

	var items []T
	for {
		out, err := t.api.Query(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("querying %s: %w", t.name, err)
		}

		page := make([]T, 0, len(out.Items))
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshalling %s items: %w", t.name, err)
		}
		items = append(items, page...)

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}

	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Scan returns every item in the table, following pagination.
func (t *Table[T]) Scan(ctx context.Context) ([]T, error) {
	in := &sdk.ScanInput{TableName: aws.String(t.name)}

	var items []T
	for {
		out, err := t.api.Scan(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", t.name, err)
		}

		page := make([]T, 0, len(out.Items))
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshalling %s items: %w", t.name, err)
		}
		items = append(items, page...)

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}

	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (t *Table[T]) keyFromItem(av map[string]types.AttributeValue) string {
	k := Key{PartitionValue: stringValue(av[t.schema.Partition])}
	if t.schema.Sort != "" {
		k.SortValue = stringValue(av[t.schema.Sort])
	}
	return k.String()
}

func stringValue(v types.AttributeValue) string {
	switch tv := v.(type) {
	case *types.AttributeValueMemberS:
		return tv.Value
	case *types.AttributeValueMemberN:
		return tv.Value
	}
	return ""
}

// buildUpdateExpression turns field->value pairs into a SET expression with
// placeholder names and values. Fields are sorted so the expression is stable.
func buildUpdateExpression(updates map[string]any) (string, map[string]string, map[string]types.AttributeValue, error) {
	if len(updates) == 0 {
		return "", nil, nil, errors.New("no updates provided")
	}

	fields := make([]string, 0, len(updates))
	for f := range updates {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	clauses := make([]string, 0, len(fields))
	names := make(map[string]string, len(fields)+1)
	values := make(map[string]types.AttributeValue, len(fields))

	for i, field := range fields {
		n := fmt.Sprintf("#f%d", i)
		v := fmt.Sprintf(":v%d", i)

		av, err := attributevalue.Marshal(updates[field])
		if err != nil {
			return "", nil, nil, fmt.Errorf("marshalling update for %q: %w", field, err)
		}

		clauses = append(clauses, n+" = "+v)
		names[n] = field
		values[v] = av
	}

	return "SET " + strings.Join(clauses, ", "), names, values, nil
}
