package dynamo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/dynamo"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/dynamo/dynamotest"
)

type widget struct {
	Owner string `dynamodbav:"owner"`
	ID    string `dynamodbav:"id"`
	Label string `dynamodbav:"label"`
	Seen  bool   `dynamodbav:"seen"`
}

func newWidgetTable(t *testing.T) (*dynamo.Table[widget], *dynamotest.Fake) {
	t.Helper()
	fake := dynamotest.New().CreateTable("widgets", "owner", "id")
	return dynamo.NewTable[widget](fake, "widgets", dynamo.KeySchema{Partition: "owner", Sort: "id"}), fake
}

func TestTable_CreateAndGet(t *testing.T) {
	t.Parallel()
	tbl, _ := newWidgetTable(t)
	ctx := context.Background()

	require.NoError(t, tbl.Create(ctx, widget{Owner: "alice", ID: "1", Label: "first"}))

	got, err := tbl.Get(ctx, dynamo.Key{PartitionValue: "alice", SortValue: "1"})
	require.NoError(t, err)
	assert.Equal(t, "first", got.Label)
}

func TestTable_CreateDuplicate(t *testing.T) {
	t.Parallel()
	tbl, _ := newWidgetTable(t)
	ctx := context.Background()

	require.NoError(t, tbl.Create(ctx, widget{Owner: "alice", ID: "1"}))
	err := tbl.Create(ctx, widget{Owner: "alice", ID: "1"})

	assert.True(t, errors.Is(err, dynamo.ErrAlreadyExists))
}

func TestTable_GetMissing(t *testing.T) {
	t.Parallel()
	tbl, _ := newWidgetTable(t)

	_, err := tbl.Get(context.Background(), dynamo.Key{PartitionValue: "bob", SortValue: "9"})

	assert.True(t, errors.Is(err, dynamo.ErrNotFound))
}

func TestTable_ReplaceRequiresExisting(t *testing.T) {
	t.Parallel()
	tbl, _ := newWidgetTable(t)
	ctx := context.Background()

	err := tbl.Replace(ctx, widget{Owner: "alice", ID: "1", Label: "x"})
	assert.True(t, errors.Is(err, dynamo.ErrNotFound))

	require.NoError(t, tbl.Put(ctx, widget{Owner: "alice", ID: "1", Label: "x"}))
	require.NoError(t, tbl.Replace(ctx, widget{Owner: "alice", ID: "1", Label: "y"}))

	got, err := tbl.Get(ctx, dynamo.Key{PartitionValue: "alice", SortValue: "1"})
	require.NoError(t, err)
	assert.Equal(t, "y", got.Label)
}

func TestTable_Update(t *testing.T) {
	t.Parallel()
	tbl, _ := newWidgetTable(t)
	ctx := context.Background()

	require.NoError(t, tbl.Put(ctx, widget{Owner: "alice", ID: "1", Label: "x"}))

	got, err := tbl.Update(ctx, dynamo.Key{PartitionValue: "alice", SortValue: "1"}, map[string]any{"seen": true, "label": "z"})
	require.NoError(t, err)
	assert.True(t, got.Seen)
	assert.Equal(t, "z", got.Label)

	_, err = tbl.Update(ctx, dynamo.Key{PartitionValue: "alice", SortValue: "2"}, map[string]any{"seen": true})
	assert.True(t, errors.Is(err, dynamo.ErrNotFound))
}

func TestTable_UpdateRequiresFields(t *testing.T) {
	t.Parallel()
	tbl, _ := newWidgetTable(t)

	_, err := tbl.Update(context.Background(), dynamo.Key{PartitionValue: "alice", SortValue: "1"}, nil)

	assert.Error(t, err)
}

func TestTable_Delete(t *testing.T) {
	t.Parallel()
	tbl, fake := newWidgetTable(t)
	ctx := context.Background()

	require.NoError(t, tbl.Put(ctx, widget{Owner: "alice", ID: "1"}))
	require.NoError(t, tbl.Delete(ctx, dynamo.Key{PartitionValue: "alice", SortValue: "1"}))
	assert.Equal(t, 0, fake.Len("widgets"))

	err := tbl.Delete(ctx, dynamo.Key{PartitionValue: "alice", SortValue: "1"})
	assert.True(t, errors.Is(err, dynamo.ErrNotFound))
}

func TestTable_QueryAndScan(t *testing.T) {
	t.Parallel()
	tbl, _ := newWidgetTable(t)
	ctx := context.Background()

	for _, w := range []widget{
		{Owner: "alice", ID: "1"},
		{Owner: "alice", ID: "2"},
		{Owner: "bob", ID: "3"},
	} {
		require.NoError(t, tbl.Put(ctx, w))
	}

	items, err := tbl.Query(ctx, dynamo.QueryInput{Attribute: "owner", Value: "alice", Descending: true})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "2", items[0].ID)

	none, err := tbl.Query(ctx, dynamo.QueryInput{Attribute: "owner", Value: "carol"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	all, err := tbl.Scan(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTable_ClientError(t *testing.T) {
	t.Parallel()
	tbl, fake := newWidgetTable(t)
	fake.Err = errors.New("throttled")

	_, err := tbl.Scan(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestTableName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "teams", dynamo.TableName("", "teams"))
	assert.Equal(t, "dev-teams", dynamo.TableName("dev", "teams"))
}

func TestPinger(t *testing.T) {
	t.Parallel()
	fake := dynamotest.New()
	p := dynamo.NewPinger(fake)

	assert.NoError(t, p.Ping(context.Background()))

	fake.Err = errors.New("down")
	assert.Error(t, p.Ping(context.Background()))
}
