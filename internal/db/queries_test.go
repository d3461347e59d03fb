package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baiirun/minitodo/internal/model"
)

func TestNextIncompleteItem(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.NextIncompleteItem(ctx)
	assert.ErrorIs(t, err, model.ErrNotFound, "empty table has no next item")

	third := newTestItem("third", 3)
	first := newTestItem("first", 1)
	second := newTestItem("second", 2)
	for _, it := range []*model.Item{third, first, second} {
		require.NoError(t, db.CreateItem(ctx, it))
	}

	next, err := db.NextIncompleteItem(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, next.ID)

	first.Status = model.StatusDone
	first.UpdatedAt = time.Now()
	_, err = db.UpdateItem(ctx, *first)
	require.NoError(t, err)

	next, err = db.NextIncompleteItem(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, next.ID)
}

func TestNextIncompleteItem_UnnumberedLast(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	loose := model.NewItem("loose", "no number", nil, nil, time.Now())
	require.NoError(t, db.CreateItem(ctx, &loose))
	numbered := newTestItem("numbered", 5)
	require.NoError(t, db.CreateItem(ctx, numbered))

	next, err := db.NextIncompleteItem(ctx)
	require.NoError(t, err)
	assert.Equal(t, numbered.ID, next.ID)
}

func TestMaxTaskNumber(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	got, err := db.MaxTaskNumber(ctx)
	require.NoError(t, err)
	assert.Zero(t, got)

	require.NoError(t, db.CreateItem(ctx, newTestItem("a", 4)))
	require.NoError(t, db.CreateItem(ctx, newTestItem("b", 9)))
	require.NoError(t, db.CreateItem(ctx, newTestItem("c", 2)))

	got, err = db.MaxTaskNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(9), got)
}

func TestFindItemByContent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	item := newTestItem("same", 1)
	require.NoError(t, db.CreateItem(ctx, item))

	got, err := db.FindItemByContent(ctx, "same", "same description")
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)

	_, err = db.FindItemByContent(ctx, "same", "other description")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestItemFilePaths(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	withFile := model.NewItem("f", "d", model.Ptr("/a/b.txt"), model.Ptr(int64(1)), time.Now())
	require.NoError(t, db.CreateItem(ctx, &withFile))
	require.NoError(t, db.CreateItem(ctx, newTestItem("nofile", 2)))

	paths, err := db.ItemFilePaths(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"/a/b.txt"}, paths)
}

func TestListItems_Order(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateItem(ctx, newTestItem("two", 2)))
	loose := model.NewItem("loose", "d", nil, nil, time.Now())
	require.NoError(t, db.CreateItem(ctx, &loose))
	require.NoError(t, db.CreateItem(ctx, newTestItem("one", 1)))

	items, err := db.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "one", items[0].Title)
	assert.Equal(t, "two", items[1].Title)
	assert.Equal(t, "loose", items[2].Title)
}

func TestRules(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	now := time.Now().UTC()
	first := model.Rule{Description: "be kind", CreatedAt: now, UpdatedAt: now, FilePath: model.Ptr("/r/1.md")}
	second := model.Rule{Description: "be brief", CreatedAt: now.Add(time.Second), UpdatedAt: now.Add(time.Second)}
	require.NoError(t, db.CreateRule(ctx, &first))
	require.NoError(t, db.CreateRule(ctx, &second))

	got, err := db.GetRule(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	_, err = db.GetRule(ctx, 999)
	assert.ErrorIs(t, err, model.ErrNotFound)

	all, err := db.ListRules(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "be kind", all[0].Description)
	assert.Nil(t, all[1].FilePath)

	n, err := db.DeleteAllRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
