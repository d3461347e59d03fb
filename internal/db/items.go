package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/baiirun/minitodo/internal/model"
	"github.com/baiirun/minitodo/internal/todo"
)

var _ todo.Store = (*DB)(nil)

const itemColumns = `id, title, description, status, completed_at, created_at, updated_at, file_path, task_number`

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CreateItem inserts a new item and sets its ID.
func (db *DB) CreateItem(ctx context.Context, item *model.Item) error {
	if !item.Status.IsValid() {
		return fmt.Errorf("invalid status %q: %w", item.Status, model.ErrInvalidArgument)
	}

	id, err := insertItem(ctx, db, item)
	if err != nil {
		return err
	}
	item.ID = id
	return nil
}

// CreateItems inserts all items in one transaction. finalize runs after each
// insert with the assigned ID; a changed description is written back before
// the next insert. On any error nothing is committed and the items are
// restored to their draft IDs and descriptions.
func (db *DB) CreateItems(ctx context.Context, items []*model.Item, finalize func(*model.Item)) error {
	for _, item := range items {
		if !item.Status.IsValid() {
			return fmt.Errorf("invalid status %q: %w", item.Status, model.ErrInvalidArgument)
		}
	}

	drafts := make([]string, len(items))
	for i, item := range items {
		drafts[i] = item.Description
	}

	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, item := range items {
			id, err := insertItem(ctx, tx, item)
			if err != nil {
				return err
			}
			item.ID = id

			if finalize == nil {
				continue
			}
			before := item.Description
			finalize(item)
			if item.Description == before {
				continue
			}
			if _, err := tx.ExecContext(ctx, `UPDATE items SET description = ? WHERE id = ?`, item.Description, id); err != nil {
				return dbErr("finalize item description", err)
			}
		}
		return nil
	})
	if err != nil {
		for i, item := range items {
			item.ID = 0
			item.Description = drafts[i]
		}
		return err
	}
	return nil
}

func insertItem(ctx context.Context, ex execer, item *model.Item) (int64, error) {
	result, err := ex.ExecContext(ctx, `
		INSERT INTO items (title, description, status, completed_at, created_at, updated_at, file_path, task_number)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Title, item.Description, item.Status, toNullTime(item.CompletedAt),
		item.CreatedAt.UnixNano(), item.UpdatedAt.UnixNano(),
		toNullString(item.FilePath), toNullInt(item.TaskNumber),
	)
	if err != nil {
		return 0, dbErr("create item", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, dbErr("read inserted item id", err)
	}
	return id, nil
}

// GetItem retrieves an item by ID.
func (db *DB) GetItem(ctx context.Context, id int64) (model.Item, error) {
	row := db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if IsNotFoundError(err) {
		return model.Item{}, itemNotFound(id)
	}
	if err != nil {
		return model.Item{}, dbErr("get item", err)
	}
	return item, nil
}

// UpdateItem writes the mutable fields of item back to its row.
func (db *DB) UpdateItem(ctx context.Context, item model.Item) (bool, error) {
	if !item.Status.IsValid() {
		return false, fmt.Errorf("invalid status %q: %w", item.Status, model.ErrInvalidArgument)
	}

	result, err := db.ExecContext(ctx, `
		UPDATE items
		SET title = ?,
		    description = ?,
		    status = ?,
		    completed_at = ?,
		    updated_at = ?
		WHERE id = ?`,
		item.Title, item.Description, item.Status, toNullTime(item.CompletedAt),
		item.UpdatedAt.UnixNano(), item.ID)
	if err != nil {
		return false, dbErr("update item", err)
	}

	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// DeleteItem removes an item.
func (db *DB) DeleteItem(ctx context.Context, id int64) (bool, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return false, dbErr("delete item", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// DeleteAllItems removes every item and returns the number removed.
func (db *DB) DeleteAllItems(ctx context.Context) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM items`)
	if err != nil {
		return 0, dbErr("delete all items", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, dbErr("count deleted items", err)
	}
	return rows, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (model.Item, error) {
	var (
		item                 model.Item
		completedAt          sql.NullInt64
		createdAt, updatedAt int64
		filePath             sql.NullString
		taskNumber           sql.NullInt64
	)
	err := row.Scan(
		&item.ID, &item.Title, &item.Description, &item.Status, &completedAt,
		&createdAt, &updatedAt, &filePath, &taskNumber,
	)
	if err != nil {
		return model.Item{}, err
	}

	item.CompletedAt = fromNullTime(completedAt)
	item.CreatedAt = fromUnix(createdAt)
	item.UpdatedAt = fromUnix(updatedAt)
	item.FilePath = fromNullString(filePath)
	item.TaskNumber = fromNullInt(taskNumber)
	return item, nil
}
