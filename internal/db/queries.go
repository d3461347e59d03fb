package db

import (
	"context"
	"fmt"

	"github.com/baiirun/minitodo/internal/model"
)

// ListItems returns all items ordered by task number (unnumbered last), then ID.
func (db *DB) ListItems(ctx context.Context) ([]model.Item, error) {
	return db.queryItems(ctx, `
		SELECT `+itemColumns+` FROM items
		ORDER BY task_number IS NULL, task_number ASC, id ASC`)
}

// NextIncompleteItem returns the lowest-numbered item that is not done.
func (db *DB) NextIncompleteItem(ctx context.Context) (model.Item, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+itemColumns+` FROM items
		WHERE status != ?
		ORDER BY task_number IS NULL, task_number ASC, id ASC
		LIMIT 1`, model.StatusDone)

	item, err := scanItem(row)
	if IsNotFoundError(err) {
		return model.Item{}, fmt.Errorf("no incomplete todo: %w", model.ErrNotFound)
	}
	if err != nil {
		return model.Item{}, dbErr("get next item", err)
	}
	return item, nil
}

// MaxTaskNumber returns the highest task number in use, or 0 for an empty table.
func (db *DB) MaxTaskNumber(ctx context.Context) (int64, error) {
	var maxNum int64
	err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(task_number), 0) FROM items`).Scan(&maxNum)
	if err != nil {
		return 0, dbErr("get max task number", err)
	}
	return maxNum, nil
}

// FindItemByContent returns the first item with exactly this title and description.
func (db *DB) FindItemByContent(ctx context.Context, title, description string) (model.Item, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+itemColumns+` FROM items
		WHERE title = ? AND description = ?
		ORDER BY id
		LIMIT 1`, title, description)

	item, err := scanItem(row)
	if IsNotFoundError(err) {
		return model.Item{}, fmt.Errorf("todo with this content: %w", model.ErrNotFound)
	}
	if err != nil {
		return model.Item{}, dbErr("find item by content", err)
	}
	return item, nil
}

// ItemFilePaths returns the file path of every file-derived item.
func (db *DB) ItemFilePaths(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT file_path FROM items WHERE file_path IS NOT NULL ORDER BY id`)
	if err != nil {
		return nil, dbErr("query file paths", err)
	}
	defer func() { _ = rows.Close() }()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, dbErr("scan file path", err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr("iterate file paths", err)
	}
	return paths, nil
}

// queryItems is a helper to scan item rows.
func (db *DB) queryItems(ctx context.Context, query string, args ...any) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbErr("query items", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, dbErr("scan item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr("iterate items", err)
	}
	return items, nil
}
