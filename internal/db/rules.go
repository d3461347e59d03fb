package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/baiirun/minitodo/internal/model"
	"github.com/baiirun/minitodo/internal/rules"
)

var _ rules.Store = (*DB)(nil)

// CreateRule inserts a rule and sets its ID.
func (db *DB) CreateRule(ctx context.Context, rule *model.Rule) error {
	result, err := db.ExecContext(ctx, `
		INSERT INTO rules (description, created_at, updated_at, file_path)
		VALUES (?, ?, ?, ?)`,
		rule.Description, rule.CreatedAt.UnixNano(), rule.UpdatedAt.UnixNano(), toNullString(rule.FilePath))
	if err != nil {
		return dbErr("create rule", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return dbErr("read inserted rule id", err)
	}
	rule.ID = id
	return nil
}

// GetRule retrieves a rule by ID.
func (db *DB) GetRule(ctx context.Context, id int64) (model.Rule, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, description, created_at, updated_at, file_path
		FROM rules WHERE id = ?`, id)
	rule, err := scanRule(row)
	if IsNotFoundError(err) {
		return model.Rule{}, fmt.Errorf("rule with ID %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return model.Rule{}, dbErr("get rule", err)
	}
	return rule, nil
}

// ListRules returns all rules, oldest first.
func (db *DB) ListRules(ctx context.Context) ([]model.Rule, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, description, created_at, updated_at, file_path
		FROM rules ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, dbErr("query rules", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, dbErr("scan rule", err)
		}
		out = append(out, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr("iterate rules", err)
	}
	return out, nil
}

// DeleteAllRules removes every rule.
func (db *DB) DeleteAllRules(ctx context.Context) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM rules`)
	if err != nil {
		return 0, dbErr("delete all rules", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, dbErr("count deleted rules", err)
	}
	return rows, nil
}

func scanRule(row rowScanner) (model.Rule, error) {
	var (
		rule                 model.Rule
		createdAt, updatedAt int64
		filePath             sql.NullString
	)
	if err := row.Scan(&rule.ID, &rule.Description, &createdAt, &updatedAt, &filePath); err != nil {
		return model.Rule{}, err
	}
	rule.CreatedAt = fromUnix(createdAt)
	rule.UpdatedAt = fromUnix(updatedAt)
	rule.FilePath = fromNullString(filePath)
	return rule, nil
}
