package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/models"
)

const selectColumns = `SELECT id, user_id, date, date_iv, task, task_iv, is_done, is_encrypted FROM tasks`

// SQLRepository implements Repository for SQLite and PostgreSQL.
type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	query := dbx.Rebind(r.dialect,
		`INSERT INTO tasks (user_id, date, date_iv, task, task_iv, is_done, is_encrypted)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`)

	err := r.db.QueryRowContext(ctx, query,
		t.UserID, t.Date, t.DateIV, t.Text, t.TextIV, t.Done, t.Encrypted).Scan(&t.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert task: %w", dbx.ClassifyError(err))
	}

	return t, nil
}

func (r *SQLRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Task, error) {
	return r.list(ctx, dbx.Rebind(r.dialect, selectColumns+` WHERE user_id = ? ORDER BY id`), userID)
}

func (r *SQLRepository) ListAll(ctx context.Context) ([]*models.Task, error) {
	return r.list(ctx, selectColumns+` ORDER BY id`)
}

func (r *SQLRepository) list(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select tasks: %w", err)
	}
	defer rows.Close()

	result := []*models.Task{}
	for rows.Next() {
		t := &models.Task{}
		if err := scanTask(rows, t); err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		result = append(result, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate task rows: %w", err)
	}

	return result, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	row := r.db.QueryRowContext(ctx, dbx.Rebind(r.dialect, selectColumns+` WHERE id = ?`), id)

	t := &models.Task{}
	if err := scanTask(row, t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

func (r *SQLRepository) Update(ctx context.Context, t *models.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}

	query := dbx.Rebind(r.dialect,
		`UPDATE tasks
		 SET date = ?, date_iv = ?, task = ?, task_iv = ?, is_done = ?, is_encrypted = ?
		 WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query,
		t.Date, t.DateIV, t.Text, t.TextIV, t.Done, t.Encrypted, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	return expectOneRow(result)
}

func (r *SQLRepository) DeleteByID(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, dbx.Rebind(r.dialect, `DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return expectOneRow(result)
}

func (r *SQLRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, dbx.Rebind(r.dialect, `DELETE FROM tasks WHERE user_id = ?`), userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete tasks: %w", err)
	}
	return result.RowsAffected()
}

func (r *SQLRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete tasks: %w", err)
	}
	return result.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner, t *models.Task) error {
	return s.Scan(&t.ID, &t.UserID, &t.Date, &t.DateIV, &t.Text, &t.TextIV, &t.Done, &t.Encrypted)
}

func expectOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
