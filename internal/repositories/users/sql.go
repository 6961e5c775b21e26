package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/models"
)

// SQLRepository implements Repository for SQLite and PostgreSQL.
type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	query := dbx.Rebind(r.dialect,
		`INSERT INTO users (name, username, email, password, password_iv)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING id`)

	err := r.db.QueryRowContext(ctx, query,
		u.Name, u.Username, u.Email, u.Password, u.PasswordIV).Scan(&u.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}

	return u, nil
}

func (r *SQLRepository) Exists(ctx context.Context, username, email string) (bool, error) {
	query := dbx.Rebind(r.dialect,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = ? OR email = ?)`)

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, username, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *SQLRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := dbx.Rebind(r.dialect,
		`SELECT id, name, username, email, password, password_iv FROM users
		 WHERE username = ?
		 ORDER BY id
		 LIMIT 1`)

	return r.scanOne(r.db.QueryRowContext(ctx, query, username))
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := dbx.Rebind(r.dialect,
		`SELECT id, name, username, email, password, password_iv FROM users
		 WHERE id = ?`)

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLRepository) scanOne(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.Password, &u.PasswordIV)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}
