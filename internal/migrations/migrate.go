package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/pressly/goose/v3"
)

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Up applies all pending migrations for dialect d.
func Up(ctx context.Context, db *sql.DB, d dbx.Dialect) error {
	dir, gooseDialect := DirSQLite, "sqlite3"
	if d == dbx.DialectPostgres {
		dir, gooseDialect = DirPostgres, "pgx"
	}

	goose.SetBaseFS(Migrations)
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := gooseUpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SetLogger routes goose output through l at debug level.
func SetLogger(ctx context.Context, l logging.Logger) {
	goose.SetLogger(&gooseLogger{ctx: ctx, l: l})
}

type gooseLogger struct {
	ctx context.Context
	l   logging.Logger
}

func (g *gooseLogger) Printf(format string, v ...any) {
	g.l.Debug(g.ctx, strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "goose")
}

// Fatalf logs the message and panics; goose only calls it on unrecoverable
// states.
func (g *gooseLogger) Fatalf(format string, v ...any) {
	msg := strings.TrimSpace(fmt.Sprintf(format, v...))
	g.l.Error(g.ctx, msg, "component", "goose")
	panic(msg)
}
