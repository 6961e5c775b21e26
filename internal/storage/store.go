package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/todokeeper/internal/config"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/filex"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	memoryDSN     = "file::memory:?_pragma=foreign_keys(1)"
)

// Store is an open, migrated database.
type Store struct {
	DB      *sql.DB
	Dialect dbx.Dialect
	Repos   RepositoryManager
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.DB.Close()
}

// sqlOpen is a seam for testing sql.Open.
var sqlOpen = sql.Open

// Open connects to cfg.StorageDriver, runs the embedded migrations for its
// dialect and returns the Store. cfg.DataDir must already exist.
func Open(ctx context.Context, cfg *config.Config, log logging.Logger) (*Store, error) {
	driver, dsn, dialect, err := connParams(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlOpen(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.StorageDriver, err)
	}

	if dialect == dbx.DialectSQLite {
		// SQLite serialises writers; one connection also keeps :memory: alive.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.StorageDriver, err)
	}

	migrations.SetLogger(ctx, log)
	if err := migrations.Up(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Debug(ctx, "storage ready", "driver", cfg.StorageDriver)

	return &Store{
		DB:      db,
		Dialect: dialect,
		Repos:   NewSQLRepositoryManager(dialect),
	}, nil
}

func connParams(cfg *config.Config) (driver, dsn string, dialect dbx.Dialect, err error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		return "sqlite", sqliteDSN(cfg.DataDir, cfg.DatabaseDSN), dbx.DialectSQLite, nil
	case config.DriverMemory:
		return "sqlite", memoryDSN, dbx.DialectSQLite, nil
	case config.DriverPostgres:
		if cfg.DatabaseDSN == "" {
			return "", "", "", fmt.Errorf("postgres driver needs a DSN")
		}
		return "pgx", cfg.DatabaseDSN, dbx.DialectPostgres, nil
	default:
		return "", "", "", fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// sqliteDSN turns a file name into a modernc URI with foreign keys enabled.
// DSNs that already carry a "file:" scheme or query are used as given.
func sqliteDSN(dataDir, name string) string {
	if strings.HasPrefix(name, "file:") || strings.Contains(name, "?") {
		return name
	}
	return "file:" + filex.Resolve(dataDir, name) + "?" + sqlitePragmas
}
