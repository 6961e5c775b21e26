package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/todokeeper/internal/config"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DataDir = t.TempDir()
	cfg.StorageDriver = driver
	return cfg
}

func TestOpen_SQLiteFileUnderDataDir(t *testing.T) {
	cfg := testConfig(t, config.DriverSQLite)
	ctx := context.Background()

	s, err := Open(ctx, cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	assert.Equal(t, dbx.DialectSQLite, s.Dialect)
	_, err = os.Stat(filepath.Join(cfg.DataDir, "todo.db"))
	require.NoError(t, err)

	var fk int
	require.NoError(t, s.DB.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestOpen_MemoryRoundTripInTx(t *testing.T) {
	cfg := testConfig(t, config.DriverMemory)
	ctx := context.Background()

	s, err := Open(ctx, cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	err = dbx.WithTx(ctx, s.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.Repos.Users(tx).Create(ctx, &models.User{
			Name: "A", Username: "alice", Email: "a@b.c", Password: "ct", PasswordIV: "iv",
		})
		if err != nil {
			return err
		}
		_, err = s.Repos.Tasks(tx).Create(ctx, &models.Task{UserID: u.ID, Date: "d", Text: "t"})
		return err
	})
	require.NoError(t, err)

	all, err := s.Repos.Tasks(s.DB).ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = os.Stat(filepath.Join(cfg.DataDir, "todo.db"))
	assert.True(t, os.IsNotExist(err), "memory driver must not touch the data dir")
}

func TestOpen_PostgresNeedsDSN(t *testing.T) {
	cfg := testConfig(t, config.DriverPostgres)
	cfg.DatabaseDSN = ""

	_, err := Open(context.Background(), cfg, logging.Discard())
	require.Error(t, err)
}

func TestOpen_UnknownDriver(t *testing.T) {
	cfg := testConfig(t, "mysql")

	_, err := Open(context.Background(), cfg, logging.Discard())
	require.ErrorContains(t, err, `unknown storage driver "mysql"`)
}

func TestOpen_SQLOpenError(t *testing.T) {
	orig := sqlOpen
	t.Cleanup(func() { sqlOpen = orig })
	sqlOpen = func(driver, dsn string) (*sql.DB, error) { return nil, errors.New("no driver") }

	_, err := Open(context.Background(), testConfig(t, config.DriverSQLite), logging.Discard())
	require.ErrorContains(t, err, "open sqlite: no driver")
}

func Test_sqliteDSN(t *testing.T) {
	assert.Equal(t, "file:/data/todo.db?"+sqlitePragmas, sqliteDSN("/data", "todo.db"))
	assert.Equal(t, "file:/abs/x.db?"+sqlitePragmas, sqliteDSN("/data", "/abs/x.db"))
	assert.Equal(t, "file:custom.db?mode=ro", sqliteDSN("/data", "file:custom.db?mode=ro"))
}
