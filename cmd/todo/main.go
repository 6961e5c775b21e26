package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/todokeeper/internal/backup"
	"github.com/dmitrijs2005/todokeeper/internal/buildinfo"
	"github.com/dmitrijs2005/todokeeper/internal/cli"
	"github.com/dmitrijs2005/todokeeper/internal/config"
	"github.com/dmitrijs2005/todokeeper/internal/filex"
	"github.com/dmitrijs2005/todokeeper/internal/keystore"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/storage"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("%v", err)
	}

}

func run(ctx context.Context, cfg *config.Config) error {
	dataDir, err := filex.ExpandHome(cfg.DataDir)
	if err != nil {
		return err
	}
	if cfg.DataDir, err = filex.EnsureDir(dataDir); err != nil {
		return fmt.Errorf("data dir: %w", err)
	}
	if cfg.Backup.Dir != "" {
		if cfg.Backup.Dir, err = filex.ExpandHome(cfg.Backup.Dir); err != nil {
			return err
		}
	}

	logOut, closeLog, err := openLog(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	logger := logging.New(logOut, logging.Options{
		Backend: cfg.LogBackend,
		Format:  cfg.LogFormat,
		Level:   cfg.LogLevel,
	})

	key, err := keystore.NewFileKeyStore(filex.Resolve(cfg.DataDir, cfg.KeyFile), cfg.KeyPassphrase).GetOrCreate(ctx)
	if err != nil {
		return fmt.Errorf("error loading key: %w", err)
	}

	st, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("error initializing database: %w", err)
	}
	defer st.Close()

	bs, err := backup.New(ctx, cfg.Backup, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("error initializing backups: %w", err)
	}

	prompter, err := cli.NewPrompter(os.Stdin, os.Stdout, filex.Resolve(cfg.DataDir, cfg.HistoryFile))
	if err != nil {
		return err
	}

	app, err := cli.NewApp(cfg, st, key, bs, prompter, os.Stdout, logger)
	if err != nil {
		_ = prompter.Close()
		return err
	}

	app.Run(ctx)
	return nil
}

// openLog returns the log destination: cfg.LogFile under the data dir when
// set, stderr otherwise.
func openLog(cfg *config.Config) (io.Writer, func(), error) {
	if cfg.LogFile == "" {
		return os.Stderr, func() {}, nil
	}

	f, err := os.OpenFile(filex.Resolve(cfg.DataDir, cfg.LogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
