package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/todokeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-d string     data directory
//	-s string     storage driver
//	-dsn string   database file or DSN
//	-k string     key file
//	-l string     log level
//
// Only these flags are parsed (see flagx.FilterArgs); others are left for
// the other stages. Parse errors panic.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-s", "-dsn", "-k", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.StorageDriver, "s", cfg.StorageDriver, "storage driver (sqlite, postgres, memory)")
	fs.StringVar(&cfg.DatabaseDSN, "dsn", cfg.DatabaseDSN, "database file (sqlite) or connection string (postgres)")
	fs.StringVar(&cfg.KeyFile, "k", cfg.KeyFile, "AES key file")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	switch cfg.StorageDriver {
	case DriverSQLite, DriverPostgres, DriverMemory:
	default:
		panic("unknown storage driver: " + cfg.StorageDriver)
	}
}
