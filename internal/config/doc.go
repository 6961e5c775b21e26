// Package config loads runtime configuration for the todokeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables prefixed with TODO_, optionally loaded from a
//     dotenv file (-e/-env flag, ENV_FILE variable, or ./.env).
//  3. Optional JSON file selected via -c or -config.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-d string     data directory
//	-s string     storage driver: sqlite, postgres or memory
//	-dsn string   database file (sqlite) or connection string (postgres)
//	-k string     key file
//	-l string     log level
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "24h" or
// integer nanoseconds:
//
//	{
//	  "data_dir": "~/.todokeeper",
//	  "storage_driver": "sqlite",
//	  "database_dsn": "todo.db",
//	  "session_ttl": "24h",
//	  "require_unlock": true,
//	  "backup": {"s3_bucket": "todo-backups", "s3_endpoint": "http://127.0.0.1:9000/"}
//	}
package config
