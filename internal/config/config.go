package config

import "time"

// Storage drivers understood by storage.Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds runtime settings for the todokeeper CLI.
//
// Paths (DatabaseDSN for SQLite, KeyFile, HistoryFile, Backup.Dir, LogFile)
// are resolved relative to DataDir unless absolute.
type Config struct {
	DataDir       string
	StorageDriver string
	DatabaseDSN   string

	KeyFile       string
	KeyPassphrase string

	SessionTTL    time.Duration
	RequireUnlock bool
	UnlockGrace   time.Duration

	HistoryFile string

	LogLevel   string
	LogBackend string
	LogFormat  string
	LogFile    string

	Backup BackupConfig
}

// BackupConfig selects where exports go. A non-empty S3Bucket switches
// from the local directory to S3-compatible object storage. An empty Dir
// means the data directory.
type BackupConfig struct {
	Dir         string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DataDir = "~/.todokeeper"
	c.StorageDriver = DriverSQLite
	c.DatabaseDSN = "todo.db"
	c.KeyFile = "todo.key"
	c.KeyPassphrase = ""
	c.SessionTTL = 24 * time.Hour
	c.RequireUnlock = true
	c.UnlockGrace = 0
	c.HistoryFile = ".history"
	c.LogLevel = "warn"
	c.LogBackend = "slog"
	c.LogFormat = "text"
	c.LogFile = ""
	c.Backup = BackupConfig{
		S3Region: "us-east-1",
	}
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment (and an optional dotenv file), JSON (if present) and
// command-line flags (if present). Later sources take precedence.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
