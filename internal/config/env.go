package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/flagx"
	"github.com/joho/godotenv"
)

const envPrefix = "TODO_"

// parseEnv loads an optional dotenv file and overlays TODO_* variables.
//
// Dotenv lookup: -e/-env flag, then ENV_FILE, then ./.env. A missing default
// file is ignored; a missing explicitly named file panics. Variables already
// present in the process environment win over the file.
func parseEnv(cfg *Config) {
	loadDotenv()

	setString(&cfg.DataDir, "DATA_DIR")
	setString(&cfg.StorageDriver, "STORAGE_DRIVER")
	setString(&cfg.DatabaseDSN, "DATABASE_DSN")
	setString(&cfg.KeyFile, "KEY_FILE")
	setString(&cfg.KeyPassphrase, "KEY_PASSPHRASE")
	setDuration(&cfg.SessionTTL, "SESSION_TTL")
	setBool(&cfg.RequireUnlock, "REQUIRE_UNLOCK")
	setDuration(&cfg.UnlockGrace, "UNLOCK_GRACE")
	setString(&cfg.HistoryFile, "HISTORY_FILE")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogBackend, "LOG_BACKEND")
	setString(&cfg.LogFormat, "LOG_FORMAT")
	setString(&cfg.LogFile, "LOG_FILE")
	setString(&cfg.Backup.Dir, "BACKUP_DIR")
	setString(&cfg.Backup.S3Bucket, "BACKUP_S3_BUCKET")
	setString(&cfg.Backup.S3Region, "BACKUP_S3_REGION")
	setString(&cfg.Backup.S3Endpoint, "BACKUP_S3_ENDPOINT")
	setString(&cfg.Backup.S3AccessKey, "BACKUP_S3_ACCESS_KEY")
	setString(&cfg.Backup.S3SecretKey, "BACKUP_S3_SECRET_KEY")
}

func loadDotenv() {
	path := flagx.EnvFileFlag()
	explicit := path != ""
	if !explicit {
		path = os.Getenv("ENV_FILE")
		explicit = path != ""
	}
	if !explicit {
		path = ".env"
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return
		}
		panic(err)
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		panic(err)
	}
	*dst = b
}

func setDuration(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	*dst = d
}
