package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/todokeeper/internal/flagx"
	"github.com/dmitrijs2005/todokeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent keys
// keep the values set by earlier stages; pointer fields tell absent from zero.
type JsonConfig struct {
	DataDir       string          `json:"data_dir"`
	StorageDriver string          `json:"storage_driver"`
	DatabaseDSN   string          `json:"database_dsn"`
	KeyFile       string          `json:"key_file"`
	KeyPassphrase string          `json:"key_passphrase"`
	SessionTTL    *timex.Duration `json:"session_ttl"`
	RequireUnlock *bool           `json:"require_unlock"`
	UnlockGrace   *timex.Duration `json:"unlock_grace"`
	HistoryFile   string          `json:"history_file"`
	LogLevel      string          `json:"log_level"`
	LogBackend    string          `json:"log_backend"`
	LogFormat     string          `json:"log_format"`
	LogFile       string          `json:"log_file"`
	Backup        *JsonBackup     `json:"backup"`
}

type JsonBackup struct {
	Dir         string `json:"dir"`
	S3Bucket    string `json:"s3_bucket"`
	S3Region    string `json:"s3_region"`
	S3Endpoint  string `json:"s3_endpoint"`
	S3AccessKey string `json:"s3_access_key"`
	S3SecretKey string `json:"s3_secret_key"`
}

// parseJson overlays Config with values loaded from the file named by -c or
// -config. Without the flag nothing happens. Read or decode errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	overlay(&cfg.DataDir, jc.DataDir)
	overlay(&cfg.StorageDriver, jc.StorageDriver)
	overlay(&cfg.DatabaseDSN, jc.DatabaseDSN)
	overlay(&cfg.KeyFile, jc.KeyFile)
	overlay(&cfg.KeyPassphrase, jc.KeyPassphrase)
	overlay(&cfg.HistoryFile, jc.HistoryFile)
	overlay(&cfg.LogLevel, jc.LogLevel)
	overlay(&cfg.LogBackend, jc.LogBackend)
	overlay(&cfg.LogFormat, jc.LogFormat)
	overlay(&cfg.LogFile, jc.LogFile)

	if jc.SessionTTL != nil {
		cfg.SessionTTL = jc.SessionTTL.Duration
	}
	if jc.UnlockGrace != nil {
		cfg.UnlockGrace = jc.UnlockGrace.Duration
	}
	if jc.RequireUnlock != nil {
		cfg.RequireUnlock = *jc.RequireUnlock
	}

	if b := jc.Backup; b != nil {
		overlay(&cfg.Backup.Dir, b.Dir)
		overlay(&cfg.Backup.S3Bucket, b.S3Bucket)
		overlay(&cfg.Backup.S3Region, b.S3Region)
		overlay(&cfg.Backup.S3Endpoint, b.S3Endpoint)
		overlay(&cfg.Backup.S3AccessKey, b.S3AccessKey)
		overlay(&cfg.Backup.S3SecretKey, b.S3SecretKey)
	}
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
