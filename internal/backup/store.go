// Package backup stores exported task snapshots either in a local directory
// or in an S3-compatible bucket.
package backup

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/config"
	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("backup not found")
	ErrInvalidKey = errors.New("invalid backup key")
)

// Store persists opaque backup documents under slash-separated keys.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	// Location describes where backups go, for display.
	Location() string
}

// NewKey returns backups/<username>/<yyyy>/<mm>/<dd>/<uuid>.json.
func NewKey(username string, now time.Time) string {
	return fmt.Sprintf("backups/%s/%04d/%02d/%02d/%s.json",
		username, now.Year(), int(now.Month()), now.Day(), uuid.New())
}

// CheckKey rejects empty, absolute and parent-escaping keys.
func CheckKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return ErrInvalidKey
	}
	clean := path.Clean(key)
	if clean != key || clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return ErrInvalidKey
	}
	return nil
}

// New selects S3 when cfg.S3Bucket is set, otherwise a FileStore rooted at
// cfg.Dir (or dataDir when cfg.Dir is empty).
func New(ctx context.Context, cfg config.BackupConfig, dataDir string) (Store, error) {
	if cfg.S3Bucket != "" {
		s, err := NewS3Store(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	dir := cfg.Dir
	if dir == "" {
		dir = dataDir
	}
	return NewFileStore(dir), nil
}
