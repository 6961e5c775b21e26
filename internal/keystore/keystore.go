// Package keystore retrieves the AES key that protects task fields,
// creating and persisting it on first use.
//
// The key lives in a JSON file (mode 0600) inside the data directory. With a
// passphrase configured the key is sealed under an argon2id-derived
// key-encryption key; without one it is stored Base64-encoded and protected
// only by file permissions.
package keystore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/cryptox"
	"github.com/dmitrijs2005/todokeeper/internal/filex"
)

const (
	fileVersion = 1
	kdfArgon2id = "argon2id"
	saltSize    = 16
)

var (
	// ErrKeyLocked means the key file is sealed and the passphrase is
	// missing or wrong.
	ErrKeyLocked = errors.New("key is locked: missing or wrong passphrase")
	// ErrCorruptKey means the key file could not be decoded.
	ErrCorruptKey = errors.New("key file is corrupt")
)

// KeyStore hands out the application AES key.
type KeyStore interface {
	GetOrCreate(ctx context.Context) ([]byte, error)
}

type keyFile struct {
	Version    int    `json:"version"`
	Key        string `json:"key,omitempty"`
	KDF        string `json:"kdf,omitempty"`
	Salt       string `json:"salt,omitempty"`
	Nonce      string `json:"nonce,omitempty"`
	Ciphertext string `json:"ciphertext,omitempty"`
}

// FileKeyStore is a KeyStore backed by a single file. It caches the key
// after the first successful load and is safe for concurrent use.
type FileKeyStore struct {
	path       string
	passphrase []byte

	mu  sync.Mutex
	key []byte
}

// NewFileKeyStore returns a store for path. An empty passphrase selects the
// unsealed format for new keys.
func NewFileKeyStore(path, passphrase string) *FileKeyStore {
	return &FileKeyStore{path: path, passphrase: []byte(passphrase)}
}

// GetOrCreate returns the persisted key, generating and saving a new
// 256-bit key if the file does not exist yet. Repeated calls return the same
// key.
func (s *FileKeyStore) GetOrCreate(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != nil {
		return clone(s.key), nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		key, err := s.open(data)
		if err != nil {
			return nil, err
		}
		s.key = key
	case errors.Is(err, fs.ErrNotExist):
		key, err := s.create()
		if err != nil {
			return nil, err
		}
		s.key = key
	default:
		return nil, fmt.Errorf("read key file: %w", err)
	}

	return clone(s.key), nil
}

func (s *FileKeyStore) create() ([]byte, error) {
	key, err := cryptox.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	kf, err := s.seal(key)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := filex.WriteFileAtomic(s.path, data, 0o600); err != nil {
		return nil, fmt.Errorf("write key file: %w", err)
	}
	return key, nil
}

func (s *FileKeyStore) seal(key []byte) (*keyFile, error) {
	if len(s.passphrase) == 0 {
		return &keyFile{Version: fileVersion, Key: base64.StdEncoding.EncodeToString(key)}, nil
	}

	salt := common.GenerateRandByteArray(saltSize)
	kek := cryptox.DeriveKey(s.passphrase, salt)
	defer common.WipeByteArray(kek)

	c, err := cryptox.NewFieldCipher(kek)
	if err != nil {
		return nil, err
	}
	ct, nonce, err := c.Encrypt(key)
	if err != nil {
		return nil, fmt.Errorf("seal key: %w", err)
	}

	return &keyFile{
		Version:    fileVersion,
		KDF:        kdfArgon2id,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(ct),
	}, nil
}

func (s *FileKeyStore) open(data []byte) ([]byte, error) {
	var kf keyFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptKey, err)
	}
	if kf.Version != fileVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptKey, kf.Version)
	}

	var key []byte
	if kf.Key != "" {
		k, err := base64.StdEncoding.DecodeString(kf.Key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptKey, err)
		}
		key = k
	} else {
		k, err := s.unseal(&kf)
		if err != nil {
			return nil, err
		}
		key = k
	}

	if len(key) != cryptox.KeySize {
		return nil, fmt.Errorf("%w: key length %d", ErrCorruptKey, len(key))
	}
	return key, nil
}

func (s *FileKeyStore) unseal(kf *keyFile) ([]byte, error) {
	if kf.KDF != kdfArgon2id {
		return nil, fmt.Errorf("%w: unknown kdf %q", ErrCorruptKey, kf.KDF)
	}
	if len(s.passphrase) == 0 {
		return nil, ErrKeyLocked
	}

	salt, err1 := base64.StdEncoding.DecodeString(kf.Salt)
	nonce, err2 := base64.StdEncoding.DecodeString(kf.Nonce)
	ct, err3 := base64.StdEncoding.DecodeString(kf.Ciphertext)
	if err := errors.Join(err1, err2, err3); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptKey, err)
	}

	kek := cryptox.DeriveKey(s.passphrase, salt)
	defer common.WipeByteArray(kek)

	c, err := cryptox.NewFieldCipher(kek)
	if err != nil {
		return nil, err
	}
	key, err := c.Decrypt(ct, nonce)
	if err != nil {
		return nil, ErrKeyLocked
	}
	return key, nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
