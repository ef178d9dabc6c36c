// Package storage keeps uploaded product images on local disk and hands
// out time-limited signed URLs for display.
package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/fx"

	"github.com/varejotech/balcao/internal/clock"
	"github.com/varejotech/balcao/internal/config"
)

var (
	ErrInvalidKey       = errors.New("storage: invalid object key")
	ErrInvalidSignature = errors.New("storage: invalid or expired signature")
)

type Store interface {
	Upload(ctx context.Context, key string, r io.Reader) (string, error)
	// SignedURL returns a relative URL valid for ttl.
	SignedURL(key string, ttl time.Duration) (string, error)
	// VerifySignature checks the expiry and signature query parameters of
	// a signed URL before serving the file.
	VerifySignature(key, expires, signature string) error
	Open(key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

type fsStore struct {
	dir       string
	signKey   []byte
	urlPrefix string
	clock     clock.Clock
}

type Params struct {
	fx.In

	Config config.Config
	Clock  clock.Clock
}

func New(p Params) (Store, error) {
	if err := os.MkdirAll(p.Config.StorageDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create dir: %w", err)
	}
	return &fsStore{
		dir:       p.Config.StorageDir,
		signKey:   []byte(p.Config.StorageSignKey),
		urlPrefix: strings.TrimSuffix(p.Config.StorageURLPrefix, "/"),
		clock:     p.Clock,
	}, nil
}

var Module = fx.Module("storage",
	fx.Provide(New),
)

func (s *fsStore) Upload(ctx context.Context, key string, r io.Reader) (string, error) {
	path, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	f, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(f.Name())

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(f.Name(), path); err != nil {
		return "", err
	}
	return key, nil
}

func (s *fsStore) SignedURL(key string, ttl time.Duration) (string, error) {
	if _, err := s.path(key); err != nil {
		return "", err
	}
	expires := strconv.FormatInt(s.clock.Now().Add(ttl).Unix(), 10)
	return fmt.Sprintf("%s/%s?expires=%s&sig=%s",
		s.urlPrefix, key, expires, s.sign(key, expires)), nil
}

func (s *fsStore) VerifySignature(key, expires, signature string) error {
	ts, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	if s.clock.Now().After(time.Unix(ts, 0)) {
		return ErrInvalidSignature
	}
	expected := s.sign(key, expires)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}

func (s *fsStore) Open(key string) (io.ReadCloser, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

func (s *fsStore) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (s *fsStore) sign(key, expires string) string {
	mac := hmac.New(sha256.New, s.signKey)
	mac.Write([]byte(key))
	mac.Write([]byte{0})
	mac.Write([]byte(expires))
	return hex.EncodeToString(mac.Sum(nil))
}

// path rejects traversal outside the storage root.
func (s *fsStore) path(key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" || strings.Contains(key, "..") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.dir, filepath.FromSlash(key)), nil
}
