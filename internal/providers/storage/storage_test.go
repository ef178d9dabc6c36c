package storage

import (
	"context"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/varejotech/balcao/internal/clock"
	"github.com/varejotech/balcao/internal/config"
)

var baseTime = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (Store, *clock.FakeClock) {
	t.Helper()

	clk := clock.NewFakeClock(baseTime)
	store, err := New(Params{
		Config: config.Config{
			StorageDir:       t.TempDir(),
			StorageSignKey:   "test-sign-key",
			StorageURLPrefix: "/files",
		},
		Clock: clk,
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store, clk
}

func signedParams(t *testing.T, signed string) (key, expires, sig string) {
	t.Helper()

	parsed, err := url.Parse(signed)
	if err != nil {
		t.Fatalf("failed to parse signed url %q: %v", signed, err)
	}
	key = strings.TrimPrefix(parsed.Path, "/files/")
	return key, parsed.Query().Get("expires"), parsed.Query().Get("sig")
}

func TestUploadAndOpenRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)

	key := "products/42/1.jpg"
	if _, err := store.Upload(context.Background(), key, strings.NewReader("image-bytes")); err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	f, err := store.Open(key)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != "image-bytes" {
		t.Fatalf("expected stored content, got %q", data)
	}
}

func TestUploadOverwritesExisting(t *testing.T) {
	store, _ := newTestStore(t)

	key := "products/42/1.jpg"
	if _, err := store.Upload(context.Background(), key, strings.NewReader("old")); err != nil {
		t.Fatalf("first upload failed: %v", err)
	}
	if _, err := store.Upload(context.Background(), key, strings.NewReader("new")); err != nil {
		t.Fatalf("second upload failed: %v", err)
	}

	f, err := store.Open(key)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer f.Close()
	data, _ := io.ReadAll(f)
	if string(data) != "new" {
		t.Fatalf("expected overwritten content, got %q", data)
	}
}

func TestSignedURLVerifies(t *testing.T) {
	store, _ := newTestStore(t)

	signed, err := store.SignedURL("products/42/1.jpg", 15*time.Minute)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	key, expires, sig := signedParams(t, signed)
	if key != "products/42/1.jpg" {
		t.Fatalf("expected key in url, got %q", key)
	}
	if err := store.VerifySignature(key, expires, sig); err != nil {
		t.Fatalf("expected signature to verify: %v", err)
	}
}

func TestSignedURLExpires(t *testing.T) {
	store, clk := newTestStore(t)

	signed, err := store.SignedURL("products/42/1.jpg", 15*time.Minute)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	key, expires, sig := signedParams(t, signed)

	clk.Advance(16 * time.Minute)
	if err := store.VerifySignature(key, expires, sig); err != ErrInvalidSignature {
		t.Fatalf("expected expired signature, got %v", err)
	}
}

func TestVerifyRejectsTamperedKey(t *testing.T) {
	store, _ := newTestStore(t)

	signed, err := store.SignedURL("products/42/1.jpg", 15*time.Minute)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	_, expires, sig := signedParams(t, signed)

	if err := store.VerifySignature("products/42/other.jpg", expires, sig); err != ErrInvalidSignature {
		t.Fatalf("expected tampered key to fail, got %v", err)
	}
}

func TestRejectsTraversalKeys(t *testing.T) {
	store, _ := newTestStore(t)

	for _, key := range []string{"", "../etc/passwd", "a/../../b", "a\\b"} {
		if _, err := store.Upload(context.Background(), key, strings.NewReader("x")); err != ErrInvalidKey {
			t.Fatalf("expected ErrInvalidKey for %q, got %v", key, err)
		}
		if _, err := store.SignedURL(key, time.Minute); err != ErrInvalidKey {
			t.Fatalf("expected ErrInvalidKey signing %q, got %v", key, err)
		}
	}
}

func TestDeleteMissingIsNoop(t *testing.T) {
	store, _ := newTestStore(t)

	if err := store.Delete(context.Background(), "products/42/ghost.jpg"); err != nil {
		t.Fatalf("expected delete of missing key to succeed, got %v", err)
	}
}
