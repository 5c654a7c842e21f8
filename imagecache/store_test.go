package imagecache

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "images.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutAndGet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "post:pt:a:1"); err != nil || ok {
		t.Fatalf("Get on empty store = %v, %v", ok, err)
	}

	data := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	if err := s.Put(ctx, "post:pt:a:1", data); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, ok, err := s.Get(ctx, "post:pt:a:1")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Get = %v, want %v", got, data)
	}
}

func TestPutReplaces(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "k", []byte("old")); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, "k", []byte("new")); err != nil {
		t.Fatal(err)
	}
	got, _, _ := s.Get(ctx, "k")
	if string(got) != "new" {
		t.Errorf("Get = %q, want new", got)
	}
	if n, err := s.Count(ctx); err != nil || n != 1 {
		t.Errorf("Count = %d, %v; want 1", n, err)
	}
}

func TestPurge(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		if err := s.Put(ctx, k, []byte(k)); err != nil {
			t.Fatal(err)
		}
	}
	n, err := s.Purge(ctx, time.Now().Add(-time.Hour))
	if err != nil || n != 0 {
		t.Errorf("Purge(past) = %d, %v; want 0", n, err)
	}
	n, err = s.Purge(ctx, time.Now().Add(time.Hour))
	if err != nil || n != 3 {
		t.Errorf("Purge(future) = %d, %v; want 3", n, err)
	}
	if c, _ := s.Count(ctx); c != 0 {
		t.Errorf("Count after purge = %d", c)
	}
}

func TestClosed(t *testing.T) {
	s := setupTestStore(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
	ctx := context.Background()
	if _, _, err := s.Get(ctx, "k"); !errors.Is(err, ErrClosed) {
		t.Errorf("Get err = %v", err)
	}
	if err := s.Put(ctx, "k", nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Put err = %v", err)
	}
	if _, err := s.Purge(ctx, time.Now()); !errors.Is(err, ErrClosed) {
		t.Errorf("Purge err = %v", err)
	}
}

func TestKeys(t *testing.T) {
	if got := PostKey("en", "hello-world", "abc"); got != "post:en:hello-world:abc" {
		t.Errorf("PostKey = %q", got)
	}
	a, b := PageKey("feed", "Feed - iwill.dev"), PageKey("feed", "Feed")
	if a == b || !strings.HasPrefix(a, "page:feed:") || len(a) != len("page:feed:")+64 {
		t.Errorf("PageKey = %q / %q", a, b)
	}
}
