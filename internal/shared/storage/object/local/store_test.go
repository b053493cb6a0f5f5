package local

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"resume-screener/internal/shared/storage/object"
)

func TestSaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir())

	key, size, mimeType, err := store.Save(ctx, "client-1", "cv.txt", strings.NewReader("hello resume"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if size != int64(len("hello resume")) {
		t.Fatalf("unexpected size: %d", size)
	}
	if !strings.HasPrefix(mimeType, "text/plain") {
		t.Fatalf("unexpected mime type: %s", mimeType)
	}
	if !strings.HasSuffix(key, "_cv.txt") || strings.Contains(key, "client-1") {
		t.Fatalf("unexpected key: %s", key)
	}

	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	body, _ := io.ReadAll(rc)
	rc.Close()
	if string(body) != "hello resume" {
		t.Fatalf("unexpected body: %q", body)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	if _, err := store.Open(ctx, key); err == nil {
		t.Fatalf("expected open to fail after delete")
	}
}

func TestSaveWithKeyRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir())

	for _, key := range []string{"../escape.txt", "/abs/path.txt", "."} {
		if _, err := store.SaveWithKey(ctx, key, "text/plain", strings.NewReader("x")); !errors.Is(err, object.ErrInvalidKey) {
			t.Fatalf("key %q: expected ErrInvalidKey, got %v", key, err)
		}
	}

	n, err := store.SaveWithKey(ctx, "owner/run/cv.txt.extracted.txt", "text/plain", strings.NewReader("abc"))
	if err != nil || n != 3 {
		t.Fatalf("save with key: %d %v", n, err)
	}
}
