package kv

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func runStoreContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Set(ctx, "k1", "v1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := store.Get(ctx, "k1")
	if err != nil || got != "v1" {
		t.Fatalf("Get: %q %v", got, err)
	}

	if err := store.Set(ctx, "k1", "v2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _ = store.Get(ctx, "k1")
	if got != "v2" {
		t.Fatalf("overwrite not visible: %q", got)
	}

	if err := store.Set(ctx, "k2", "x"); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "k1", "k2", "never-existed"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "k1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("k1 should be gone, got %v", err)
	}
}

func TestMemoryStoreContract(t *testing.T) {
	runStoreContract(t, NewMemory())
}

func TestFileStoreContract(t *testing.T) {
	store, err := NewFile(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	runStoreContract(t, store)
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	first, err := NewFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Set(ctx, "userId", "u1"); err != nil {
		t.Fatal(err)
	}
	if err := first.Set(ctx, "wallet", "700"); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got, err := reopened.Get(ctx, "wallet")
	if err != nil || got != "700" {
		t.Fatalf("reopened Get: %q %v", got, err)
	}
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	store, err := NewFile(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	if _, err := store.Get(context.Background(), "anything"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFileStoreRequiresPath(t *testing.T) {
	if _, err := NewFile(""); err == nil {
		t.Fatal("expected an error for an empty path")
	}
}
