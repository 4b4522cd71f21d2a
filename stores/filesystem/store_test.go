package filesystem

import (
	"canvas-templates/core"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "tokens")
	if _, err := NewStore(dir); err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Error("NewStore() did not create the base directory")
	}
}

func TestSaveLoadClear(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	ctx := context.Background()

	if _, err := store.Load(ctx); !errors.Is(err, core.ErrTokenNotFound) {
		t.Errorf("Load() on an empty store should return ErrTokenNotFound, got %v", err)
	}

	if err := store.Save(ctx, "abc"); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	token, err := store.Load(ctx)
	if err != nil || token != "abc" {
		t.Errorf("Load() = %q, %v; want abc", token, err)
	}

	data, err := os.ReadFile(filepath.Join(dir, core.TokenKey))
	if err != nil || string(data) != "abc" {
		t.Errorf("token file content = %q, %v", data, err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("Save() should leave only the token file behind, found %d entries", len(entries))
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}
	if _, err := store.Load(ctx); !errors.Is(err, core.ErrTokenNotFound) {
		t.Errorf("Load() after Clear() should return ErrTokenNotFound, got %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Errorf("Clear() twice should not fail: %v", err)
	}
}

func TestPersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, _ := NewStore(dir)
	if err := first.Save(ctx, "persisted"); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	second, _ := NewStore(dir)
	token, err := second.Load(ctx)
	if err != nil || token != "persisted" {
		t.Errorf("Load() from a new instance = %q, %v", token, err)
	}
}

func TestLoad_BlankFile(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewStore(dir)
	os.WriteFile(filepath.Join(dir, core.TokenKey), []byte("  \n"), 0600)

	if _, err := store.Load(context.Background()); !errors.Is(err, core.ErrTokenNotFound) {
		t.Errorf("a blank token file should count as no token, got %v", err)
	}
}
