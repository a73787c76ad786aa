package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewWatcherRejectsNilCallback(t *testing.T) {
	w, err := NewWatcher(100*time.Millisecond, nil, nil)
	if err == nil {
		t.Fatal("expected error for nil callback")
	}
	if !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("expected os.ErrInvalid, got %v", err)
	}
	if w != nil {
		t.Fatal("expected nil watcher when callback is invalid")
	}
}

func TestNewWatcherRejectsBadPattern(t *testing.T) {
	_, err := NewWatcher(100*time.Millisecond, []string{"[bad"}, func([]string) {})
	if err == nil {
		t.Fatal("expected error for invalid glob pattern")
	}
}

func TestWatcher(t *testing.T) {
	tmpDir := t.TempDir()

	changedFiles := make(chan []string, 1)
	w, err := NewWatcher(100*time.Millisecond, []string{"*.t.sol"}, func(paths []string) {
		changedFiles <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch([]string{tmpDir}); err != nil {
		t.Fatal(err)
	}

	testFile := filepath.Join(tmpDir, "Token.sol")
	os.WriteFile(testFile, []byte("contract Token {}"), 0o644)

	select {
	case paths := <-changedFiles:
		found := false
		for _, p := range paths {
			if p == testFile {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected %s in changed files %v", testFile, paths)
		}
	case <-time.After(2 * time.Second):
		t.Error("timed out waiting for file change event")
	}

	// Non-Solidity files and excluded patterns never trigger.
	os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(tmpDir, "Token.t.sol"), []byte("contract T {}"), 0o644)

	select {
	case paths := <-changedFiles:
		t.Errorf("filtered files triggered event: %v", paths)
	case <-time.After(500 * time.Millisecond):
	}

	// New directory should be recursively watched after create.
	subdir := filepath.Join(tmpDir, "newdir")
	if err := os.MkdirAll(subdir, 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	nested := filepath.Join(subdir, "Nested.sol")
	os.WriteFile(nested, []byte("contract Nested {}"), 0o644)

	select {
	case paths := <-changedFiles:
		found := false
		for _, p := range paths {
			if p == nested {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected %s in changed files %v", nested, paths)
		}
	case <-time.After(2 * time.Second):
		t.Error("timed out waiting for nested file event")
	}
}

func TestWatcherDebounceBatchesEvents(t *testing.T) {
	tmpDir := t.TempDir()

	changedFiles := make(chan []string, 4)
	w, err := NewWatcher(250*time.Millisecond, nil, func(paths []string) {
		changedFiles <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch([]string{tmpDir}); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"A.sol", "B.sol", "C.sol"} {
		os.WriteFile(filepath.Join(tmpDir, name), []byte("contract X {}"), 0o644)
		time.Sleep(20 * time.Millisecond)
	}

	select {
	case paths := <-changedFiles:
		if len(paths) != 3 {
			t.Errorf("batch = %d paths, want 3: %v", len(paths), paths)
		}
	case <-time.After(2 * time.Second):
		t.Error("timed out waiting for batched event")
	}
}
