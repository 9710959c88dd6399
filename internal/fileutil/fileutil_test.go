package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"
	"github.com/google/go-cmp/cmp"
)

func TestWriteFileAtomicCreatesAndOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "script.md")

	if err := WriteFileAtomic(path, []byte("first"), 0o644); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteFileAtomic(path, []byte("second"), 0o644); err != nil {
		t.Fatalf("second write: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Fatalf("content mismatch: got %q", got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if diff := cmp.Diff([]string{"script.md", "script.md.lock"}, names); diff != "" {
		t.Fatalf("directory entries mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteFileAtomicKeepsLockFileForLaterWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.md")
	if err := WriteFileAtomic(path, []byte("first"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	before, err := os.Stat(LockPath(path))
	if err != nil {
		t.Fatalf("lock file should remain: %v", err)
	}

	holder := flock.New(LockPath(path))
	ok, err := holder.TryLock()
	if err != nil || !ok {
		t.Fatalf("acquire test lock: ok=%v err=%v", ok, err)
	}
	defer holder.Unlock()
	if err := WriteFileAtomic(path, []byte("second"), 0o644); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked on the shared lock file, got %v", err)
	}
	after, err := os.Stat(LockPath(path))
	if err != nil || !os.SameFile(before, after) {
		t.Fatalf("lock file was replaced: err=%v", err)
	}
}

func TestWriteFileAtomicFailsWhenLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.md")
	if err := os.WriteFile(path, []byte("original"), 0o644); err != nil {
		t.Fatal(err)
	}

	holder := flock.New(LockPath(path))
	ok, err := holder.TryLock()
	if err != nil || !ok {
		t.Fatalf("acquire test lock: ok=%v err=%v", ok, err)
	}
	defer holder.Unlock()

	err = WriteFileAtomic(path, []byte("clobbered"), 0o644)
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "original" {
		t.Fatalf("locked file was modified: %q", got)
	}
}

func TestWriteFileAtomicRequiresPath(t *testing.T) {
	if err := WriteFileAtomic("", []byte("x"), 0o644); err == nil {
		t.Fatal("expected error for empty path")
	}
}
