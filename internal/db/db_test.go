package db

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenAppliesPragmas(t *testing.T) {
	conn, err := Open(Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer conn.Close()

	var mode string
	if err := conn.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatal(err)
	}
	if !strings.EqualFold(mode, "wal") {
		t.Fatalf("journal_mode = %q, want wal", mode)
	}
	var fk int
	if err := conn.QueryRow(`PRAGMA foreign_keys`).Scan(&fk); err != nil {
		t.Fatal(err)
	}
	if fk != 1 {
		t.Fatalf("foreign_keys = %d, want 1", fk)
	}
}

func TestEnsureWorkspace(t *testing.T) {
	dir := t.TempDir()
	path, err := EnsureWorkspace(dir)
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, ".crewtrack") {
		t.Fatalf("workspace path = %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("workspace dir missing: %v", err)
	}
}
