package clients

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestURL_AbsoluteAndRelative(t *testing.T) {
	tmpDir := t.TempDir()

	c, err := NewLocalStorage(tmpDir, "/files/", "http://example.com:8020/")
	if err != nil {
		t.Fatalf("failed create storage: %v", err)
	}
	got, _ := c.URL(context.Background(), "a.xlsx")
	if want := "http://example.com:8020/files/a.xlsx"; got != want {
		t.Fatalf("expected %s; got %s", want, got)
	}

	c2, _ := NewLocalStorage(tmpDir, "files", "")
	if got, _ := c2.URL(context.Background(), "b.xlsx"); got != "/files/b.xlsx" {
		t.Fatalf("expected /files/b.xlsx; got %s", got)
	}
}

func TestSave_WritesUniqueFile(t *testing.T) {
	c, err := NewLocalStorage(t.TempDir(), "", "")
	if err != nil {
		t.Fatalf("storage init: %v", err)
	}

	first, err := c.Save(context.Background(), "../report.xlsx", []byte("one"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	second, err := c.Save(context.Background(), "report.xlsx", []byte("two"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if first == second {
		t.Fatal("expected unique stored names")
	}
	if OriginalName(first) != "report.xlsx" {
		t.Errorf("unexpected original name %q", OriginalName(first))
	}

	path, err := c.Path(first)
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	body, err := os.ReadFile(path)
	if err != nil || string(body) != "one" {
		t.Fatalf("unexpected content %q: %v", body, err)
	}
}

func TestPath_RejectsTraversal(t *testing.T) {
	c, _ := NewLocalStorage(t.TempDir(), "", "")

	for _, name := range []string{"../etc/passwd", "a/b.xlsx", "..", "."} {
		if _, err := c.Path(name); err == nil {
			t.Errorf("expected %q to be rejected", name)
		}
	}
}

func TestCleanupOlderThan(t *testing.T) {
	dir := t.TempDir()
	c, _ := NewLocalStorage(dir, "", "")

	oldName, _ := c.Save(context.Background(), "old.xlsx", []byte("x"))
	newName, _ := c.Save(context.Background(), "new.xlsx", []byte("y"))

	past := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(filepath.Join(dir, oldName), past, past); err != nil {
		t.Fatal(err)
	}

	if err := c.CleanupOlderThan(time.Hour); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, oldName)); !os.IsNotExist(err) {
		t.Error("expected old file to be removed")
	}
	if _, err := os.Stat(filepath.Join(dir, newName)); err != nil {
		t.Error("expected new file to remain")
	}
}
