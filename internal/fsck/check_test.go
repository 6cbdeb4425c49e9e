package fsck_test

import (
	"path/filepath"
	"testing"

	"github.com/coreblock/vfsimg/fsys"
	"github.com/coreblock/vfsimg/image"
	"github.com/coreblock/vfsimg/internal/fsck"
)

func openTestFS(t *testing.T) *fsys.FS {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.img")
	f, err := fsys.Open(path, "alice")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestCheckCleanImage(t *testing.T) {
	fs := openTestFS(t)
	if err := fs.Mkdir("a"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := fs.Touch("f"); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	if err := fs.Chdir("a"); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	if err := fs.Touch("nested"); err != nil {
		t.Fatalf("Touch nested: %v", err)
	}

	report, err := fsck.Check(fs)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !report.Clean() {
		t.Fatalf("report not clean: %+v", report)
	}
	if report.VisitedBlocks != 4 {
		t.Fatalf("VisitedBlocks = %d, want 4 (root, a, f, nested)", report.VisitedBlocks)
	}
}

// TestCheckDetectsOrphan corrupts an image below the fsys layer by
// allocating and populating an inode block without ever linking it into a
// directory table, then confirms Check surfaces it as an orphan.
func TestCheckDetectsOrphan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.img")

	fs, err := fsys.Open(path, "alice")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := fs.Mkdir("a"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := fs.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	dev, err := image.Open(path)
	if err != nil {
		t.Fatalf("image.Open: %v", err)
	}
	bitmap := image.NewBitmap(dev)
	orphan, err := bitmap.Allocate(image.KindInode)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if err := dev.SetInode(orphan, image.Inode{Name: "stray", Type: image.TypeFile, Owner: "alice"}); err != nil {
		t.Fatalf("SetInode: %v", err)
	}
	if err := dev.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	fs, err = fsys.Open(path, "alice")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer fs.Close()

	report, err := fsck.Check(fs)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if report.Clean() {
		t.Fatalf("expected orphan, report is clean: %+v", report)
	}
	if len(report.Orphans) != 1 || report.Orphans[0] != orphan {
		t.Fatalf("Orphans = %v, want [%d]", report.Orphans, orphan)
	}
}
