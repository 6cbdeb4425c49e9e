package image_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/coreblock/vfsimg/image"
)

func TestOpenCreatesFormattedImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	dev, err := image.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer dev.Close()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != image.DiskSize {
		t.Errorf("image size = %d, want %d", info.Size(), image.DiskSize)
	}

	root, err := dev.GetInode(image.RootBlock)
	if err != nil {
		t.Fatal(err)
	}
	if root.Name != image.RootName || root.Type != image.TypeDir || root.Owner != image.DefaultOwner {
		t.Errorf("root inode = %+v, want name=%s type=dir owner=%s", root, image.RootName, image.DefaultOwner)
	}
}

func TestOpenReopensExistingImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	dev, err := image.Open(path)
	if err != nil {
		t.Fatal(err)
	}

	ino := image.Inode{Name: "marker", Type: image.TypeFile, Owner: "x"}
	if err := dev.SetInode(3, ino); err != nil {
		t.Fatal(err)
	}
	if err := dev.Close(); err != nil {
		t.Fatal(err)
	}

	dev2, err := image.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer dev2.Close()

	got, err := dev2.GetInode(3)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "marker" {
		t.Errorf("reopened image lost write: got name %q", got.Name)
	}
}

func TestGetInodeOutOfRange(t *testing.T) {
	dev := openTestDevice(t)

	for _, idx := range []uint16{0, 1, 2777} {
		if _, err := dev.GetInode(idx); err != image.ErrIndexOutOfRange {
			t.Errorf("GetInode(%d): got %v, want ErrIndexOutOfRange", idx, err)
		}
	}
}
