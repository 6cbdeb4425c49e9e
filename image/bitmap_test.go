package image_test

import (
	"path/filepath"
	"testing"

	"github.com/coreblock/vfsimg/image"
)

func openTestDevice(t *testing.T) *image.Device {
	t.Helper()
	dev, err := image.Open(filepath.Join(t.TempDir(), "disk.img"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { dev.Close() })
	return dev
}

func TestBitmapInitialState(t *testing.T) {
	dev := openTestDevice(t)
	bm := image.NewBitmap(dev)

	for _, block := range []uint16{0, 1, 2} {
		if !bm.IsAllocated(block) {
			t.Errorf("block %d: want allocated at creation", block)
		}
	}
	if bm.IsAllocated(3) {
		t.Errorf("block 3: want free at creation")
	}
}

func TestBitmapAllocateReturnsLowestFreeBlock(t *testing.T) {
	dev := openTestDevice(t)
	bm := image.NewBitmap(dev)

	got, err := bm.Allocate(image.KindInode)
	if err != nil {
		t.Fatal(err)
	}
	if got != 3 {
		t.Errorf("first inode allocation: got block %d, want 3", got)
	}

	got2, err := bm.Allocate(image.KindInode)
	if err != nil {
		t.Fatal(err)
	}
	if got2 != 4 {
		t.Errorf("second inode allocation: got block %d, want 4", got2)
	}
}

func TestBitmapDeallocateThenReallocate(t *testing.T) {
	dev := openTestDevice(t)
	bm := image.NewBitmap(dev)

	a, err := bm.Allocate(image.KindInode)
	if err != nil {
		t.Fatal(err)
	}
	if err := bm.Deallocate(a); err != nil {
		t.Fatal(err)
	}
	if bm.IsAllocated(a) {
		t.Errorf("block %d: want free after deallocate", a)
	}

	b, err := bm.Allocate(image.KindInode)
	if err != nil {
		t.Fatal(err)
	}
	if b != a {
		t.Errorf("reallocate: got block %d, want reuse of %d", b, a)
	}
}

func TestBitmapDataPartitionStartsAtPartitionBoundary(t *testing.T) {
	dev := openTestDevice(t)
	bm := image.NewBitmap(dev)

	// The data partition begins at bitmap byte 347, i.e. block 2776, two
	// blocks below DataRegionStart (see const.go).
	got, err := bm.Allocate(image.KindData)
	if err != nil {
		t.Fatal(err)
	}
	want := uint16(image.DataBitmapByteStart * 8)
	if got != want {
		t.Errorf("first data allocation: got block %d, want %d", got, want)
	}
}

func TestBitmapInodePartitionExhaustion(t *testing.T) {
	dev := openTestDevice(t)
	bm := image.NewBitmap(dev)

	// Blocks 0,1,2 are pre-allocated; the inode partition covers bits
	// [0,2776), so 2773 allocations remain before exhaustion.
	count := 0
	for {
		_, err := bm.Allocate(image.KindInode)
		if err == image.ErrNoSpace {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		count++
		if count > 3000 {
			t.Fatal("allocation never exhausted the inode partition")
		}
	}

	want := 2776 - 3
	if count != want {
		t.Errorf("allocated %d inode blocks before exhaustion, want %d", count, want)
	}
}
