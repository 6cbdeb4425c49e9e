package image_test

import (
	"reflect"
	"testing"

	"github.com/coreblock/vfsimg/image"
)

func TestInodeRoundTrip(t *testing.T) {
	cases := []image.Inode{
		{Name: "root", Type: image.TypeDir, Created: 1000, Modified: 2000, Owner: "system"},
		{Name: "f", Type: image.TypeFile, Created: 1, Modified: 2, Owner: "victor", Table: []uint16{2778, 2779, 2780}},
		{Name: "", Type: image.TypeDir, Owner: "", Table: nil},
	}

	for _, want := range cases {
		encoded, err := want.Encode()
		if err != nil {
			t.Fatalf("Encode(%+v): %v", want, err)
		}
		if len(encoded) != image.BlockSize {
			t.Fatalf("Encode(%+v) produced %d bytes, want %d", want, len(encoded), image.BlockSize)
		}

		got := image.Decode(encoded)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
		}
	}
}

func TestInodeEncodeRejectsOversizedFields(t *testing.T) {
	long := make([]byte, image.MaxNameLen+1)
	for i := range long {
		long[i] = 'x'
	}

	ino := image.Inode{Name: string(long), Type: image.TypeFile}
	if _, err := ino.Encode(); err != image.ErrNameTooLong {
		t.Errorf("Encode with oversized name: got %v, want ErrNameTooLong", err)
	}

	longOwner := make([]byte, image.MaxOwnerLen+1)
	ino = image.Inode{Name: "f", Owner: string(longOwner)}
	if _, err := ino.Encode(); err != image.ErrOwnerTooLong {
		t.Errorf("Encode with oversized owner: got %v, want ErrOwnerTooLong", err)
	}

	table := make([]uint16, image.MaxTableEntries+1)
	ino = image.Inode{Name: "f", Table: table}
	if _, err := ino.Encode(); err != image.ErrTableTooLong {
		t.Errorf("Encode with oversized table: got %v, want ErrTableTooLong", err)
	}
}

func TestInodeTablePreservesOrder(t *testing.T) {
	ino := image.Inode{Name: "d", Type: image.TypeDir, Table: []uint16{5, 3, 9, 1}}
	encoded, err := ino.Encode()
	if err != nil {
		t.Fatal(err)
	}
	got := image.Decode(encoded)
	want := []uint16{5, 3, 9, 1}
	if !reflect.DeepEqual(got.Table, want) {
		t.Errorf("table order not preserved: got %v, want %v", got.Table, want)
	}
}
