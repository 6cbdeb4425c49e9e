package image

import (
	"fmt"
	"os"
	"time"
)

// blockStore is the byte-addressable primitive every operation in this
// package funnels through: two calls, a read and a flushed write, exactly
// as spec.md §4.1 describes. Two implementations exist: a memory-mapped one
// (device_unix.go, used on Linux/Darwin) and a pread/pwrite fallback
// (fileStore below) for platforms where a persistent mmap isn't available.
// Swapping one for the other is not an algorithmic change anywhere above
// this file.
type blockStore interface {
	readBytes(start, end int64) []byte
	writeBytes(offset int64, data []byte) error
	close() error
}

// Device is a memory-mapped (or pread/pwrite-backed) view of a vfsimg
// backing file. It is the sole owner of the underlying file descriptor and
// is not safe for concurrent use from multiple goroutines, let alone
// multiple processes: if two processes open the same image, the mapping's
// coherence is undefined. Callers needing that guarantee should take an
// external file lock before calling Open.
type Device struct {
	store blockStore
	path  string
}

// Open opens the vfsimg image at path, creating and formatting a fresh
// DiskSize-byte image (bitmap + root inode) if none exists yet.
func Open(path string) (*Device, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := create(path); err != nil {
			return nil, fmt.Errorf("creating image: %w", err)
		}
	} else if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}

	store, err := newBlockStore(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &Device{store: store, path: path}, nil
}

// create writes a fresh, zero-filled DiskSize-byte image: the initial
// bitmap byte (blocks 0, 1, 2 marked allocated) and a root directory inode
// at RootBlock, owned by DefaultOwner with both timestamps set to now.
func create(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Truncate(DiskSize); err != nil {
		return err
	}

	if _, err := f.WriteAt([]byte{initialBitmapByte}, 0); err != nil {
		return err
	}

	now := time.Now().Unix()
	root := Inode{
		Name:     RootName,
		Type:     TypeDir,
		Created:  now,
		Modified: now,
		Owner:    DefaultOwner,
		Table:    nil,
	}
	encoded, err := root.Encode()
	if err != nil {
		return err
	}
	if _, err := f.WriteAt(encoded, RootBlock*BlockSize); err != nil {
		return err
	}

	return nil
}

// ReadBlock reads the full BlockSize-byte contents of block idx.
func (d *Device) ReadBlock(idx uint16) []byte {
	start := int64(idx) * BlockSize
	return d.store.readBytes(start, start+BlockSize)
}

// ReadBytes reads the byte range [start, end) of the image, unqualified by
// block boundaries. Used by the bitmap allocator, which addresses
// individual bytes within block 0.
func (d *Device) ReadBytes(start, end int64) []byte {
	return d.store.readBytes(start, end)
}

// WriteBytes writes data at the given absolute byte offset and flushes.
func (d *Device) WriteBytes(offset int64, data []byte) error {
	return d.store.writeBytes(offset, data)
}

// Close releases the underlying mapping/file.
func (d *Device) Close() error {
	return d.store.close()
}

// fileStore is the portable blockStore fallback: every read and write goes
// through pread/pwrite, with an explicit Sync() standing in for the flush
// a memory-mapped implementation gets from msync.
type fileStore struct {
	f *os.File
}

func newFileStore(f *os.File) *fileStore {
	return &fileStore{f: f}
}

func (s *fileStore) readBytes(start, end int64) []byte {
	buf := make([]byte, end-start)
	if _, err := s.f.ReadAt(buf, start); err != nil {
		// Callers operate on a single trusted, already-formatted image;
		// a short/failed read here means the file was truncated out from
		// under us, which this package has no recovery story for.
		panic(fmt.Sprintf("image: read at %d: %v", start, err))
	}
	return buf
}

func (s *fileStore) writeBytes(offset int64, data []byte) error {
	if _, err := s.f.WriteAt(data, offset); err != nil {
		return err
	}
	return s.f.Sync()
}

func (s *fileStore) close() error {
	return s.f.Close()
}
