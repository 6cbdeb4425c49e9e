//go:build linux || darwin

package image

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// mmapStore is the primary blockStore: a PROT_READ|PROT_WRITE, MAP_SHARED
// mapping of the whole image file, flushed with unix.Msync after every
// write. No buffering sits above the mapping, per spec.md §4.1.
type mmapStore struct {
	f    *os.File
	data []byte
}

func newBlockStore(f *os.File) (blockStore, error) {
	data, err := syscall.Mmap(int(f.Fd()), 0, DiskSize, syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap: %w", err)
	}
	return &mmapStore{f: f, data: data}, nil
}

func (s *mmapStore) readBytes(start, end int64) []byte {
	out := make([]byte, end-start)
	copy(out, s.data[start:end])
	return out
}

func (s *mmapStore) writeBytes(offset int64, data []byte) error {
	copy(s.data[offset:offset+int64(len(data))], data)
	return unix.Msync(s.data, unix.MS_SYNC)
}

func (s *mmapStore) close() error {
	if err := unix.Msync(s.data, unix.MS_SYNC); err != nil {
		return err
	}
	if err := syscall.Munmap(s.data); err != nil {
		return err
	}
	return s.f.Close()
}
