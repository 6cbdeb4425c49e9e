//go:build !linux && !darwin

package image

import "os"

// On platforms without the mmap pair used in device_unix.go, fall back to
// pread/pwrite with the same byte offsets, per spec.md §9: no algorithmic
// change follows from this substitution.
func newBlockStore(f *os.File) (blockStore, error) {
	return newFileStore(f), nil
}
