// Package fsys implements the mutable namespace on top of package image:
// the sorted directory index, the path resolver, and the mkdir/rmdir/touch/
// rm/mv/mvdir/ls/cat/echo/cp operations that keep the bitmap, parent
// tables and inode blocks mutually consistent.
package fsys

import (
	"github.com/coreblock/vfsimg/image"
)

// FS is a single session's view of one vfsimg image: the device, the
// effective user recorded on newly created inodes, and the current
// directory stack (bottom = root, per spec.md's "current-directory
// stack" glossary entry).
type FS struct {
	dev    *image.Device
	bitmap *image.Bitmap
	user   string
	cwd    []uint16
}

// Open opens (creating if necessary) the image at path and returns a
// session rooted at the image's root directory.
func Open(path, user string) (*FS, error) {
	dev, err := image.Open(path)
	if err != nil {
		return nil, err
	}
	return &FS{
		dev:    dev,
		bitmap: image.NewBitmap(dev),
		user:   user,
		cwd:    []uint16{image.RootBlock},
	}, nil
}

// Close releases the underlying image.
func (fs *FS) Close() error {
	return fs.dev.Close()
}

// User returns the effective user recorded on inodes this session creates.
func (fs *FS) User() string {
	return fs.user
}

// Root returns the root directory's block index.
func (fs *FS) Root() uint16 {
	return image.RootBlock
}

// Cwd returns the current directory's block index.
func (fs *FS) Cwd() uint16 {
	return fs.cwd[len(fs.cwd)-1]
}

// CwdStack returns a copy of the full current-directory stack, root first.
func (fs *FS) CwdStack() []uint16 {
	return append([]uint16(nil), fs.cwd...)
}

// Inode loads and decodes the inode at block. Exported for callers (the
// fsck checker) that need read-only access beyond the namespace operations
// below.
func (fs *FS) Inode(block uint16) (image.Inode, error) {
	return fs.dev.GetInode(block)
}

// IsAllocated reports whether block's bitmap bit is set.
func (fs *FS) IsAllocated(block uint16) bool {
	return fs.bitmap.IsAllocated(block)
}

// Chdir replaces the session's current-directory stack with the result of
// resolving path, matching the `cd` shell command's semantics.
func (fs *FS) Chdir(path string) error {
	_, stack, err := fs.resolve(path)
	if err != nil {
		return err
	}
	fs.cwd = stack
	return nil
}

// Path returns the slash-joined sequence of names from root to the current
// directory, e.g. "root/a/b". Used for the prompt and the `pwd` command.
func (fs *FS) Path() (string, error) {
	return fs.pathFor(fs.cwd)
}

func (fs *FS) pathFor(stack []uint16) (string, error) {
	names := make([]string, len(stack))
	for i, block := range stack {
		ino, err := fs.dev.GetInode(block)
		if err != nil {
			return "", err
		}
		names[i] = ino.Name
	}
	out := names[0]
	for _, n := range names[1:] {
		out += "/" + n
	}
	return out, nil
}
