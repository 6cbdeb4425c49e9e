package fsys

import "errors"

// Sentinel errors, one per error kind named in spec.md §7. Operations wrap
// these with fmt.Errorf("%s: %w", name, Err...) when an offending name is
// available, mirroring the teacher package's errors.go shape.
var (
	ErrNotFound        = errors.New("not found")
	ErrNotDirectory    = errors.New("not a directory")
	ErrNotFile         = errors.New("not a file")
	ErrExists          = errors.New("already exists")
	ErrFull            = errors.New("directory is full")
	ErrNoSpace         = errors.New("not enough free space")
	ErrTooLarge        = errors.New("content exceeds maximum file size")
	ErrBadName         = errors.New("invalid name")
	ErrIsRoot          = errors.New("operation not allowed on root")
	ErrBadArguments    = errors.New("wrong number of arguments")
	ErrIndexOutOfRange = errors.New("inode index out of range")
)
