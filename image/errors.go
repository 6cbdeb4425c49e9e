package image

import "errors"

// Package-specific error variables, usable with errors.Is(), mirroring the
// sentinel-error shape the teacher package used for its own format errors.
var (
	// ErrNoSpace is returned when a bitmap partition has no free bit left.
	ErrNoSpace = errors.New("allocation error: partition exhausted")

	// ErrIndexOutOfRange is returned when an inode block index falls
	// outside [InodeRegionStart, 2776], the addressable inode range.
	ErrIndexOutOfRange = errors.New("inode index out of range")

	// ErrNameTooLong is returned when encoding a name longer than
	// MaxNameLen bytes of UTF-8.
	ErrNameTooLong = errors.New("name exceeds maximum length")

	// ErrOwnerTooLong is returned when encoding an owner longer than
	// MaxOwnerLen bytes of UTF-8.
	ErrOwnerTooLong = errors.New("owner exceeds maximum length")

	// ErrTableTooLong is returned when encoding a table with more than
	// MaxTableEntries entries.
	ErrTableTooLong = errors.New("table exceeds maximum entries")
)
