// Package fsck walks a vfsimg namespace from its root and cross-checks it
// against the bitmap, looking for the kinds of corruption the namespace
// operations in package fsys are supposed to make impossible: orphaned
// inode blocks the bitmap thinks are allocated but that no directory table
// reaches, blocks reachable more than once (a cycle or an aliased table
// entry), and directory tables that aren't in sorted order.
package fsck

import (
	"fmt"

	"github.com/google/btree"

	"github.com/coreblock/vfsimg/fsys"
	"github.com/coreblock/vfsimg/image"
)

// Report is the result of a single Check run.
type Report struct {
	VisitedBlocks       int
	Orphans             []uint16
	Duplicates          []uint16
	UnsortedDirectories []uint16
}

// Clean reports whether the image has no detected inconsistencies.
func (r *Report) Clean() bool {
	return len(r.Orphans) == 0 && len(r.Duplicates) == 0 && len(r.UnsortedDirectories) == 0
}

// Check walks fs from its root directory and returns a Report. It does not
// modify fs.
func Check(fs *fsys.FS) (*Report, error) {
	visited := btree.NewG(32, func(a, b uint16) bool { return a < b })

	var duplicates []uint16
	var unsorted []uint16

	var walk func(block uint16) error
	walk = func(block uint16) error {
		if visited.Has(block) {
			duplicates = append(duplicates, block)
			return nil
		}
		visited.ReplaceOrInsert(block)

		node, err := fs.Inode(block)
		if err != nil {
			return fmt.Errorf("block %d: %w", block, err)
		}
		if node.Type != image.TypeDir {
			return nil
		}

		prev := ""
		for i, child := range node.Table {
			childNode, err := fs.Inode(child)
			if err != nil {
				return fmt.Errorf("block %d: child %d: %w", block, child, err)
			}
			if i > 0 && childNode.Name <= prev {
				unsorted = append(unsorted, block)
			}
			prev = childNode.Name
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(fs.Root()); err != nil {
		return nil, err
	}

	var orphans []uint16
	// Only the inode partition's bits are scanned: blocks 2776 and 2777 lie
	// in the data partition and may hold file payload.
	for b := uint16(image.InodeRegionStart); b < image.InodeBitmapByteEnd*8; b++ {
		if fs.IsAllocated(b) && !visited.Has(b) {
			orphans = append(orphans, b)
		}
	}

	return &Report{
		VisitedBlocks:       visited.Len(),
		Orphans:             orphans,
		Duplicates:          duplicates,
		UnsortedDirectories: unsorted,
	}, nil
}
