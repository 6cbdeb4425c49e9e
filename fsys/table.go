package fsys

import "strings"

// lookup performs a binary search for name among table's entries, reading
// one candidate inode per comparison (spec.md §4.4). When found, pos is the
// entry's index; otherwise pos is the insertion point that preserves sort
// order.
func (fs *FS) lookup(table []uint16, name string) (found bool, pos int, err error) {
	lo, hi := 0, len(table)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		cand, err := fs.dev.GetInode(table[mid])
		if err != nil {
			return false, 0, err
		}
		switch {
		case cand.Name == name:
			return true, mid, nil
		case cand.Name > name:
			hi = mid - 1
		default:
			lo = mid + 1
		}
	}
	return false, lo, nil
}

// insertTable returns a new table with block inserted at pos. The table
// parameter is never mutated in place and a fresh backing array is always
// produced: spec.md §9 flags the source's shared-mutable-default-table bug
// as a pitfall to avoid, and this is how that's avoided here.
func insertTable(table []uint16, pos int, block uint16) []uint16 {
	out := make([]uint16, len(table)+1)
	copy(out, table[:pos])
	out[pos] = block
	copy(out[pos+1:], table[pos:])
	return out
}

// removeTable returns a new table with the entry at pos removed.
func removeTable(table []uint16, pos int) []uint16 {
	out := make([]uint16, 0, len(table)-1)
	out = append(out, table[:pos]...)
	out = append(out, table[pos+1:]...)
	return out
}

// splitParentLeaf trims a trailing slash and splits path into a parent path
// and a leaf name, per spec.md §4.5's "trailing slash is discarded by
// trimming" rule. A path with no slash yields an empty parent, which
// callers treat as "the current directory" (spec.md §4.6's mkdir bullet:
// "uses the current directory if no / in path").
func splitParentLeaf(path string) (parent, leaf string) {
	path = strings.TrimRight(path, "/")
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return "", path
	}
	return path[:idx], path[idx+1:]
}

// resolveParent resolves the parent half of a splitParentLeaf() result,
// using the current directory when parentPath is empty.
func (fs *FS) resolveParent(parentPath string) (uint16, error) {
	if parentPath == "" {
		return fs.Cwd(), nil
	}
	block, _, err := fs.resolve(parentPath)
	return block, err
}
