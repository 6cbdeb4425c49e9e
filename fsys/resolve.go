package fsys

import (
	"fmt"
	"strings"

	"github.com/coreblock/vfsimg/image"
)

// resolve walks path from the session's current-directory stack, per
// spec.md §4.5. An empty path returns the current directory unchanged
// without touching the stack at all. A leading slash resets the walk to
// root before consuming the rest of the tokens. "." and empty tokens are
// no-ops; ".." pops the stack down to (but never past) the root.
func (fs *FS) resolve(path string) (block uint16, stack []uint16, err error) {
	if path == "" {
		return fs.Cwd(), fs.CwdStack(), nil
	}

	tokens := strings.Split(path, "/")
	curr := fs.CwdStack()

	if tokens[0] == "" {
		curr = curr[:1]
		tokens = tokens[1:]
	}

	for _, t := range tokens {
		switch t {
		case "", ".":
			continue
		case "..":
			if len(curr) > 1 {
				curr = curr[:len(curr)-1]
			}
			continue
		default:
			top := curr[len(curr)-1]
			node, err := fs.dev.GetInode(top)
			if err != nil {
				return 0, nil, err
			}
			if node.Type != image.TypeDir {
				return 0, nil, fmt.Errorf("%s: %w", node.Name, ErrNotDirectory)
			}
			found, pos, err := fs.lookup(node.Table, t)
			if err != nil {
				return 0, nil, err
			}
			if !found {
				return 0, nil, fmt.Errorf("%s: %w", t, ErrNotFound)
			}
			curr = append(curr, node.Table[pos])
		}
	}

	return curr[len(curr)-1], curr, nil
}
