// Package tree models the logical contents of an asar archive: a directory
// tree whose leaves are files occupying byte ranges in the archive's content
// region.
//
// Trees are built once — by the packer walking a source directory, or by the
// header codec parsing an archive — and are read-only afterwards. Folders own
// their children exclusively; the structure is a strict tree, never a graph.
package tree

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ErrInvalidPath is returned when a path cannot be placed in the tree: an
// empty or dot segment, a name already taken, or a segment that would
// descend through an existing file.
var ErrInvalidPath = errors.New("asar: invalid path")

// Node is a single entry in the tree: a folder when it owns a child map, a
// file with an offset and size otherwise. The root node (the archive "home")
// is a folder with no name of its own.
type Node struct {
	children map[string]*Node // nil for files
	offset   uint64
	size     uint64
}

// IsDir reports whether the node is a folder (or the root).
func (n *Node) IsDir() bool { return n.children != nil }

// Offset returns the byte distance from the start of the content region to
// the file's first byte. Zero for folders.
func (n *Node) Offset() uint64 {
	if n.IsDir() {
		return 0
	}
	return n.offset
}

// Size returns the file's byte length. Zero for folders.
func (n *Node) Size() uint64 {
	if n.IsDir() {
		return 0
	}
	return n.size
}

// Child returns the named child of a folder node.
func (n *Node) Child(name string) (*Node, bool) {
	c, ok := n.children[name]
	return c, ok
}

// Names returns the folder's child names in ascending (bytewise) order, the
// order used everywhere offsets and contents are sequenced.
func (n *Node) Names() []string {
	if len(n.children) == 0 {
		return nil
	}
	return slices.Sorted(maps.Keys(n.children))
}

// Entry is a file in flat form: its full slash-separated path and the byte
// range it occupies in the content region. The packer also uses Entry (with
// Offset unset) as the flat listing produced by the directory walk.
type Entry struct {
	Path   string
	Offset uint64
	Size   uint64
}

// Tree is the root of an archive's logical contents.
type Tree struct {
	root  *Node
	files int
}

// New returns an empty tree containing only the root folder.
func New() *Tree {
	return &Tree{root: &Node{children: map[string]*Node{}}}
}

// Root returns the tree's home node.
func (t *Tree) Root() *Node { return t.root }

// Len returns the number of files in the tree.
func (t *Tree) Len() int { return t.files }

// ValidName reports whether name may appear as a child name. Empty names,
// "." and "..", and names containing a separator would alias other paths and
// are rejected wherever a tree is built.
func ValidName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsRune(name, '/')
}

// Insert places a file at the slash-separated path, creating intermediate
// folders as needed. It fails with ErrInvalidPath when a segment is invalid,
// when a non-terminal segment collides with an existing file, or when the
// final segment names an existing entry.
func (t *Tree) Insert(path string, offset, size uint64) error {
	parent, name, err := t.descend(path)
	if err != nil {
		return err
	}
	if _, ok := parent.children[name]; ok {
		return fmt.Errorf("%w: %q already exists", ErrInvalidPath, path)
	}
	parent.children[name] = &Node{offset: offset, size: size}
	t.files++
	return nil
}

// InsertFolder places an (possibly empty) folder at the slash-separated
// path, creating intermediate folders as needed. Inserting over an existing
// folder is a no-op; colliding with an existing file fails with
// ErrInvalidPath.
func (t *Tree) InsertFolder(path string) error {
	parent, name, err := t.descend(path)
	if err != nil {
		return err
	}
	if existing, ok := parent.children[name]; ok {
		if existing.IsDir() {
			return nil
		}
		return fmt.Errorf("%w: %q already exists as a file", ErrInvalidPath, path)
	}
	parent.children[name] = &Node{children: map[string]*Node{}}
	return nil
}

// descend walks all but the last segment of path, creating folders along the
// way, and returns the final parent folder plus the leaf name.
func (t *Tree) descend(path string) (*Node, string, error) {
	segs := strings.Split(path, "/")
	node := t.root
	for _, seg := range segs[:len(segs)-1] {
		if !ValidName(seg) {
			return nil, "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
		child, ok := node.children[seg]
		if !ok {
			child = &Node{children: map[string]*Node{}}
			node.children[seg] = child
		} else if !child.IsDir() {
			return nil, "", fmt.Errorf("%w: %q descends through a file", ErrInvalidPath, path)
		}
		node = child
	}
	name := segs[len(segs)-1]
	if !ValidName(name) {
		return nil, "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return node, name, nil
}

// Lookup descends the slash-separated path and returns the node it names.
// The empty path and "." name the root. ok is false when a segment is
// missing or a file is reached before the final segment.
func (t *Tree) Lookup(path string) (*Node, bool) {
	if path == "" || path == "." {
		return t.root, true
	}
	node := t.root
	for _, seg := range strings.Split(path, "/") {
		if !node.IsDir() {
			return nil, false
		}
		child, ok := node.children[seg]
		if !ok {
			return nil, false
		}
		node = child
	}
	return node, true
}

// Flatten yields every file in the tree in pre-order with child names
// ascending, the same sequence the packer assigns offsets and writes
// contents in.
func (t *Tree) Flatten() []Entry {
	out := make([]Entry, 0, t.files)
	appendEntries(t.root, "", &out)
	return out
}

func appendEntries(n *Node, prefix string, out *[]Entry) {
	for _, name := range n.Names() {
		child := n.children[name]
		path := name
		if prefix != "" {
			path = prefix + "/" + name
		}
		if child.IsDir() {
			appendEntries(child, path, out)
			continue
		}
		*out = append(*out, Entry{Path: path, Offset: child.offset, Size: child.size})
	}
}

// TotalSize returns the sum of all file sizes: the exact content-region
// length for trees produced by the packer.
func (t *Tree) TotalSize() uint64 {
	var total uint64
	for _, e := range t.Flatten() {
		total += e.Size
	}
	return total
}
