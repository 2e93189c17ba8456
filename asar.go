package asar

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/hotelspunk33/asar/internal/header"
	"github.com/hotelspunk33/asar/internal/tree"
)

// Mode identifies what an Asar instance is backed by.
type Mode uint8

const (
	// ModeDirectory backs the instance with an on-disk source directory;
	// only the packing operations are valid.
	ModeDirectory Mode = iota

	// ModeArchive backs the instance with parsed archive bytes; only the
	// reading operations are valid.
	ModeArchive
)

// String returns "directory" or "archive".
func (m Mode) String() string {
	if m == ModeDirectory {
		return "directory"
	}
	return "archive"
}

// Asar is a handle on either a source directory to pack or an opened
// archive to read. Open selects the mode from what the path names on disk:
// Pack and WriteTo require directory mode; List, ReadFile, Find, Stat,
// Extract, and FS require archive mode. Calling an operation in the wrong
// mode fails with ErrInvalidOperation.
//
// An instance is read-only after construction. Distinct instances are
// independent; sharing one instance across goroutines requires external
// synchronization.
type Asar struct {
	mode    Mode
	dir     string     // directory mode: source directory path
	tree    *tree.Tree // archive mode: parsed header tree
	content []byte     // archive mode: content region of the archive buffer
	logger  *slog.Logger
}

// Open opens path as a source directory or an archive file, selecting the
// mode by what the path names. Archive files are read whole into memory and
// their headers parsed eagerly, so a non-nil *Asar is always fully usable.
//
// Open fails with ErrNotFound when the path does not exist, with
// fs.ErrInvalid when it names neither a directory nor a regular file, and
// with ErrMalformedHeader when an archive file does not parse.
func Open(path string, opts ...Option) (*Asar, error) {
	a := &Asar{}
	for _, opt := range opts {
		opt(a)
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &fs.PathError{Op: "open", Path: path, Err: ErrNotFound}
	}
	if err != nil {
		return nil, err
	}

	if info.IsDir() {
		a.mode = ModeDirectory
		a.dir = path
		a.log().Debug("opened directory", "path", path)
		return a, nil
	}

	// FIFOs, sockets, and devices are neither packable nor parseable, and
	// reading one could block forever.
	if !info.Mode().IsRegular() {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fmt.Errorf("%w: not a regular file", fs.ErrInvalid)}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := a.load(data); err != nil {
		return nil, err
	}
	a.log().Debug("opened archive", "path", path, "files", a.tree.Len())
	return a, nil
}

// OpenBytes opens an archive already held in memory. The Asar retains data;
// callers must not modify it while the instance is in use.
func OpenBytes(data []byte, opts ...Option) (*Asar, error) {
	a := &Asar{}
	for _, opt := range opts {
		opt(a)
	}
	if err := a.load(data); err != nil {
		return nil, err
	}
	return a, nil
}

// load parses framing and header, leaving the instance in archive mode.
func (a *Asar) load(data []byte) error {
	h, err := header.Load(data)
	if err != nil {
		return err
	}
	a.mode = ModeArchive
	a.tree = h.Tree
	a.content = data[h.ContentStart:]
	return nil
}

// log returns the logger, falling back to a discard logger if nil.
func (a *Asar) log() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.logger
}

// Mode reports whether the instance is backed by a directory or an archive.
func (a *Asar) Mode() Mode {
	return a.mode
}

// Len returns the number of files in an opened archive.
// It is zero in directory mode.
func (a *Asar) Len() int {
	if a.tree == nil {
		return 0
	}
	return a.tree.Len()
}

// ContentSize returns the sum of all file sizes in an opened archive, which
// for archives produced by Pack equals the content-region length.
// It is zero in directory mode.
func (a *Asar) ContentSize() uint64 {
	if a.tree == nil {
		return 0
	}
	return a.tree.TotalSize()
}

// List returns the full slash-separated path of every file in the archive
// in header order: pre-order, sibling names ascending. Folders are not
// listed.
func (a *Asar) List() ([]string, error) {
	if a.mode != ModeArchive {
		return nil, fmt.Errorf("list on %s instance: %w", a.mode, ErrInvalidOperation)
	}
	entries := a.tree.Flatten()
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	return paths, nil
}

// ReadFile returns a copy of the named file's content. It fails with
// ErrNotFound when the path is absent or names a folder: reading a folder
// is an error, never empty bytes.
func (a *Asar) ReadFile(name string) ([]byte, error) {
	if a.mode != ModeArchive {
		return nil, fmt.Errorf("read on %s instance: %w", a.mode, ErrInvalidOperation)
	}
	node, ok := a.tree.Lookup(NormalizePath(name))
	if !ok || node.IsDir() {
		return nil, &fs.PathError{Op: "read", Path: name, Err: ErrNotFound}
	}
	content := make([]byte, node.Size())
	copy(content, a.section(node))
	return content, nil
}

// Find returns the full path of every file whose base name contains substr,
// in header order. An empty substr matches every file.
func (a *Asar) Find(substr string) ([]string, error) {
	if a.mode != ModeArchive {
		return nil, fmt.Errorf("find on %s instance: %w", a.mode, ErrInvalidOperation)
	}
	var matches []string
	for _, e := range a.tree.Flatten() {
		if strings.Contains(path.Base(e.Path), substr) {
			matches = append(matches, e.Path)
		}
	}
	return matches, nil
}

// Info describes a single archive entry.
type Info struct {
	// Path is the entry's slash-separated archive path, "." for the root.
	Path string

	// Offset is the byte distance from the start of the content region to
	// the file's first byte. Zero for folders.
	Offset uint64

	// Size is the file's byte length. Zero for folders.
	Size uint64

	// IsDir reports whether the entry is a folder.
	IsDir bool
}

// Stat returns metadata for the named file or folder. The empty path and
// "." resolve to the archive root.
func (a *Asar) Stat(name string) (Info, error) {
	if a.mode != ModeArchive {
		return Info{}, fmt.Errorf("stat on %s instance: %w", a.mode, ErrInvalidOperation)
	}
	keyed := NormalizePath(name)
	node, ok := a.tree.Lookup(keyed)
	if !ok {
		return Info{}, &fs.PathError{Op: "stat", Path: name, Err: ErrNotFound}
	}
	return Info{Path: keyed, Offset: node.Offset(), Size: node.Size(), IsDir: node.IsDir()}, nil
}

// section returns the node's byte range within the content region.
// Bounds were validated when the archive was loaded.
func (a *Asar) section(node *tree.Node) []byte {
	return a.content[node.Offset() : node.Offset()+node.Size()]
}
