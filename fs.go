package asar

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"time"

	"github.com/hotelspunk33/asar/internal/tree"
)

// Interface compliance.
var (
	_ fs.FS          = (*archiveFS)(nil)
	_ fs.StatFS      = (*archiveFS)(nil)
	_ fs.ReadFileFS  = (*archiveFS)(nil)
	_ fs.ReadDirFS   = (*archiveFS)(nil)
	_ fs.ReadDirFile = (*openDir)(nil)
	_ io.ReaderAt    = (*openFile)(nil)
)

// FS returns a read-only fs.FS view of an opened archive, implementing
// fs.StatFS, fs.ReadFileFS, and fs.ReadDirFS. Only valid in archive mode.
//
// Unlike the Asar methods, the view follows io/fs conventions exactly:
// names must satisfy fs.ValidPath and misses surface fs.ErrNotExist.
func (a *Asar) FS() (fs.FS, error) {
	if a.mode != ModeArchive {
		return nil, fmt.Errorf("fs on %s instance: %w", a.mode, ErrInvalidOperation)
	}
	return &archiveFS{a: a}, nil
}

type archiveFS struct {
	a *Asar
}

// lookup resolves name for op, translating misses to fs errors.
func (f *archiveFS) lookup(op, name string) (*tree.Node, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	node, ok := f.a.tree.Lookup(name)
	if !ok {
		return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
	}
	return node, nil
}

// Open implements fs.FS.
func (f *archiveFS) Open(name string) (fs.File, error) {
	node, err := f.lookup("open", name)
	if err != nil {
		return nil, err
	}
	if node.IsDir() {
		return &openDir{info: newInfo(path.Base(name), node), entries: f.dirEntries(node)}, nil
	}
	return &openFile{info: newInfo(path.Base(name), node), r: bytes.NewReader(f.a.section(node))}, nil
}

// Stat implements fs.StatFS.
func (f *archiveFS) Stat(name string) (fs.FileInfo, error) {
	node, err := f.lookup("stat", name)
	if err != nil {
		return nil, err
	}
	return newInfo(path.Base(name), node), nil
}

// ReadFile implements fs.ReadFileFS.
func (f *archiveFS) ReadFile(name string) ([]byte, error) {
	node, err := f.lookup("readfile", name)
	if err != nil {
		return nil, err
	}
	if node.IsDir() {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: errors.New("is a directory")}
	}
	content := make([]byte, node.Size())
	copy(content, f.a.section(node))
	return content, nil
}

// ReadDir implements fs.ReadDirFS, returning a folder's children sorted by name.
func (f *archiveFS) ReadDir(name string) ([]fs.DirEntry, error) {
	node, err := f.lookup("readdir", name)
	if err != nil {
		return nil, err
	}
	if !node.IsDir() {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: errors.New("not a directory")}
	}
	return f.dirEntries(node), nil
}

// dirEntries builds sorted fs.DirEntry values for a folder node.
func (f *archiveFS) dirEntries(node *tree.Node) []fs.DirEntry {
	names := node.Names()
	entries := make([]fs.DirEntry, len(names))
	for i, name := range names {
		child, _ := node.Child(name)
		entries[i] = newInfo(name, child)
	}
	return entries
}

// entryInfo is the fs.FileInfo and fs.DirEntry for one archive entry.
// The format stores no mode, owner, or time metadata: files report mode
// 0o444, folders fs.ModeDir | 0o555, and ModTime is always zero.
type entryInfo struct {
	name string
	size int64
	dir  bool
}

func newInfo(name string, node *tree.Node) *entryInfo {
	return &entryInfo{name: name, size: int64(node.Size()), dir: node.IsDir()}
}

func (i *entryInfo) Name() string       { return i.name }
func (i *entryInfo) Size() int64        { return i.size }
func (i *entryInfo) ModTime() time.Time { return time.Time{} }
func (i *entryInfo) IsDir() bool        { return i.dir }
func (i *entryInfo) Sys() any           { return nil }

func (i *entryInfo) Mode() fs.FileMode {
	if i.dir {
		return fs.ModeDir | 0o555
	}
	return 0o444
}

// Type and Info make entryInfo usable as an fs.DirEntry.
func (i *entryInfo) Type() fs.FileMode          { return i.Mode().Type() }
func (i *entryInfo) Info() (fs.FileInfo, error) { return i, nil }

// openFile is an open archive file backed by a slice of the content region.
type openFile struct {
	info *entryInfo
	r    *bytes.Reader
}

func (f *openFile) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *openFile) Read(p []byte) (int, error) { return f.r.Read(p) }
func (f *openFile) Close() error               { return nil }

func (f *openFile) ReadAt(p []byte, off int64) (int, error) {
	return f.r.ReadAt(p, off)
}

func (f *openFile) Seek(offset int64, whence int) (int64, error) {
	return f.r.Seek(offset, whence)
}

// openDir is an open archive folder: Read fails and ReadDir pages through
// the folder's children.
type openDir struct {
	info    *entryInfo
	entries []fs.DirEntry
	pos     int
}

func (d *openDir) Read(_ []byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.info.name, Err: fs.ErrInvalid}
}

func (d *openDir) Stat() (fs.FileInfo, error) { return d.info, nil }
func (d *openDir) Close() error               { return nil }

func (d *openDir) ReadDir(n int) ([]fs.DirEntry, error) {
	if n <= 0 {
		out := d.entries[d.pos:]
		d.pos = len(d.entries)
		return out, nil
	}
	remaining := len(d.entries) - d.pos
	if remaining == 0 {
		return nil, io.EOF
	}
	if n > remaining {
		n = remaining
	}
	out := d.entries[d.pos : d.pos+n]
	d.pos += n
	return out, nil
}
