package asar

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hotelspunk33/asar/internal/header"
	"github.com/hotelspunk33/asar/internal/tree"
)

// DefaultMaxFiles is the default limit used when no PackWithMaxFiles option is set.
const DefaultMaxFiles = 200_000

var _ io.WriterTo = (*Asar)(nil)

// WriteTo assembles the archive and writes it to w: framing words, JSON
// header, then every file's raw bytes in listing order. It implements
// io.WriterTo and is only valid in directory mode.
//
// The source directory is walked depth-first with sibling names ascending,
// descending into a directory at its position; offsets are cumulative across
// the whole walk with no padding between files. Only regular files are
// included: directories contribute structure, symbolic links and other
// irregular files are skipped, and empty directories are not preserved.
//
// Assembly is a best-effort single pass, not a snapshot: a file that
// shrinks or vanishes between the walk and the content write fails the
// assembly, and one that grows is truncated to its walked size.
func (a *Asar) WriteTo(w io.Writer) (int64, error) {
	return a.assemble(w, packConfig{})
}

// Pack assembles the archive into a file at destination.
//
// The archive is staged in a temporary file next to destination and renamed
// into place, so a failed Pack never leaves a partial archive behind.
// Parent directories are created as needed.
func (a *Asar) Pack(destination string, opts ...PackOption) error {
	cfg := packConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if a.mode != ModeDirectory {
		return fmt.Errorf("pack on %s instance: %w", a.mode, ErrInvalidOperation)
	}

	dir := filepath.Dir(destination)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".asar-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := a.assemble(tmp, cfg); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, destination); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// assemble walks the source directory, assigns offsets, and emits the
// archive to w, returning the number of bytes written.
func (a *Asar) assemble(w io.Writer, cfg packConfig) (int64, error) {
	if a.mode != ModeDirectory {
		return 0, fmt.Errorf("pack on %s instance: %w", a.mode, ErrInvalidOperation)
	}
	log := a.log()
	if cfg.logger != nil {
		log = cfg.logger
	}

	root, err := os.OpenRoot(a.dir)
	if err != nil {
		return 0, err
	}
	defer root.Close()

	listing, err := scan(root, cfg.maxFiles)
	if err != nil {
		return 0, err
	}

	t := tree.New()
	var offset uint64
	for i := range listing {
		if listing[i].Size > ^uint64(0)-offset {
			return 0, ErrSizeOverflow
		}
		listing[i].Offset = offset
		offset += listing[i].Size
		if err := t.Insert(listing[i].Path, listing[i].Offset, listing[i].Size); err != nil {
			return 0, err
		}
	}

	block, err := header.Build(t)
	if err != nil {
		return 0, err
	}

	log.Info("packing archive", "dir", a.dir, "files", len(listing), "content_bytes", offset)

	var written int64
	n, err := w.Write(block)
	written += int64(n)
	if err != nil {
		return written, err
	}

	buf := make([]byte, 32*1024)
	for i, e := range listing {
		n, err := writeEntry(root, w, e, buf)
		written += n
		if err != nil {
			return written, err
		}
		log.Debug("packed file", "path", e.Path, "size", e.Size)
		if cfg.progress != nil {
			cfg.progress(ProgressEvent{Path: e.Path, Size: e.Size, Done: i + 1, Total: len(listing)})
		}
	}
	return written, nil
}

// scan walks the source root and returns the flat listing of regular files
// in walk order, sizes filled in and offsets still unassigned.
func scan(root *os.Root, maxFiles int) ([]tree.Entry, error) {
	if maxFiles == 0 {
		maxFiles = DefaultMaxFiles
	}

	entries := make([]tree.Entry, 0, 64)
	err := fs.WalkDir(root.FS(), ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if maxFiles > 0 && len(entries) >= maxFiles {
			return ErrTooManyFiles
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		size := info.Size()
		if size < 0 {
			return fmt.Errorf("negative file size: %s", path)
		}
		entries = append(entries, tree.Entry{Path: path, Size: uint64(size)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// writeEntry copies one file's bytes from the source root to w, enforcing
// the size recorded at walk time.
func writeEntry(root *os.Root, w io.Writer, e tree.Entry, buf []byte) (int64, error) {
	f, err := root.Open(filepath.FromSlash(e.Path))
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := io.CopyBuffer(w, io.LimitReader(f, int64(e.Size)), buf)
	if err != nil {
		return n, fmt.Errorf("write %s: %w", e.Path, err)
	}
	if uint64(n) != e.Size {
		return n, fmt.Errorf("read %s: file shrank during packing (%d of %d bytes)", e.Path, n, e.Size)
	}
	return n, nil
}
