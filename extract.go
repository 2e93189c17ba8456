package asar

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/hotelspunk33/asar/internal/tree"
)

// Extract writes every file in the archive under targetDir, creating the
// target and any needed parent directories. Existing files are truncated
// and overwritten. All writes are confined to targetDir.
//
// Extraction is not transactional: the first write error aborts and is
// returned, and files already extracted remain on disk. Callers needing
// atomicity should extract into a staging directory and rename it into
// place themselves.
func (a *Asar) Extract(targetDir string, opts ...ExtractOption) error {
	if a.mode != ModeArchive {
		return fmt.Errorf("extract on %s instance: %w", a.mode, ErrInvalidOperation)
	}
	cfg := extractConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	log := a.log()
	if cfg.logger != nil {
		log = cfg.logger
	}

	if err := os.MkdirAll(targetDir, 0o750); err != nil {
		return fmt.Errorf("create target directory: %w", err)
	}
	root, err := os.OpenRoot(targetDir)
	if err != nil {
		return err
	}
	defer root.Close()

	entries := a.tree.Flatten()
	log.Info("extracting archive", "target", targetDir, "files", len(entries))

	for i, e := range entries {
		if err := a.extractEntry(root, e); err != nil {
			return err
		}
		log.Debug("extracted file", "path", e.Path, "size", e.Size)
		if cfg.progress != nil {
			cfg.progress(ProgressEvent{Path: e.Path, Size: e.Size, Done: i + 1, Total: len(entries)})
		}
	}
	return nil
}

// extractEntry writes one file's byte range to its path inside root.
func (a *Asar) extractEntry(root *os.Root, e tree.Entry) error {
	if dir := path.Dir(e.Path); dir != "." {
		if err := root.MkdirAll(filepath.FromSlash(dir), 0o750); err != nil {
			return err
		}
	}
	f, err := root.Create(filepath.FromSlash(e.Path))
	if err != nil {
		return err
	}
	if _, err := f.Write(a.content[e.Offset : e.Offset+e.Size]); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", e.Path, err)
	}
	return f.Close()
}
