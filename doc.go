// Package asar reads and writes asar archives: a flat, concatenative archive
// format with a JSON header describing a directory tree of files by byte
// offset and size, followed by the raw concatenated file contents.
//
// An [Asar] is opened over either a directory to pack or an existing archive
// to read; [Open] selects the mode from what the path names on disk.
//
// # Quick Start
//
// Pack a directory into an archive:
//
//	a, err := asar.Open("./app")
//	if err != nil {
//	    return err
//	}
//	err = a.Pack("app.asar")
//
// Open an archive and read files:
//
//	a, err := asar.Open("app.asar")
//	if err != nil {
//	    return err
//	}
//	content, err := a.ReadFile("folder1/script.py")
//
// Extract everything:
//
//	err = a.Extract("./unpacked")
//
// # Limitations
//
// The whole archive is held in memory while open, which bounds usable
// archive size to available memory. The codec covers the format's core
// fields only: integrity hashes, symbolic links, executable bits, and
// unpacked files are not supported.
package asar
