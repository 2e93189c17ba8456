// Package header implements the asar header codec: rendering a tree as the
// archive's JSON header text, parsing header bytes back into a tree, and the
// pickle framing that locates header and content regions on disk.
//
// On disk an archive begins with four little-endian uint32 words:
//
//	word 0: 4, the payload length of the size pickle
//	word 1: padded JSON length + 8, the header pickle block length
//	word 2: padded JSON length + 4, the header pickle payload length
//	word 3: exact JSON length
//
// followed by the JSON text padded with zero bytes to the padded length, then
// the concatenated file contents. The content region therefore starts at
// word2 + 12. Writers produced by this package pad the JSON to an 8-byte
// boundary; readers accept any framing whose words are self-consistent, which
// keeps 4-byte-aligned archives from the upstream tooling readable.
package header

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/hotelspunk33/asar/internal/tree"
)

// ErrMalformedHeader is returned when archive framing or header text violates
// the format: truncated or inconsistent framing words, schema violations,
// non-numeric offset strings, or file ranges that overlap or escape the
// content region.
var ErrMalformedHeader = errors.New("asar: malformed header")

// maxSafeSize caps sizes and offsets at 2^53-1, the largest integer the
// upstream JavaScript implementation represents exactly.
const maxSafeSize = 1<<53 - 1

const (
	wordSize    = 4  // each framing word is a little-endian uint32
	frameSize   = 16 // four words precede the JSON text
	headerAlign = 8  // written headers pad the JSON text to this boundary
)

// Header is the parsed lead of an archive: the tree described by the JSON
// text and the absolute offset at which the content region begins.
type Header struct {
	Tree         *tree.Tree
	ContentStart int64
}

// fileEntry is the JSON shape of a file node. Offsets are decimal strings,
// not numbers, per the format's convention.
type fileEntry struct {
	Size   uint64 `json:"size"`
	Offset string `json:"offset"`
}

// Encode renders the tree as header JSON. Folders become {"files": {...}},
// files become {"size": n, "offset": "n"}. Keys serialize in ascending
// order, so encoding the same tree twice yields identical bytes.
func Encode(t *tree.Tree) ([]byte, error) {
	for _, e := range t.Flatten() {
		if e.Size > maxSafeSize || e.Offset > maxSafeSize {
			return nil, fmt.Errorf("asar: entry %q exceeds the representable size", e.Path)
		}
	}
	return json.Marshal(folderValue(t.Root()))
}

func folderValue(n *tree.Node) map[string]any {
	children := map[string]any{}
	for _, name := range n.Names() {
		child, _ := n.Child(name)
		if child.IsDir() {
			children[name] = folderValue(child)
		} else {
			children[name] = fileEntry{
				Size:   child.Size(),
				Offset: strconv.FormatUint(child.Offset(), 10),
			}
		}
	}
	return map[string]any{"files": children}
}

// Decode parses header JSON into a tree, validating the schema: the root and
// every folder carry an object-valued "files"; every file carries a
// non-negative integer "size" and a decimal-string "offset", both at most
// 2^53-1; file byte ranges must be pairwise non-overlapping. Any violation
// fails with ErrMalformedHeader and no tree.
func Decode(data []byte) (*tree.Tree, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}
	filesRaw, ok := root["files"]
	if !ok {
		return nil, fmt.Errorf("%w: root has no files object", ErrMalformedHeader)
	}
	t := tree.New()
	if err := decodeFolder(t, "", filesRaw); err != nil {
		return nil, err
	}
	if err := validateRanges(t); err != nil {
		return nil, err
	}
	return t, nil
}

// decodeFolder parses one "files" object, inserting each child under prefix.
func decodeFolder(t *tree.Tree, prefix string, raw json.RawMessage) error {
	var children map[string]json.RawMessage
	// Unmarshal leaves the map nil for a JSON null, which is not an object.
	if err := json.Unmarshal(raw, &children); err != nil || children == nil {
		return fmt.Errorf("%w: files of %q is not an object", ErrMalformedHeader, holePath(prefix))
	}
	for name, childRaw := range children {
		if !tree.ValidName(name) {
			return fmt.Errorf("%w: illegal entry name %q in %q", ErrMalformedHeader, name, holePath(prefix))
		}
		path := name
		if prefix != "" {
			path = prefix + "/" + name
		}
		if err := decodeEntry(t, path, childRaw); err != nil {
			return err
		}
	}
	return nil
}

// decodeEntry parses a single child: a file when both size and offset are
// present, otherwise a folder when a files object is present.
func decodeEntry(t *tree.Tree, path string, raw json.RawMessage) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return fmt.Errorf("%w: entry %q is not an object", ErrMalformedHeader, path)
	}

	sizeRaw, hasSize := fields["size"]
	offsetRaw, hasOffset := fields["offset"]
	if hasSize && hasOffset {
		size, err := decodeSize(sizeRaw)
		if err != nil {
			return fmt.Errorf("%w: size of %q: %v", ErrMalformedHeader, path, err)
		}
		offset, err := decodeOffset(offsetRaw)
		if err != nil {
			return fmt.Errorf("%w: offset of %q: %v", ErrMalformedHeader, path, err)
		}
		if err := t.Insert(path, offset, size); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedHeader, err)
		}
		return nil
	}

	filesRaw, hasFiles := fields["files"]
	if !hasFiles {
		return fmt.Errorf("%w: entry %q has neither size+offset nor files", ErrMalformedHeader, path)
	}
	if err := t.InsertFolder(path); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}
	return decodeFolder(t, path, filesRaw)
}

// decodeSize parses a file size: a JSON number holding a non-negative
// integer no larger than 2^53-1.
func decodeSize(raw json.RawMessage) (uint64, error) {
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return 0, errors.New("not a number")
	}
	size, err := strconv.ParseUint(num.String(), 10, 64)
	if err != nil {
		return 0, errors.New("not a non-negative integer")
	}
	if size > maxSafeSize {
		return 0, errors.New("exceeds 2^53-1")
	}
	return size, nil
}

// decodeOffset parses a file offset: a JSON string holding a non-negative
// decimal integer no larger than 2^53-1.
func decodeOffset(raw json.RawMessage) (uint64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, errors.New("not a string")
	}
	offset, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.New("not a numeric string")
	}
	if offset > maxSafeSize {
		return 0, errors.New("exceeds 2^53-1")
	}
	return offset, nil
}

// validateRanges rejects trees whose file byte ranges overlap. Gaps are
// legal: an externally produced archive may leave unreferenced bytes, but
// two files claiming the same bytes never parse. Zero-length files occupy
// no bytes and cannot overlap anything.
func validateRanges(t *tree.Tree) error {
	entries := slices.DeleteFunc(t.Flatten(), func(e tree.Entry) bool {
		return e.Size == 0
	})
	slices.SortFunc(entries, func(a, b tree.Entry) int {
		switch {
		case a.Offset < b.Offset:
			return -1
		case a.Offset > b.Offset:
			return 1
		default:
			return 0
		}
	})
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		if prev.Offset+prev.Size > cur.Offset {
			return fmt.Errorf("%w: %q and %q overlap", ErrMalformedHeader, prev.Path, cur.Path)
		}
	}
	return nil
}

func holePath(prefix string) string {
	if prefix == "" {
		return "."
	}
	return prefix
}

// Build renders the tree's complete header block: framing words, JSON text,
// and zero padding up to the 8-byte-aligned length. File contents belong
// immediately after the returned bytes.
func Build(t *tree.Tree) ([]byte, error) {
	text, err := Encode(t)
	if err != nil {
		return nil, err
	}
	padded := alignUp(uint64(len(text)), headerAlign)
	if padded+headerAlign > math.MaxUint32 {
		return nil, fmt.Errorf("asar: header text of %d bytes exceeds the format limit", len(text))
	}

	buf := make([]byte, 0, frameSize+padded)
	buf = binary.LittleEndian.AppendUint32(buf, wordSize)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(padded)+2*wordSize)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(padded)+wordSize)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(text)))
	buf = append(buf, text...)
	buf = append(buf, make([]byte, int(padded)-len(text))...)
	return buf, nil
}

func alignUp(n, align uint64) uint64 {
	return (n + align - 1) / align * align
}

// Load parses the lead of a whole archive buffer: framing, JSON header, and
// the tree, then bounds-checks every file range against the actual content
// region. It fails with ErrMalformedHeader on truncated or inconsistent
// framing and on any Decode failure; it never returns a partial result.
func Load(archive []byte) (*Header, error) {
	if len(archive) < frameSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the framing", ErrMalformedHeader, len(archive))
	}
	word0 := binary.LittleEndian.Uint32(archive[0:])
	word1 := binary.LittleEndian.Uint32(archive[4:])
	word2 := binary.LittleEndian.Uint32(archive[8:])
	word3 := binary.LittleEndian.Uint32(archive[12:])

	if word0 != wordSize {
		return nil, fmt.Errorf("%w: unexpected size word %d", ErrMalformedHeader, word0)
	}
	if word1 != word2+wordSize || word2 < wordSize {
		return nil, fmt.Errorf("%w: inconsistent framing words", ErrMalformedHeader)
	}
	padded := uint64(word2) - wordSize
	jsonLen := uint64(word3)
	if jsonLen > padded {
		return nil, fmt.Errorf("%w: JSON length %d exceeds the header block", ErrMalformedHeader, jsonLen)
	}
	contentStart := uint64(frameSize) + padded
	if contentStart > uint64(len(archive)) {
		return nil, fmt.Errorf("%w: header block extends past the archive", ErrMalformedHeader)
	}

	t, err := Decode(archive[frameSize : frameSize+jsonLen])
	if err != nil {
		return nil, err
	}

	contentLen := uint64(len(archive)) - contentStart
	for _, e := range t.Flatten() {
		if e.Offset+e.Size > contentLen {
			return nil, fmt.Errorf("%w: %q extends past the content region", ErrMalformedHeader, e.Path)
		}
	}
	return &Header{Tree: t, ContentStart: int64(contentStart)}, nil
}
