package asar

import "strings"

// NormalizePath converts a user-provided path to the slash-separated,
// rootless form archive entries are keyed by: leading, trailing, and
// repeated separators are dropped ("//folder1//script.py" becomes
// "folder1/script.py"), and paths with no segments at all ("", "/", "///")
// become ".", the archive root.
//
// Dot and dotdot segments are kept as-is rather than resolved; archive trees
// never contain such names, so lookups on them simply miss. The
// path-addressed Asar methods (ReadFile, Stat) already normalize their
// arguments — the function is exported for preparing archive keys ahead of
// time.
func NormalizePath(p string) string {
	segs := strings.Split(p, "/")
	keep := segs[:0]
	for _, seg := range segs {
		if seg != "" {
			keep = append(keep, seg)
		}
	}
	if len(keep) == 0 {
		return "."
	}
	return strings.Join(keep, "/")
}
