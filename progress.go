package asar

// ProgressEvent reports one file processed by Pack or Extract.
type ProgressEvent struct {
	// Path is the file's slash-separated archive path.
	Path string

	// Size is the file's byte length.
	Size uint64

	// Done counts files processed so far, including this one.
	Done int

	// Total is the number of files the operation will process.
	Total int
}

// ProgressFunc receives progress updates during Pack and Extract.
// It is called synchronously, once per file, after the file is written.
type ProgressFunc func(ProgressEvent)
