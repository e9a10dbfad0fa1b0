package source

import "strings"

// File represents a single source file (typically `.blend`) held in memory
// for the duration of a compilation.
type File struct {
	// Name is the origin identifier used in diagnostics (a path, or a
	// synthetic name for in-memory sources).
	Name string
	// Contents is the raw, decoded source text.
	Contents string
}

// NewFile constructs a source file from a name and its text contents.
func NewFile(name, contents string) *File {
	return &File{Name: name, Contents: contents}
}

// Line returns the 1-indexed line of text containing the given byte offset,
// without its trailing newline.  If offset is beyond the end of the file,
// the last line is returned.
func (f *File) Line(offset int) string {
	if offset < 0 {
		offset = 0
	}
	//
	if offset > len(f.Contents) {
		offset = len(f.Contents)
	}
	//
	start := strings.LastIndexByte(f.Contents[:offset], '\n') + 1
	end := len(f.Contents)
	//
	if rel := strings.IndexByte(f.Contents[offset:], '\n'); rel >= 0 {
		end = offset + rel
	}
	//
	return f.Contents[start:end]
}
