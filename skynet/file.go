package skynet

import (
	"io"
)

// File is a named payload to be uploaded to a portal.
//
// NOTE: The content handle must be seekable so that it can be rewound to the start when an upload attempt is retried.
// The client reads the handle without taking ownership, the caller may reuse it once the upload completes.
type File struct {
	// Name is the filename, also used as the multipart form field name.
	Name string

	// Content is the file content.
	Content io.Reader
}

// NewFile returns a file payload with the given name/content.
func NewFile(name string, content io.Reader) File {
	return File{Name: name, Content: content}
}
