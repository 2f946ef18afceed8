package types

import "context"

// Document is an exported invoice artifact.
type Document struct {
	FileName string
	MimeType string
	Content  []byte
	// Path is the temporary rendering on local disk, if any.
	Path string
	// Cleanup removes temporary rendering state once the artifact is stored.
	Cleanup func(ctx context.Context) error
}
