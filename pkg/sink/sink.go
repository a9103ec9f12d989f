// Package sink stores downloaded document content on a local filesystem or
// in an S3-compatible bucket.
package sink

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
)

// DefaultExtension is appended to names that have none.
const DefaultExtension = ".pdf"

// ErrExists is returned when a save would replace existing content and
// overwriting is disabled.
var ErrExists = errors.New("destination already exists")

// Sink saves a blob under a suggested name and returns where it was stored.
type Sink interface {
	Save(ctx context.Context, name string, data []byte, mimeType string) (string, error)
}

// FileName reduces a suggested name to a safe base name. Directory parts
// are dropped and DefaultExtension is added when the name has no extension.
func FileName(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), `\`, "/")
	name = filepath.Base(name)
	if name == "." || name == "/" || name == ".." || name == "" {
		name = "document"
	}
	if filepath.Ext(name) == "" {
		name += DefaultExtension
	}
	return name
}
