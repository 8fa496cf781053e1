// Package photostore persists employee photos outside the record stream.
package photostore

import (
	"context"
	"path"
	"strings"
)

// Store saves a photo and returns where it was written.
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// extensions maps photo content types to file extensions.
var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ObjectKey returns the key a photo of an employee is stored under:
// <employeeID>/<size><ext>.
func ObjectKey(employeeID, size, contentType string) string {
	mediaType := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	return path.Join(sanitize(employeeID), sanitize(size)+extensions[mediaType])
}

// sanitize keeps key segments from escaping their directory.
func sanitize(segment string) string {
	segment = strings.ReplaceAll(segment, "/", "_")
	segment = strings.ReplaceAll(segment, "\\", "_")
	if segment == "" || segment == "." || segment == ".." {
		return "_"
	}
	return segment
}
