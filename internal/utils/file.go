package utils

import (
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// FileExtension returns the lowercased extension of filename, dot included.
func FileExtension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// ContentType prefers the type sent with the part and falls back to the
// extension.
func ContentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	if ct := mime.TypeByExtension(FileExtension(fh.Filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
