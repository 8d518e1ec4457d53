package utils

import (
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "a***n@example.com", MaskEmail("admin@example.com"))
	assert.Equal(t, "ab@example.com", MaskEmail("ab@example.com"))
	assert.Equal(t, "not-an-email", MaskEmail("not-an-email"))
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "******7890", MaskPhone("1234567890"))
	assert.Equal(t, "123", MaskPhone("123"))
}

func TestContentType(t *testing.T) {
	fh := &multipart.FileHeader{Filename: "Logo.PNG", Header: textproto.MIMEHeader{}}
	assert.Equal(t, ".png", FileExtension(fh.Filename))
	assert.Equal(t, "image/png", ContentType(fh))

	fh.Header.Set("Content-Type", "image/webp")
	assert.Equal(t, "image/webp", ContentType(fh))

	fh = &multipart.FileHeader{Filename: "blob", Header: textproto.MIMEHeader{}}
	assert.Equal(t, "application/octet-stream", ContentType(fh))
}
