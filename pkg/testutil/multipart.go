package testutil

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// MultipartBuilder accumulates files and fields for a multipart request.
type MultipartBuilder struct {
	t      *testing.T
	buf    bytes.Buffer
	writer *multipart.Writer
}

// NewMultipart starts building a multipart form body.
func NewMultipart(t *testing.T) *MultipartBuilder {
	t.Helper()
	b := &MultipartBuilder{t: t}
	b.writer = multipart.NewWriter(&b.buf)
	return b
}

// File adds a file part with the given field name, filename, and content.
func (b *MultipartBuilder) File(field, filename string, content []byte) *MultipartBuilder {
	b.t.Helper()
	fw, err := b.writer.CreateFormFile(field, filename)
	require.NoError(b.t, err, "failed to create form file")
	_, err = fw.Write(content)
	require.NoError(b.t, err, "failed to write form file")
	return b
}

// Field adds a plain form value. Repeated field names append multiple values.
func (b *MultipartBuilder) Field(name, value string) *MultipartBuilder {
	b.t.Helper()
	require.NoError(b.t, b.writer.WriteField(name, value), "failed to write form field")
	return b
}

// Request finalizes the body and returns a request with the correct
// multipart Content-Type boundary set.
func (b *MultipartBuilder) Request(method, path string) *http.Request {
	b.t.Helper()
	require.NoError(b.t, b.writer.Close(), "failed to close multipart writer")
	req := httptest.NewRequest(method, path, &b.buf)
	req.Header.Set("Content-Type", b.writer.FormDataContentType())
	return req
}
