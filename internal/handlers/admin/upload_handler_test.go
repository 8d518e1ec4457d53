package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"assetadmin/internal/services"
	"assetadmin/internal/utils"
	"assetadmin/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUploads struct {
	err error
}

func (s *stubUploads) Upload(_ context.Context, files []*multipart.FileHeader) ([]*services.UploadedFile, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(files) == 0 {
		return nil, services.ErrNoFiles
	}
	out := make([]*services.UploadedFile, 0, len(files))
	for _, fh := range files {
		out = append(out, &services.UploadedFile{Name: fh.Filename, URL: "/uploads/" + fh.Filename, Size: fh.Size})
	}
	return out, nil
}

func uploadRequest(t *testing.T, field string, names ...string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, name := range names {
		part, err := w.CreateFormFile(field, name)
		require.NoError(t, err)
		_, _ = part.Write([]byte("content"))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serveUpload(h *UploadHandler, req *http.Request) (*httptest.ResponseRecorder, utils.APIResponse) {
	r := gin.New()
	r.POST("/admin/upload", h.Upload)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var res utils.APIResponse
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	return w, res
}

func TestUploadHandler(t *testing.T) {
	h := NewUploadHandler(&stubUploads{}, logger.NewNop())

	w, res := serveUpload(h, uploadRequest(t, "files", "a.png", "b.png"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, res.Data, 2)

	w, _ = serveUpload(h, uploadRequest(t, "other", "a.png"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = serveUpload(h, httptest.NewRequest(http.MethodPost, "/admin/upload", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	h = NewUploadHandler(&stubUploads{err: fmt.Errorf("x.exe: %w", services.ErrFileTypeNotAllowed)}, logger.NewNop())
	w, res = serveUpload(h, uploadRequest(t, "files", "x.exe"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, utils.StatusValidationError, res.Status)
}
