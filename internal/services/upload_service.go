package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"assetadmin/internal/utils"
	"assetadmin/pkg/logger"
	"assetadmin/pkg/storage"

	"github.com/google/uuid"
)

var (
	ErrNoFiles            = errors.New("no files uploaded")
	ErrFileTooLarge       = errors.New("file exceeds the maximum size")
	ErrFileTypeNotAllowed = errors.New("file type is not allowed")
)

type UploadedFile struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

type UploadService interface {
	Upload(ctx context.Context, files []*multipart.FileHeader) ([]*UploadedFile, error)
}

type uploadService struct {
	provider    storage.StorageProvider
	maxSize     int64
	allowedExts map[string]bool
	now         func() time.Time
	logger      *logger.Logger
}

func NewUploadService(provider storage.StorageProvider, maxSize int64, allowedExtensions []string, log *logger.Logger) UploadService {
	exts := make(map[string]bool, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = true
	}

	return &uploadService{
		provider:    provider,
		maxSize:     maxSize,
		allowedExts: exts,
		now:         time.Now,
		logger:      log,
	}
}

func (s *uploadService) check(fh *multipart.FileHeader) error {
	ext := utils.FileExtension(fh.Filename)
	if len(s.allowedExts) > 0 && !s.allowedExts[ext] {
		return fmt.Errorf("%s: %w", fh.Filename, ErrFileTypeNotAllowed)
	}
	if s.maxSize > 0 && fh.Size > s.maxSize {
		return fmt.Errorf("%s: %w", fh.Filename, ErrFileTooLarge)
	}
	return nil
}

// Upload stores every file or none: earlier files are removed when a later
// one fails.
func (s *uploadService) Upload(ctx context.Context, files []*multipart.FileHeader) ([]*UploadedFile, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	for _, fh := range files {
		if err := s.check(fh); err != nil {
			return nil, err
		}
	}

	var stored []string
	out := make([]*UploadedFile, 0, len(files))
	for _, fh := range files {
		res, err := s.store(ctx, fh)
		if err != nil {
			s.rollback(stored)
			return nil, err
		}
		stored = append(stored, res.Key)
		out = append(out, &UploadedFile{Name: fh.Filename, URL: res.URL, Size: res.Size})
	}
	return out, nil
}

func (s *uploadService) objectKey(filename string) string {
	ext := utils.FileExtension(filename)
	return fmt.Sprintf("uploads/%s/%s%s", s.now().UTC().Format("2006/01/02"), uuid.NewString(), ext)
}

func (s *uploadService) store(ctx context.Context, fh *multipart.FileHeader) (*storage.UploadResponse, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	res, err := s.provider.Upload(ctx, &storage.UploadRequest{
		Key:         s.objectKey(fh.Filename),
		Reader:      f,
		ContentType: utils.ContentType(fh),
		Size:        fh.Size,
		Metadata:    map[string]string{"original-name": fh.Filename},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store %s: %w", fh.Filename, err)
	}
	return res, nil
}

func (s *uploadService) rollback(keys []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, key := range keys {
		if err := s.provider.Delete(ctx, key); err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("Failed to roll back upload")
		}
	}
}
