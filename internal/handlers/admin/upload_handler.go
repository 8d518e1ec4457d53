package admin

import (
	"errors"

	"assetadmin/internal/services"
	"assetadmin/internal/utils"
	"assetadmin/pkg/logger"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	uploadService services.UploadService
	logger        *logger.Logger
}

func NewUploadHandler(uploadService services.UploadService, log *logger.Logger) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		logger:        log,
	}
}

// Upload stores the multipart "files" field.
func (h *UploadHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, "Insufficient request parameters! files are required.")
		return
	}

	files, err := h.uploadService.Upload(c.Request.Context(), form.File["files"])
	switch {
	case err == nil:
		utils.SuccessResponse(c, "", files)
	case errors.Is(err, services.ErrNoFiles):
		utils.BadRequestResponse(c, "Insufficient request parameters! files are required.")
	case errors.Is(err, services.ErrFileTooLarge), errors.Is(err, services.ErrFileTypeNotAllowed):
		utils.ValidationErrorResponse(c, err.Error())
	default:
		h.logger.WithContext(c.Request.Context()).WithError(err).Error("Upload failed")
		utils.InternalServerErrorResponse(c, err)
	}
}
