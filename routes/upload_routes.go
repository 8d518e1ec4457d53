package routes

import (
	handlers "assetadmin/internal/handlers/admin"

	"github.com/gin-gonic/gin"
)

func SetupUploadRoutes(rg *gin.RouterGroup, uploadHandler *handlers.UploadHandler) {
	rg.POST("/upload", uploadHandler.Upload)
}
