package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func respond(c *gin.Context, httpStatus int, status, message, fallback string, data interface{}) {
	if message == "" {
		message = fallback
	}
	c.JSON(httpStatus, APIResponse{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

func SuccessResponse(c *gin.Context, message string, data interface{}) {
	respond(c, http.StatusOK, StatusSuccess, message, MsgSuccess, data)
}

// FailureResponse reports a business-rule failure. It is still HTTP 200.
func FailureResponse(c *gin.Context, message string) {
	respond(c, http.StatusOK, StatusFailure, message, MsgFailure, nil)
}

func BadRequestResponse(c *gin.Context, message string) {
	respond(c, http.StatusBadRequest, StatusBadRequest, message, MsgBadRequest, nil)
}

func ValidationErrorResponse(c *gin.Context, message string) {
	respond(c, http.StatusBadRequest, StatusValidationError, message, MsgValidationError, nil)
}

func UnauthorizedResponse(c *gin.Context, message string) {
	respond(c, http.StatusUnauthorized, StatusUnauthorized, message, MsgUnauthorized, nil)
}

func NotFoundResponse(c *gin.Context, message string) {
	respond(c, http.StatusNotFound, StatusRecordNotFound, message, MsgRecordNotFound, nil)
}

// InternalServerErrorResponse echoes err to the client.
func InternalServerErrorResponse(c *gin.Context, err error) {
	message := MsgInternalServer
	if err != nil {
		message = err.Error()
	}
	respond(c, http.StatusInternalServerError, StatusServerError, message, MsgInternalServer, nil)
}
