package admin

import (
	"errors"

	"assetadmin/internal/middleware"
	"assetadmin/internal/models"
	"assetadmin/internal/services"
	"assetadmin/internal/utils"
	"assetadmin/internal/validators"
	"assetadmin/pkg/logger"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
	logger      *logger.Logger
}

func NewAuthHandler(authService services.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      log,
	}
}

// Register creates a login wallet.
func (h *AuthHandler) Register(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		utils.BadRequestResponse(c, "")
		return
	}

	wallet, err := validators.DecodeCreate[models.Wallet](body)
	if err != nil {
		utils.ValidationErrorResponse(c, invalidParams+err.Error())
		return
	}

	created, err := h.authService.Register(c.Request.Context(), wallet)
	if err != nil {
		var dup *services.DuplicateFieldError
		if errors.As(err, &dup) {
			utils.ValidationErrorResponse(c, dup.Error())
			return
		}
		h.serverError(c, err)
		return
	}
	utils.SuccessResponse(c, "", created)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req validators.LoginRequest
	if !bindRequest(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		var locked *services.AccountLockedError
		switch {
		case errors.Is(err, services.ErrUserNotExists):
			utils.FailureResponse(c, "User not exists")
		case errors.Is(err, services.ErrInvalidCredentials):
			utils.FailureResponse(c, "Incorrect Password")
		case errors.As(err, &locked):
			utils.FailureResponse(c, locked.Error())
		default:
			h.serverError(c, err)
		}
		return
	}
	utils.SuccessResponse(c, "Login Successful", result)
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req validators.ForgotPasswordRequest
	if !bindRequest(c, &req) {
		return
	}

	err := h.authService.ForgotPassword(c.Request.Context(), req.Email)
	switch {
	case err == nil:
		utils.SuccessResponse(c, "otp successfully send.", nil)
	case services.IsNotFound(err):
		utils.NotFoundResponse(c, "")
	case errors.Is(err, services.ErrNotificationFailed):
		utils.FailureResponse(c, "otp can not be sent due to some issue try again later.")
	default:
		h.serverError(c, err)
	}
}

func (h *AuthHandler) ValidateOTP(c *gin.Context) {
	var req validators.ValidateOTPRequest
	if !bindRequest(c, &req) {
		return
	}

	if err := h.authService.ValidateOTP(c.Request.Context(), req.OTP); err != nil {
		h.codeFailure(c, err)
		return
	}
	utils.SuccessResponse(c, "Otp verified", nil)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req validators.ResetPasswordRequest
	if !bindRequest(c, &req) {
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Code, req.NewPassword); err != nil {
		h.codeFailure(c, err)
		return
	}
	utils.SuccessResponse(c, "Password reset successfully", nil)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.CurrentToken(c)); err != nil {
		h.serverError(c, err)
		return
	}
	utils.SuccessResponse(c, "Logged Out Successfully", nil)
}

func (h *AuthHandler) codeFailure(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidOTP):
		utils.FailureResponse(c, "Invalid OTP")
	case errors.Is(err, services.ErrOTPExpired):
		utils.FailureResponse(c, "Your reset password link is expired or invalid")
	default:
		h.serverError(c, err)
	}
}

func (h *AuthHandler) serverError(c *gin.Context, err error) {
	h.logger.WithContext(c.Request.Context()).WithError(err).Error("Auth request failed")
	utils.InternalServerErrorResponse(c, err)
}

// bindRequest decodes and validates a small auth body. A missing field is a
// bad request.
func bindRequest(c *gin.Context, dst interface{}) bool {
	if err := bindBody(c, dst); err != nil {
		utils.BadRequestResponse(c, "")
		return false
	}
	if err := validators.ValidateStruct(dst); err != nil {
		utils.BadRequestResponse(c, "Insufficient request parameters! "+err.Error())
		return false
	}
	return true
}
