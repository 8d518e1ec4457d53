package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"assetadmin/internal/models"
	"assetadmin/internal/repositories/interfaces"
	"assetadmin/internal/services"
	"assetadmin/internal/utils"
	"assetadmin/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Register(ctx context.Context, w *models.Wallet) (*models.Wallet, error) {
	args := m.Called(ctx, w)
	res, _ := args.Get(0).(*models.Wallet)
	return res, args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, username, password string) (*services.LoginResult, error) {
	args := m.Called(ctx, username, password)
	res, _ := args.Get(0).(*services.LoginResult)
	return res, args.Error(1)
}

func (m *mockAuthService) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockAuthService) ForgotPassword(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockAuthService) ValidateOTP(ctx context.Context, otp string) error {
	return m.Called(ctx, otp).Error(0)
}

func (m *mockAuthService) ResetPassword(ctx context.Context, code, newPassword string) error {
	return m.Called(ctx, code, newPassword).Error(0)
}

func (m *mockAuthService) Authenticate(ctx context.Context, token string) (*models.Wallet, error) {
	args := m.Called(ctx, token)
	res, _ := args.Get(0).(*models.Wallet)
	return res, args.Error(1)
}

func newAuthEnv() (*testEnv, *mockAuthService) {
	svc := new(mockAuthService)
	h := NewAuthHandler(svc, logger.NewNop())

	r := gin.New()
	auth := r.Group("/admin/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.POST("/forgot-password", h.ForgotPassword)
	auth.POST("/validate-otp", h.ValidateOTP)
	auth.PUT("/reset-password", h.ResetPassword)
	auth.POST("/logout", func(c *gin.Context) {
		c.Set(utils.ContextToken, "tok")
		c.Next()
	}, h.Logout)

	return &testEnv{router: r}, svc
}

func TestLoginResponses(t *testing.T) {
	env, svc := newAuthEnv()

	code, res := env.do(t, http.MethodPost, "/admin/auth/login", `{"username":"a"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, utils.StatusBadRequest, res.Status)

	cases := []struct {
		err error
		msg string
	}{
		{services.ErrUserNotExists, "User not exists"},
		{services.ErrInvalidCredentials, "Incorrect Password"},
		{&services.AccountLockedError{Remaining: 3 * time.Minute}, "you have exceed the number of limit.you can login after 3 minutes."},
	}
	for i, tc := range cases {
		user := fmt.Sprintf("u%d", i)
		svc.On("Login", mock.Anything, user, "pw").Return(nil, tc.err).Once()

		code, res := env.do(t, http.MethodPost, "/admin/auth/login", `{"username":"`+user+`","password":"pw"}`)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, utils.StatusFailure, res.Status)
		assert.Equal(t, tc.msg, res.Message)
	}

	wallet := &models.Wallet{WalletAddress: "lw420flpfs", Password: "hash"}
	svc.On("Login", mock.Anything, "lw420flpfs", "pw").
		Return(&services.LoginResult{Wallet: wallet, Token: "jwt", Roles: []*models.Role{}}, nil).Once()
	code, res = env.do(t, http.MethodPost, "/admin/auth/login", `{"username":"lw420flpfs","password":"pw"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, utils.StatusSuccess, res.Status)
	assert.Contains(t, string(res.Data), `"token":"jwt"`)
	assert.NotContains(t, string(res.Data), "hash")
}

func TestRegisterResponses(t *testing.T) {
	env, svc := newAuthEnv()

	code, res := env.do(t, http.MethodPost, "/admin/auth/register", `{"email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, utils.StatusValidationError, res.Status)

	svc.On("Register", mock.Anything, mock.Anything).Return(nil, &services.DuplicateFieldError{Field: "email"}).Once()
	code, res = env.do(t, http.MethodPost, "/admin/auth/register", `{"email":"a@example.com","password":"pw"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "email already exists", res.Message)
}

func TestPasswordResetFlow(t *testing.T) {
	env, svc := newAuthEnv()

	svc.On("ForgotPassword", mock.Anything, "x@example.com").Return(interfaces.ErrNotFound).Once()
	code, _ := env.do(t, http.MethodPost, "/admin/auth/forgot-password", `{"email":"x@example.com"}`)
	assert.Equal(t, http.StatusNotFound, code)

	svc.On("ForgotPassword", mock.Anything, "a@example.com").Return(nil).Once()
	code, res := env.do(t, http.MethodPost, "/admin/auth/forgot-password", `{"email":"a@example.com"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, utils.StatusSuccess, res.Status)

	svc.On("ValidateOTP", mock.Anything, "000000").Return(services.ErrInvalidOTP).Once()
	code, res = env.do(t, http.MethodPost, "/admin/auth/validate-otp", `{"otp":"000000"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Invalid OTP", res.Message)

	svc.On("ValidateOTP", mock.Anything, "123456").Return(nil).Once()
	_, res = env.do(t, http.MethodPost, "/admin/auth/validate-otp", `{"otp":"123456"}`)
	assert.Equal(t, "Otp verified", res.Message)

	svc.On("ResetPassword", mock.Anything, "123456", "new").Return(services.ErrOTPExpired).Once()
	_, res = env.do(t, http.MethodPut, "/admin/auth/reset-password", `{"code":"123456","newPassword":"new"}`)
	assert.Equal(t, utils.StatusFailure, res.Status)

	code, _ = env.do(t, http.MethodPut, "/admin/auth/reset-password", `{"code":"123456"}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestLogout(t *testing.T) {
	env, svc := newAuthEnv()

	svc.On("Logout", mock.Anything, "tok").Return(nil).Once()
	code, res := env.do(t, http.MethodPost, "/admin/auth/logout", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, utils.StatusSuccess, res.Status)

	svc.On("Logout", mock.Anything, "tok").Return(errors.New("db down")).Once()
	code, _ = env.do(t, http.MethodPost, "/admin/auth/logout", "")
	assert.Equal(t, http.StatusInternalServerError, code)
}
