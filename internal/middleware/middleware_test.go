package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"assetadmin/internal/models"
	"assetadmin/internal/services"
	"assetadmin/internal/utils"
	"assetadmin/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuth struct {
	services.AuthService
	wallet *models.Wallet
}

func (s *stubAuth) Authenticate(_ context.Context, token string) (*models.Wallet, error) {
	if token != "good" {
		return nil, services.ErrUnauthorized
	}
	return s.wallet, nil
}

type stubPermissions struct {
	allowed bool
	err     error
	method  string
	route   string
}

func (s *stubPermissions) RolesOf(context.Context, primitive.ObjectID) ([]*models.Role, error) {
	return nil, nil
}

func (s *stubPermissions) Authorize(_ context.Context, _ primitive.ObjectID, method, route string) (bool, error) {
	s.method, s.route = method, route
	return s.allowed, s.err
}

func (s *stubPermissions) Invalidate(context.Context) {}

type recordedActivity struct {
	mu      sync.Mutex
	entries []*models.ActivityLog
}

func (r *recordedActivity) Record(e *models.ActivityLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *recordedActivity) Wait() {}

func decode(t *testing.T, w *httptest.ResponseRecorder) utils.APIResponse {
	t.Helper()
	var res utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func guardedRouter(perms *stubPermissions, activity services.ActivityService) (*gin.Engine, *models.Wallet) {
	wallet := &models.Wallet{WalletAddress: "admin"}
	wallet.ID = primitive.NewObjectID()

	r := gin.New()
	r.Use(RequestIDMiddleware())
	admin := r.Group("/admin", AuthRequired(&stubAuth{wallet: wallet}))
	if activity != nil {
		admin.Use(ActivityMiddleware(activity))
	}
	admin.Use(RequirePermission(perms, logger.NewNop()))
	admin.GET("/asset/:id", func(c *gin.Context) {
		utils.SuccessResponse(c, "", gin.H{"user": CurrentUser(c).WalletAddress})
	})
	admin.POST("/asset/create", func(c *gin.Context) {
		utils.SuccessResponse(c, "", nil)
	})
	return r, wallet
}

func TestAuthRequired(t *testing.T) {
	r, _ := guardedRouter(&stubPermissions{allowed: true}, nil)

	for _, header := range []string{"", "good", "Bearer bad", "Basic good"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin/asset/1", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
		assert.Equal(t, utils.StatusUnauthorized, decode(t, w).Status)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/asset/1", nil)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{"user": "admin"}, decode(t, w).Data)
}

func TestRequirePermission(t *testing.T) {
	perms := &stubPermissions{allowed: false}
	r, _ := guardedRouter(perms, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/asset/42", nil)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, MsgNoPermission, decode(t, w).Message)
	assert.Equal(t, "GET", perms.method)
	assert.Equal(t, "/admin/asset/:id", perms.route)

	perms.allowed, perms.err = false, errors.New("mongo down")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "mongo down", decode(t, w).Message)
}

func TestActivityMiddlewareRecordsWrites(t *testing.T) {
	activity := &recordedActivity{}
	r, wallet := guardedRouter(&stubPermissions{allowed: true}, activity)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		path := "/admin/asset/1"
		if method == http.MethodPost {
			path = "/admin/asset/create"
		}
		w := httptest.NewRecorder()
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("Authorization", "Bearer good")
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	require.Len(t, activity.entries, 1)
	e := activity.entries[0]
	assert.Equal(t, "/admin/asset/create", e.Route)
	assert.Equal(t, "_admin_asset_create", e.ActivityName)
	assert.Equal(t, http.StatusOK, e.HTTPStatus)
	assert.Equal(t, wallet.ID, *e.RefID)
	assert.NotEmpty(t, e.RequestID)
}

func TestRequestIDAndCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://admin.example.com"}), RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(utils.ContextRequestID)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "abc")
	req.Header.Set("Origin", "https://admin.example.com")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Body.String())
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "https://admin.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	r.ServeHTTP(w, req)
	assert.Len(t, w.Body.String(), 36)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/ping", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RecoveryMiddleware(logger.NewNop()), MetricsMiddleware(), LoggingMiddleware(logger.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "boom", decode(t, w).Message)
}
