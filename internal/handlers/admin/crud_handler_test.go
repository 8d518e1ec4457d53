package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"assetadmin/internal/models"
	"assetadmin/internal/repositories/interfaces"
	"assetadmin/internal/services"
	"assetadmin/internal/utils"
	"assetadmin/internal/validators"
	"assetadmin/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const hexID = "64b7f0c2a1b2c3d4e5f60718"

func init() {
	gin.SetMode(gin.TestMode)
}

type mockAssetService struct {
	mock.Mock
}

func (m *mockAssetService) Entity() models.Entity { return models.AssetEntity }

func (m *mockAssetService) Schema() *validators.Schema { return validators.SchemaOf[models.Asset]() }

func (m *mockAssetService) Create(ctx context.Context, doc *models.Asset, actor primitive.ObjectID) (*models.Asset, error) {
	args := m.Called(ctx, doc, actor)
	res, _ := args.Get(0).(*models.Asset)
	return res, args.Error(1)
}

func (m *mockAssetService) CreateMany(ctx context.Context, docs []*models.Asset, actor primitive.ObjectID) (*services.CountResult, error) {
	args := m.Called(ctx, docs, actor)
	res, _ := args.Get(0).(*services.CountResult)
	return res, args.Error(1)
}

func (m *mockAssetService) List(ctx context.Context, filter bson.M, opts *utils.PaginateOptions) (*utils.PaginatedResult[models.Asset], error) {
	args := m.Called(ctx, filter, opts)
	res, _ := args.Get(0).(*utils.PaginatedResult[models.Asset])
	return res, args.Error(1)
}

func (m *mockAssetService) Get(ctx context.Context, id primitive.ObjectID) (*models.Asset, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(*models.Asset)
	return res, args.Error(1)
}

func (m *mockAssetService) Count(ctx context.Context, filter bson.M) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAssetService) Update(ctx context.Context, id primitive.ObjectID, set bson.M, actor primitive.ObjectID) (*models.Asset, error) {
	args := m.Called(ctx, id, set, actor)
	res, _ := args.Get(0).(*models.Asset)
	return res, args.Error(1)
}

func (m *mockAssetService) UpdateMany(ctx context.Context, filter bson.M, set bson.M, actor primitive.ObjectID) (*services.CountResult, error) {
	args := m.Called(ctx, filter, set, actor)
	res, _ := args.Get(0).(*services.CountResult)
	return res, args.Error(1)
}

func (m *mockAssetService) SoftDelete(ctx context.Context, id primitive.ObjectID, actor primitive.ObjectID) (interface{}, error) {
	args := m.Called(ctx, id, actor)
	return args.Get(0), args.Error(1)
}

func (m *mockAssetService) SoftDeleteMany(ctx context.Context, ids []primitive.ObjectID, actor primitive.ObjectID) (interface{}, error) {
	args := m.Called(ctx, ids, actor)
	return args.Get(0), args.Error(1)
}

func (m *mockAssetService) Delete(ctx context.Context, id primitive.ObjectID, dryRun bool) (interface{}, error) {
	args := m.Called(ctx, id, dryRun)
	return args.Get(0), args.Error(1)
}

func (m *mockAssetService) DeleteMany(ctx context.Context, ids []primitive.ObjectID, dryRun bool) (interface{}, error) {
	args := m.Called(ctx, ids, dryRun)
	return args.Get(0), args.Error(1)
}

type testEnv struct {
	router  *gin.Engine
	service *mockAssetService
	actor   primitive.ObjectID
}

func newTestEnv() *testEnv {
	env := &testEnv{
		router:  gin.New(),
		service: new(mockAssetService),
		actor:   primitive.NewObjectID(),
	}

	admin := env.router.Group("/admin", func(c *gin.Context) {
		c.Set(utils.ContextUserID, env.actor)
		c.Next()
	})
	NewCRUDHandler[models.Asset](env.service, logger.NewNop()).Register(admin)
	return env
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, path, body string) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var res envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res), w.Body.String())
	return w.Code, res
}

func TestCreate(t *testing.T) {
	env := newTestEnv()
	env.service.On("Create", mock.Anything, mock.MatchedBy(func(a *models.Asset) bool {
		return a.Name == "Gold" && *a.Pool == 5
	}), env.actor).Return(&models.Asset{Name: "Gold"}, nil).Once()

	code, res := env.do(t, http.MethodPost, "/admin/asset/create", `{"name":"Gold","pool":5,"minInvestment":10}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, utils.StatusSuccess, res.Status)
	assert.Contains(t, string(res.Data), `"name":"Gold"`)
	env.service.AssertExpectations(t)
}

func TestCreateValidation(t *testing.T) {
	env := newTestEnv()

	code, res := env.do(t, http.MethodPost, "/admin/asset/create", `{"name":"Gold","minInvestment":10}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, utils.StatusValidationError, res.Status)
	assert.Equal(t, `Invalid values in parameters, "pool" is required`, res.Message)

	code, res = env.do(t, http.MethodPost, "/admin/asset/create", `{"pool":"x","minInvestment":10}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, res.Message, `"pool" must be`)
	env.service.AssertNotCalled(t, "Create")
}

func TestCreateStoreError(t *testing.T) {
	env := newTestEnv()
	env.service.On("Create", mock.Anything, mock.Anything, env.actor).Return(nil, errors.New("E11000 duplicate key")).Once()

	code, res := env.do(t, http.MethodPost, "/admin/asset/create", `{"pool":1,"minInvestment":1}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, utils.StatusServerError, res.Status)
	assert.Equal(t, "E11000 duplicate key", res.Message)
}

func TestAddBulk(t *testing.T) {
	env := newTestEnv()

	code, res := env.do(t, http.MethodPost, "/admin/asset/addBulk", `{"data":[]}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, utils.StatusBadRequest, res.Status)

	env.service.On("CreateMany", mock.Anything, mock.MatchedBy(func(docs []*models.Asset) bool {
		return len(docs) == 2
	}), env.actor).Return(&services.CountResult{Count: 2}, nil).Once()

	code, res = env.do(t, http.MethodPost, "/admin/asset/addBulk",
		`{"data":[{"pool":1,"minInvestment":1},{"pool":2,"minInvestment":2}]}`)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"count":2}`, string(res.Data))
}

func TestList(t *testing.T) {
	env := newTestEnv()
	category, _ := primitive.ObjectIDFromHex(hexID)

	env.service.On("List", mock.Anything, bson.M{"category": category}, mock.MatchedBy(func(o *utils.PaginateOptions) bool {
		return o != nil && o.Page == 2 && o.Limit == 5
	})).Return(&utils.PaginatedResult[models.Asset]{
		Data:      []*models.Asset{{Name: "Gold"}},
		Paginator: utils.NewPaginator(&utils.PaginateOptions{Page: 2, Limit: 5}, 6),
	}, nil).Once()

	code, res := env.do(t, http.MethodPost, "/admin/asset/list",
		`{"query":{"category":"`+hexID+`"},"options":{"page":2,"limit":5}}`)
	require.Equal(t, http.StatusOK, code)

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(res.Data, &data))
	assert.Contains(t, data, "data")
	paginator := data["paginator"].(map[string]interface{})
	assert.Equal(t, float64(6), paginator["itemCount"])
	assert.Equal(t, float64(2), paginator["currentPage"])
}

func TestListCountOnlyAndNotFound(t *testing.T) {
	env := newTestEnv()
	env.service.On("Count", mock.Anything, bson.M{}).Return(int64(7), nil).Once()
	env.service.On("List", mock.Anything, bson.M{}, (*utils.PaginateOptions)(nil)).Return(nil, interfaces.ErrNotFound).Once()

	code, res := env.do(t, http.MethodPost, "/admin/asset/list", `{"isCountOnly":true}`)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"totalRecords":7}`, string(res.Data))

	code, res = env.do(t, http.MethodPost, "/admin/asset/list", ``)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, utils.StatusRecordNotFound, res.Status)
}

func TestListRejectsBadFilter(t *testing.T) {
	env := newTestEnv()

	code, res := env.do(t, http.MethodPost, "/admin/asset/list", `{"query":{"$where":"sleep(1000)"}}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, utils.StatusValidationError, res.Status)

	code, _ = env.do(t, http.MethodPost, "/admin/asset/list", `{"options":{"page":"x"}}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestGet(t *testing.T) {
	env := newTestEnv()
	id, _ := primitive.ObjectIDFromHex(hexID)

	code, res := env.do(t, http.MethodGet, "/admin/asset/nope", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid objectId.", res.Message)

	env.service.On("Get", mock.Anything, id).Return(nil, interfaces.ErrNotFound).Once()
	code, _ = env.do(t, http.MethodGet, "/admin/asset/"+hexID, "")
	assert.Equal(t, http.StatusNotFound, code)

	env.service.On("Get", mock.Anything, id).Return(&models.Asset{Name: "Gold"}, nil).Once()
	code, res = env.do(t, http.MethodGet, "/admin/asset/"+hexID, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(res.Data), "Gold")
}

func TestCount(t *testing.T) {
	env := newTestEnv()
	env.service.On("Count", mock.Anything, bson.M{"isDeleted": false}).Return(int64(3), nil).Once()

	code, res := env.do(t, http.MethodPost, "/admin/asset/count", `{"where":{"isDeleted":false}}`)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"count":3}`, string(res.Data))
}

func TestUpdateAndPartialUpdate(t *testing.T) {
	env := newTestEnv()
	id, _ := primitive.ObjectIDFromHex(hexID)
	other := primitive.NewObjectID()

	env.service.On("Update", mock.Anything, id, bson.M{"name": "Silver", "addedBy": other}, env.actor).
		Return(&models.Asset{Name: "Silver"}, nil).Once()
	code, _ := env.do(t, http.MethodPut, "/admin/asset/update/"+hexID,
		`{"name":"Silver","addedBy":"`+other.Hex()+`","createdAt":"2020-01-01T00:00:00Z"}`)
	assert.Equal(t, http.StatusOK, code)

	env.service.On("Update", mock.Anything, id, bson.M{"name": "Bronze"}, env.actor).
		Return(nil, interfaces.ErrNotFound).Once()
	code, _ = env.do(t, http.MethodPut, "/admin/asset/partial-update/"+hexID,
		`{"name":"Bronze","addedBy":"`+other.Hex()+`"}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, res := env.do(t, http.MethodPut, "/admin/asset/update/"+hexID, `{"pool":null}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, res.Message, `"pool" is required`)
	env.service.AssertExpectations(t)
}

func TestUpdateBulk(t *testing.T) {
	env := newTestEnv()

	env.service.On("UpdateMany", mock.Anything, bson.M{}, bson.M{"name": "X"}, env.actor).
		Return(nil, interfaces.ErrNotFound).Once()
	code, _ := env.do(t, http.MethodPut, "/admin/asset/updateBulk", `{"data":{"name":"X"}}`)
	assert.Equal(t, http.StatusNotFound, code)

	env.service.On("UpdateMany", mock.Anything, bson.M{"name": "A"}, bson.M{"name": "B"}, env.actor).
		Return(&services.CountResult{Count: 4}, nil).Once()
	code, res := env.do(t, http.MethodPut, "/admin/asset/updateBulk", `{"filter":{"name":"A"},"data":{"name":"B"}}`)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"count":4}`, string(res.Data))
}

func TestSoftDelete(t *testing.T) {
	env := newTestEnv()
	id, _ := primitive.ObjectIDFromHex(hexID)

	env.service.On("SoftDelete", mock.Anything, id, env.actor).
		Return(map[string]int64{"asset": 1, "earnings": 2}, nil).Once()
	code, res := env.do(t, http.MethodPut, "/admin/asset/softDelete/"+hexID, "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"asset":1,"earnings":2}`, string(res.Data))

	code, _ = env.do(t, http.MethodPut, "/admin/asset/softDeleteMany", `{"ids":[]}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, res = env.do(t, http.MethodPut, "/admin/asset/softDeleteMany", `{"ids":["bad"]}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, utils.StatusValidationError, res.Status)

	env.service.On("SoftDeleteMany", mock.Anything, []primitive.ObjectID{id}, env.actor).
		Return(map[string]int64{"asset": 1}, nil).Once()
	code, _ = env.do(t, http.MethodPut, "/admin/asset/softDeleteMany", `{"ids":["`+hexID+`"]}`)
	assert.Equal(t, http.StatusOK, code)
}

func TestDelete(t *testing.T) {
	env := newTestEnv()
	id, _ := primitive.ObjectIDFromHex(hexID)

	env.service.On("Delete", mock.Anything, id, true).Return(map[string]int64{"asset": 1, "earnings": 3}, nil).Once()
	code, res := env.do(t, http.MethodDelete, "/admin/asset/delete/"+hexID, `{"isWarning":true}`)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"asset":1,"earnings":3}`, string(res.Data))

	env.service.On("Delete", mock.Anything, id, false).Return(nil, errors.New("boom")).Once()
	code, res = env.do(t, http.MethodDelete, "/admin/asset/delete/"+hexID, "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "boom", res.Message)

	code, _ = env.do(t, http.MethodPost, "/admin/asset/deleteMany", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)

	env.service.On("DeleteMany", mock.Anything, []primitive.ObjectID{id}, false).
		Return(&services.CountResult{Count: 1}, nil).Once()
	code, res = env.do(t, http.MethodPost, "/admin/asset/deleteMany", `{"ids":["`+hexID+`"]}`)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"count":1}`, string(res.Data))
}

type tokenRows struct {
	services.CRUDService[models.UserTokens]
	row *models.UserTokens
}

func (s *tokenRows) Entity() models.Entity { return models.UserTokensEntity }

func (s *tokenRows) Schema() *validators.Schema { return validators.SchemaOf[models.UserTokens]() }

func (s *tokenRows) List(context.Context, bson.M, *utils.PaginateOptions) (*utils.PaginatedResult[models.UserTokens], error) {
	return &utils.PaginatedResult[models.UserTokens]{
		Data:      []*models.UserTokens{s.row},
		Paginator: &utils.Paginator{ItemCount: 1},
	}, nil
}

func (s *tokenRows) Get(context.Context, primitive.ObjectID) (*models.UserTokens, error) {
	return s.row, nil
}

func TestUserTokensNeverExposeToken(t *testing.T) {
	row := &models.UserTokens{Token: "eyJhbGciOiJIUzI1NiJ9.secret"}
	row.ID = primitive.NewObjectID()

	router := gin.New()
	NewCRUDHandler[models.UserTokens](&tokenRows{row: row}, logger.NewNop()).Register(router.Group("/admin"))

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodPost, "/admin/usertokens/list", bytes.NewReader([]byte(`{}`))),
		httptest.NewRequest(http.MethodGet, "/admin/usertokens/"+row.ID.Hex(), nil),
	} {
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, req.URL.Path)
		assert.Contains(t, w.Body.String(), row.ID.Hex())
		assert.NotContains(t, w.Body.String(), "secret", req.URL.Path)
	}
}
