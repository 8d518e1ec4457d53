package admin

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"assetadmin/internal/middleware"
	"assetadmin/internal/services"
	"assetadmin/internal/utils"
	"assetadmin/internal/validators"
	"assetadmin/pkg/logger"

	"github.com/gin-gonic/gin"
)

const invalidParams = "Invalid values in parameters, "

// CRUDHandler serves the twelve admin endpoints of one entity.
type CRUDHandler[T any] struct {
	service services.CRUDService[T]
	logger  *logger.Logger
}

func NewCRUDHandler[T any](service services.CRUDService[T], log *logger.Logger) *CRUDHandler[T] {
	return &CRUDHandler[T]{
		service: service,
		logger:  log.WithEntity(service.Entity().Name),
	}
}

// Register mounts the endpoints under /<entity path> of rg.
func (h *CRUDHandler[T]) Register(rg *gin.RouterGroup) {
	g := rg.Group("/" + h.service.Entity().Path)
	{
		g.POST("/create", h.Create)
		g.POST("/addBulk", h.CreateMany)
		g.POST("/list", h.List)
		g.GET("/:id", h.Get)
		g.POST("/count", h.Count)
		g.PUT("/update/:id", h.Update)
		g.PUT("/partial-update/:id", h.PartialUpdate)
		g.PUT("/updateBulk", h.UpdateMany)
		g.PUT("/softDelete/:id", h.SoftDelete)
		g.PUT("/softDeleteMany", h.SoftDeleteMany)
		g.DELETE("/delete/:id", h.Delete)
		g.POST("/deleteMany", h.DeleteMany)
	}
}

func (h *CRUDHandler[T]) Create(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		utils.BadRequestResponse(c, "")
		return
	}

	doc, err := validators.DecodeCreate[T](body)
	if err != nil {
		h.fail(c, err, invalidParams)
		return
	}

	actor, _ := middleware.CurrentUserID(c)
	created, err := h.service.Create(c.Request.Context(), doc, actor)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	utils.SuccessResponse(c, "", created)
}

func (h *CRUDHandler[T]) CreateMany(c *gin.Context) {
	var req validators.BulkCreateRequest
	if err := bindBody(c, &req); err != nil || len(req.Data) == 0 {
		utils.BadRequestResponse(c, "")
		return
	}

	docs := make([]*T, 0, len(req.Data))
	for _, item := range req.Data {
		doc, err := validators.DecodeCreate[T](item)
		if err != nil {
			h.fail(c, err, invalidParams)
			return
		}
		docs = append(docs, doc)
	}

	actor, _ := middleware.CurrentUserID(c)
	result, err := h.service.CreateMany(c.Request.Context(), docs, actor)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	utils.SuccessResponse(c, "", result)
}

func (h *CRUDHandler[T]) List(c *gin.Context) {
	var req validators.ListRequest
	if err := bindBody(c, &req); err != nil {
		h.fail(c, err, "")
		return
	}

	filter, err := req.Filter(h.service.Schema())
	if err != nil {
		h.fail(c, err, "")
		return
	}

	ctx := c.Request.Context()
	if req.IsCountOnly {
		total, err := h.service.Count(ctx, filter)
		if err != nil {
			h.fail(c, err, "")
			return
		}
		utils.SuccessResponse(c, "", gin.H{"totalRecords": total})
		return
	}

	result, err := h.service.List(ctx, filter, req.Options)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	utils.SuccessResponse(c, "", result)
}

func (h *CRUDHandler[T]) Get(c *gin.Context) {
	id, err := validators.ParseObjectID(c.Param("id"))
	if err != nil {
		utils.ValidationErrorResponse(c, err.Error()+".")
		return
	}

	doc, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	utils.SuccessResponse(c, "", doc)
}

func (h *CRUDHandler[T]) Count(c *gin.Context) {
	var req validators.CountRequest
	if err := bindBody(c, &req); err != nil {
		h.fail(c, err, "")
		return
	}

	filter, err := req.Filter(h.service.Schema())
	if err != nil {
		h.fail(c, err, "")
		return
	}

	n, err := h.service.Count(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	utils.SuccessResponse(c, "", services.CountResult{Count: n})
}

func (h *CRUDHandler[T]) Update(c *gin.Context) {
	h.update(c, validators.UpdateOptions{})
}

// PartialUpdate is Update with addedBy stripped from the body.
func (h *CRUDHandler[T]) PartialUpdate(c *gin.Context) {
	h.update(c, validators.UpdateOptions{StripAddedBy: true})
}

func (h *CRUDHandler[T]) update(c *gin.Context, opts validators.UpdateOptions) {
	id, err := validators.ParseObjectID(c.Param("id"))
	if err != nil {
		utils.ValidationErrorResponse(c, err.Error()+".")
		return
	}

	body, err := readBody(c)
	if err != nil {
		utils.BadRequestResponse(c, "")
		return
	}

	_, set, err := validators.DecodeUpdate[T](body, opts)
	if err != nil {
		h.fail(c, err, invalidParams)
		return
	}

	actor, _ := middleware.CurrentUserID(c)
	doc, err := h.service.Update(c.Request.Context(), id, set, actor)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	utils.SuccessResponse(c, "", doc)
}

func (h *CRUDHandler[T]) UpdateMany(c *gin.Context) {
	var req validators.BulkUpdateRequest
	if err := bindBody(c, &req); err != nil {
		h.fail(c, err, invalidParams)
		return
	}

	filter, err := h.service.Schema().CastFilter(req.Filter)
	if err != nil {
		h.fail(c, err, "")
		return
	}

	data := []byte(req.Data)
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		data = []byte("{}")
	}
	_, set, err := validators.DecodeUpdate[T](data, validators.UpdateOptions{StripAddedBy: true})
	if err != nil {
		h.fail(c, err, invalidParams)
		return
	}

	actor, _ := middleware.CurrentUserID(c)
	result, err := h.service.UpdateMany(c.Request.Context(), filter, set, actor)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	utils.SuccessResponse(c, "", result)
}

func (h *CRUDHandler[T]) SoftDelete(c *gin.Context) {
	id, err := validators.ParseObjectID(c.Param("id"))
	if err != nil {
		utils.ValidationErrorResponse(c, err.Error()+".")
		return
	}

	actor, _ := middleware.CurrentUserID(c)
	result, err := h.service.SoftDelete(c.Request.Context(), id, actor)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	utils.SuccessResponse(c, "", result)
}

func (h *CRUDHandler[T]) SoftDeleteMany(c *gin.Context) {
	req, ok := h.bindIDs(c)
	if !ok {
		return
	}
	ids, err := validators.ParseObjectIDs(req.IDs)
	if err != nil {
		h.fail(c, err, invalidParams)
		return
	}

	actor, _ := middleware.CurrentUserID(c)
	result, err := h.service.SoftDeleteMany(c.Request.Context(), ids, actor)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	utils.SuccessResponse(c, "", result)
}

// Delete hard-deletes one document. isWarning in the body turns it into a
// count of what would be removed.
func (h *CRUDHandler[T]) Delete(c *gin.Context) {
	id, err := validators.ParseObjectID(c.Param("id"))
	if err != nil {
		utils.ValidationErrorResponse(c, err.Error()+".")
		return
	}

	var req validators.DeleteRequest
	if err := bindBody(c, &req); err != nil {
		h.fail(c, err, invalidParams)
		return
	}

	result, err := h.service.Delete(c.Request.Context(), id, req.IsWarning)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	utils.SuccessResponse(c, "", result)
}

func (h *CRUDHandler[T]) DeleteMany(c *gin.Context) {
	req, ok := h.bindIDs(c)
	if !ok {
		return
	}
	ids, err := validators.ParseObjectIDs(req.IDs)
	if err != nil {
		h.fail(c, err, invalidParams)
		return
	}

	result, err := h.service.DeleteMany(c.Request.Context(), ids, req.IsWarning)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	utils.SuccessResponse(c, "", result)
}

func (h *CRUDHandler[T]) bindIDs(c *gin.Context) (*validators.IDsRequest, bool) {
	var req validators.IDsRequest
	if err := bindBody(c, &req); err != nil || len(req.IDs) == 0 {
		utils.BadRequestResponse(c, "")
		return nil, false
	}
	return &req, true
}

// fail maps err onto the response envelope. prefix is put in front of
// validation messages.
func (h *CRUDHandler[T]) fail(c *gin.Context, err error, prefix string) {
	var verrs validators.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		utils.ValidationErrorResponse(c, prefix+verrs.Error())
	case services.IsNotFound(err):
		utils.NotFoundResponse(c, "")
	default:
		h.logger.WithContext(c.Request.Context()).WithError(err).Error("Admin request failed")
		utils.InternalServerErrorResponse(c, err)
	}
}

// readBody returns the raw request body, or "{}" when it is empty.
func readBody(c *gin.Context) ([]byte, error) {
	if c.Request.Body == nil {
		return []byte("{}"), nil
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return []byte("{}"), nil
	}
	return body, nil
}

// bindBody decodes an optional JSON body into dst.
func bindBody(c *gin.Context, dst interface{}) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return validators.FormatDecodeError(err)
	}
	return nil
}
