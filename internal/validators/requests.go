package validators

import (
	"encoding/json"

	"assetadmin/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
)

// ListRequest is the body of POST /list.
type ListRequest struct {
	Query       map[string]interface{} `json:"query"`
	Options     *utils.PaginateOptions `json:"options"`
	IsCountOnly bool                   `json:"isCountOnly"`
}

// Filter validates the options and returns the cast query.
func (r *ListRequest) Filter(s *Schema) (bson.M, error) {
	if r.Options != nil {
		if err := ValidateStruct(r.Options); err != nil {
			return nil, err
		}
		if _, err := r.Options.FindOptions(); err != nil {
			return nil, ValidationErrors{fieldError("options", "options", "", err.Error())}
		}
	}
	return s.CastFilter(r.Query)
}

// CountRequest is the body of POST /count.
type CountRequest struct {
	Where map[string]interface{} `json:"where"`
}

func (r *CountRequest) Filter(s *Schema) (bson.M, error) {
	return s.CastFilter(r.Where)
}

// BulkCreateRequest is the body of POST /addBulk.
type BulkCreateRequest struct {
	Data []json.RawMessage `json:"data"`
}

// BulkUpdateRequest is the body of PUT /updateBulk.
type BulkUpdateRequest struct {
	Filter map[string]interface{} `json:"filter"`
	Data   json.RawMessage        `json:"data"`
}

// IDsRequest is the body of softDeleteMany and deleteMany.
type IDsRequest struct {
	IDs       []string `json:"ids"`
	IsWarning bool     `json:"isWarning"`
}

// DeleteRequest is the optional body of DELETE /delete/:id.
type DeleteRequest struct {
	IsWarning bool `json:"isWarning"`
}
