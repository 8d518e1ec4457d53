package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type AssetCategory struct {
	Base             `bson:",inline"`
	Name             string              `json:"name,omitempty" bson:"name,omitempty"`
	ParentCategoryID *primitive.ObjectID `json:"parentCategoryId,omitempty" bson:"parentCategoryId,omitempty"`
}
