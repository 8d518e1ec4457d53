package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Order struct {
	Base        `bson:",inline"`
	AssetID     *primitive.ObjectID `json:"assetId,omitempty" bson:"assetId,omitempty"`
	Quantity    *int64              `json:"quantity,omitempty" bson:"quantity,omitempty" validate:"omitempty,min=0"`
	Amount      *int64              `json:"amount,omitempty" bson:"amount,omitempty"`
	OrderStatus string              `json:"orderStatus,omitempty" bson:"orderStatus,omitempty"`
}
