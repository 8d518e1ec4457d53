package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Earnings struct {
	Base    `bson:",inline"`
	UserID  *primitive.ObjectID `json:"userId,omitempty" bson:"userId,omitempty" validate:"required"`
	AssetID *primitive.ObjectID `json:"assetId,omitempty" bson:"assetId,omitempty" validate:"required"`
	// The key is misspelled on the wire and kept that way.
	MonthlyEarnings string `json:"monthlEarnings,omitempty" bson:"monthlEarnings,omitempty"`
}
