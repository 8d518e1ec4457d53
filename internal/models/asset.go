package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Asset struct {
	Base          `bson:",inline"`
	Name          string              `json:"name,omitempty" bson:"name,omitempty"`
	Pool          *int64              `json:"pool,omitempty" bson:"pool,omitempty" validate:"required"`
	MinInvestment *int64              `json:"minInvestment,omitempty" bson:"minInvestment,omitempty" validate:"required"`
	MaxInvestment *int64              `json:"maxInvestment,omitempty" bson:"maxInvestment,omitempty"`
	Category      *primitive.ObjectID `json:"category,omitempty" bson:"category,omitempty"`
	SubCategory   *primitive.ObjectID `json:"subCategory,omitempty" bson:"subCategory,omitempty"`
	SellerID      *primitive.ObjectID `json:"sellerId,omitempty" bson:"sellerId,omitempty"`
}
