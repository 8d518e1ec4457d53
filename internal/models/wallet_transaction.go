package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type WalletTransaction struct {
	Base              `bson:",inline"`
	FromWalletID      *primitive.ObjectID `json:"fromwalletId,omitempty" bson:"fromwalletId,omitempty" validate:"required"`
	ToWalletID        *primitive.ObjectID `json:"towalletId,omitempty" bson:"towalletId,omitempty" validate:"required"`
	TransactionAmount *int64              `json:"transactionAmount,omitempty" bson:"transactionAmount,omitempty" validate:"required"`
}
