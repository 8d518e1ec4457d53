package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Base holds the identity, audit and lifecycle fields shared by every
// document. Entities embed it inline.
type Base struct {
	ID        primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	IsActive  *bool               `json:"isActive,omitempty" bson:"isActive,omitempty"`
	IsDeleted bool                `json:"isDeleted" bson:"isDeleted"`
	AddedBy   *primitive.ObjectID `json:"addedBy,omitempty" bson:"addedBy,omitempty"`
	UpdatedBy *primitive.ObjectID `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
	CreatedAt time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt" bson:"updatedAt"`
}

type Document interface {
	GetBase() *Base
}

func (b *Base) GetBase() *Base { return b }

// PrepareCreate assigns a fresh id and timestamps, and defaults isActive to
// true when the caller left it out.
func (b *Base) PrepareCreate(now time.Time) {
	b.ID = primitive.NewObjectID()
	b.CreatedAt = now
	b.UpdatedAt = now
	if b.IsActive == nil {
		active := true
		b.IsActive = &active
	}
}

func (b *Base) Active() bool {
	return b.IsActive == nil || *b.IsActive
}

// BeforeCreator is implemented by documents that must transform themselves
// before they are inserted.
type BeforeCreator interface {
	BeforeCreate() error
}

// BeforeUpdater is implemented by documents that must rewrite a $set
// document before it is applied.
type BeforeUpdater interface {
	BeforeUpdate(set bson.M) error
}

func Bool(v bool) *bool { return &v }

func Int64(v int64) *int64 { return &v }

func ObjectID(id primitive.ObjectID) *primitive.ObjectID { return &id }
