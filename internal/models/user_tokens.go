package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserTokens struct {
	Base             `bson:",inline"`
	UserID           *primitive.ObjectID `json:"userId,omitempty" bson:"userId,omitempty"`
	Token            string              `json:"token,omitempty" bson:"token,omitempty"`
	TokenExpiredTime *time.Time          `json:"tokenExpiredTime,omitempty" bson:"tokenExpiredTime,omitempty"`
	IsTokenExpired   bool                `json:"isTokenExpired" bson:"isTokenExpired"`
}

// MarshalJSON never exposes the bearer token itself.
func (t UserTokens) MarshalJSON() ([]byte, error) {
	type userTokens UserTokens
	out := userTokens(t)
	out.Token = ""
	return json.Marshal(out)
}

// Usable reports whether the token row still authorizes requests at now.
func (t *UserTokens) Usable(now time.Time) bool {
	if t.IsTokenExpired || t.IsDeleted || !t.Active() {
		return false
	}
	return t.TokenExpiredTime == nil || now.Before(*t.TokenExpiredTime)
}
