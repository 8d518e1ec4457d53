package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Role struct {
	Base   `bson:",inline"`
	Name   string `json:"name,omitempty" bson:"name,omitempty" validate:"required"`
	Code   string `json:"code,omitempty" bson:"code,omitempty" validate:"required"`
	Weight *int64 `json:"weight,omitempty" bson:"weight,omitempty" validate:"required"`
}

type ProjectRoute struct {
	Base      `bson:",inline"`
	RouteName string `json:"route_name,omitempty" bson:"route_name,omitempty" validate:"required"`
	Method    string `json:"method,omitempty" bson:"method,omitempty" validate:"required,oneof=GET POST PUT PATCH DELETE"`
	URI       string `json:"uri,omitempty" bson:"uri,omitempty" validate:"required"`
}

type RouteRole struct {
	Base    `bson:",inline"`
	RouteID *primitive.ObjectID `json:"routeId,omitempty" bson:"routeId,omitempty" validate:"required"`
	RoleID  *primitive.ObjectID `json:"roleId,omitempty" bson:"roleId,omitempty" validate:"required"`
}

type UserRole struct {
	Base   `bson:",inline"`
	UserID *primitive.ObjectID `json:"userId,omitempty" bson:"userId,omitempty" validate:"required"`
	RoleID *primitive.ObjectID `json:"roleId,omitempty" bson:"roleId,omitempty" validate:"required"`
}
