package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type ActivityLog struct {
	Base         `bson:",inline"`
	RefID        *primitive.ObjectID `json:"refId,omitempty" bson:"refId,omitempty"`
	Route        string              `json:"route,omitempty" bson:"route,omitempty"`
	Method       string              `json:"method,omitempty" bson:"method,omitempty"`
	ActivityName string              `json:"activityName,omitempty" bson:"activityName,omitempty"`
	HTTPStatus   int                 `json:"httpStatus,omitempty" bson:"httpStatus,omitempty"`
	IPAddress    string              `json:"ipAddress,omitempty" bson:"ipAddress,omitempty"`
	UserAgent    string              `json:"userAgent,omitempty" bson:"userAgent,omitempty"`
	RequestID    string              `json:"requestId,omitempty" bson:"requestId,omitempty"`
	DurationMS   int64               `json:"durationMs,omitempty" bson:"durationMs,omitempty"`
}
