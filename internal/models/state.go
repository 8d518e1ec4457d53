package models

type State struct {
	Base `bson:",inline"`
	Name string `json:"name,omitempty" bson:"name,omitempty"`
	Code string `json:"code,omitempty" bson:"code,omitempty"`
}
