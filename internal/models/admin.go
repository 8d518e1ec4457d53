package models

type Admin struct {
	Base     `bson:",inline"`
	Name     string `json:"name,omitempty" bson:"name,omitempty"`
	Email    string `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	MobileNo string `json:"mobileNo,omitempty" bson:"mobileNo,omitempty"`
}
