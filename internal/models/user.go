package models

const (
	UserTypeUser  = 1
	UserTypeAdmin = 2
)

type User struct {
	Base          `bson:",inline"`
	WalletAddress string `json:"walletAddress,omitempty" bson:"walletAddress,omitempty"`
	UserType      int    `json:"userType,omitempty" bson:"userType,omitempty" validate:"omitempty,oneof=1 2"`
	Email         string `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	MobileNo      string `json:"mobileNo,omitempty" bson:"mobileNo,omitempty"`
}
