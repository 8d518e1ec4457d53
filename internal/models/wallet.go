package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt cost used for wallet passwords.
var PasswordCost = 8

type ResetPasswordLink struct {
	Code       string     `json:"code,omitempty" bson:"code,omitempty"`
	ExpireTime *time.Time `json:"expireTime,omitempty" bson:"expireTime,omitempty"`
}

// Wallet doubles as the login account of the admin API: walletAddress is
// the username.
type Wallet struct {
	Base              `bson:",inline"`
	UserID            *primitive.ObjectID `json:"userId,omitempty" bson:"userId,omitempty"`
	WalletAddress     string              `json:"walletAddress,omitempty" bson:"walletAddress,omitempty"`
	WalletAmount      *int64              `json:"walletAmount,omitempty" bson:"walletAmount,omitempty"`
	UserType          int                 `json:"userType,omitempty" bson:"userType,omitempty" validate:"omitempty,oneof=1 2"`
	Email             string              `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	MobileNo          string              `json:"mobileNo,omitempty" bson:"mobileNo,omitempty"`
	Password          string              `json:"password,omitempty" bson:"password,omitempty"`
	ResetPasswordLink *ResetPasswordLink  `json:"resetPasswordLink,omitempty" bson:"resetPasswordLink,omitempty"`
	LoginRetryLimit   int                 `json:"loginRetryLimit" bson:"loginRetryLimit"`
	LoginReactiveTime *time.Time          `json:"loginReactiveTime,omitempty" bson:"loginReactiveTime,omitempty"`
}

// MarshalJSON never exposes the password hash or a pending reset code.
func (w Wallet) MarshalJSON() ([]byte, error) {
	type wallet Wallet
	out := wallet(w)
	out.Password = ""
	out.ResetPasswordLink = nil
	return json.Marshal(out)
}

func (w *Wallet) BeforeCreate() error {
	if w.UserType == 0 {
		w.UserType = UserTypeUser
	}

	hashed, err := HashPassword(w.Password)
	if err != nil {
		return err
	}
	w.Password = hashed
	return nil
}

func (w *Wallet) BeforeUpdate(set bson.M) error {
	raw, ok := set["password"]
	if !ok {
		return nil
	}

	password, _ := raw.(string)
	hashed, err := HashPassword(password)
	if err != nil {
		return err
	}
	set["password"] = hashed
	return nil
}

func (w *Wallet) PasswordMatches(password string) bool {
	if w.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(w.Password), []byte(password)) == nil
}

// HashPassword bcrypts a plain password. Empty input and values that are
// already bcrypt hashes are returned unchanged.
func HashPassword(password string) (string, error) {
	if password == "" || isBcryptHash(password) {
		return password, nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func isBcryptHash(s string) bool {
	if len(s) != 60 {
		return false
	}
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
