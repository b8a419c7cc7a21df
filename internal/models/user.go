package models

// UserModel represents an account holder.
//
// Email is stored normalized (trimmed, lowercased) and is unique across
// live rows. Password holds the bcrypt hash of the current password and
// is only ever replaced through the password-change flow. FirstName and
// LastName are never blank; registration and profile updates both
// reject empty values.
type UserModel struct {
	Base
	Email     string `json:"email"      gorm:"uniqueIndex;not null"`
	Password  string `json:"-"          gorm:"not null"`
	FirstName string `json:"first_name" gorm:"not null"`
	LastName  string `json:"last_name"  gorm:"not null"`
}

func (UserModel) TableName() string { return "users" }
