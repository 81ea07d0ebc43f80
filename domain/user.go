package domain

import (
	"time"

	"gorm.io/gorm"
)

// User is an operator account for the admin API.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	FullName  string         `gorm:"column:full_name;not null" json:"full_name"`
	Email     string         `gorm:"column:email;unique;not null" json:"email"`
	Password  string         `gorm:"column:password;not null" json:"-"`
	Role      string         `gorm:"column:role;default:operator" json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}
