package domain

import (
	"time"

	"gorm.io/gorm"
)

type Customer struct {
	CustomerCode  string         `gorm:"column:customer_code;primaryKey" json:"customer_code"`
	LastName      string         `gorm:"column:last_name" json:"last_name"`
	FirstName     string         `gorm:"column:first_name" json:"first_name"`
	Email         string         `gorm:"column:email;index" json:"email"`
	Phone         string         `gorm:"column:phone" json:"phone,omitempty"`
	PostalCode    string         `gorm:"column:postal_code" json:"postal_code,omitempty"`
	City          string         `gorm:"column:city" json:"city,omitempty"`
	Country       string         `gorm:"column:country" json:"country,omitempty"`
	IsBounced     bool           `gorm:"column:is_bounced;default:false" json:"is_bounced"`
	IsOptout      bool           `gorm:"column:is_optout;default:false" json:"is_optout"`
	IsContactable bool           `gorm:"column:is_contactable;default:true;index" json:"is_contactable"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Customer) TableName() string {
	return "customers"
}
