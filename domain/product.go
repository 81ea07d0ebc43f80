package domain

import (
	"time"

	"gorm.io/datatypes"
)

// CREATE TABLE public.products (
//     product_key      TEXT PRIMARY KEY,
//     product_name     TEXT NOT NULL,
//     family           TEXT,
//     cepage           TEXT,
//     price_band       TEXT,
//     is_premium       BOOLEAN,
//     margin_pct       NUMERIC,
//     popularity       NUMERIC,
//     is_active        BOOLEAN,
//     season_tags      JSONB,
//     created_at       TIMESTAMPTZ DEFAULT NOW()
// );

type Product struct {
	ProductKey      string         `gorm:"column:product_key;primaryKey" json:"product_key"`
	ProductName     string         `gorm:"column:product_name;type:text;not null" json:"product_name"`
	Family          string         `gorm:"column:family;type:text;index" json:"family"`
	Cepage          string         `gorm:"column:cepage;type:text" json:"cepage"`
	PriceBand       string         `gorm:"column:price_band;type:text" json:"price_band"`
	IsPremium       bool           `gorm:"column:is_premium;default:false" json:"is_premium"`
	MarginPct       float64        `gorm:"column:margin_pct;type:numeric" json:"margin_pct"`
	PopularityScore float64        `gorm:"column:popularity;type:numeric;default:0" json:"popularity_score"`
	IsActive        bool           `gorm:"column:is_active;default:true;index" json:"is_active"`
	SeasonTags      datatypes.JSON `gorm:"column:season_tags;type:jsonb" json:"season_tags,omitempty"`
	CreatedAt       time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}
