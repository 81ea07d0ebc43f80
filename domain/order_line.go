package domain

import "time"

// OrderLine is one normalized sales line from the legacy system exports.
type OrderLine struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerCode string    `gorm:"column:customer_code;not null;index:ix_order_lines_customer_date" json:"customer_code"`
	ProductKey   string    `gorm:"column:product_key;not null;index" json:"product_key"`
	OrderDate    time.Time `gorm:"column:order_date;type:date;not null;index:ix_order_lines_customer_date" json:"order_date"`
	DocRef       string    `gorm:"column:doc_ref;not null" json:"doc_ref"`
	Qty          float64   `gorm:"column:qty;type:numeric;default:1" json:"qty"`
	AmountHT     float64   `gorm:"column:amount_ht;type:numeric;not null" json:"amount_ht"`
	Margin       float64   `gorm:"column:margin;type:numeric" json:"margin"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

func (OrderLine) TableName() string {
	return "order_lines"
}

// ContactEvent records an outbound contact, used for the silence window.
type ContactEvent struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerCode string    `gorm:"column:customer_code;not null;index:ix_contact_events_customer_date" json:"customer_code"`
	ContactDate  time.Time `gorm:"column:contact_date;type:date;not null;index:ix_contact_events_customer_date" json:"contact_date"`
	Channel      string    `gorm:"column:channel" json:"channel"`
	Status       string    `gorm:"column:status" json:"status"`
	CampaignID   string    `gorm:"column:campaign_id;index" json:"campaign_id,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

func (ContactEvent) TableName() string {
	return "contact_events"
}
