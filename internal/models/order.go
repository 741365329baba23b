package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Order struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	OrderNumber string    `gorm:"size:40;uniqueIndex;not null" json:"order_number"`
	UserID      uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`

	Items []OrderItem `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`

	Subtotal    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	ShippingFee decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"shipping_fee"`
	Discount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount"`
	Total       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`

	Status string `gorm:"size:20;not null;default:'PENDING';index" json:"status"`

	ShippingAddress string `gorm:"size:500" json:"shipping_address"`
	TrackingNumber  string `gorm:"size:100" json:"tracking_number"`
	Notes           string `gorm:"size:500" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	assignID(&o.ID)
	return nil
}

// OrderItem keeps the unit price paid at checkout; later catalog changes
// never touch it.
type OrderItem struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	OrderID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"order_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;index;not null" json:"product_id"`
	ProductName string          `gorm:"size:150" json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Total       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}
