package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LoyaltyTransaction rows are append-only. Points is always a positive
// magnitude; Type decides the sign.
type LoyaltyTransaction struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	UserID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	Points    int        `gorm:"not null;check:points > 0" json:"points"`
	Type      string     `gorm:"size:10;not null" json:"type"`
	Reason    string     `gorm:"size:255" json:"reason,omitempty"`
	Reference string     `gorm:"size:100" json:"reference,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (t *LoyaltyTransaction) BeforeCreate(*gorm.DB) error {
	assignID(&t.ID)
	return nil
}

// LoyaltyReward is a catalog entry members exchange points for. Tier is the
// minimum membership tier allowed to claim it.
type LoyaltyReward struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Tier        string           `gorm:"size:10;not null;index" json:"tier"`
	Name        string           `gorm:"size:100;not null" json:"name"`
	Description string           `gorm:"size:500;not null" json:"description"`
	PointsCost  int              `gorm:"not null;check:points_cost > 0" json:"points_cost"`
	Discount    *decimal.Decimal `gorm:"type:numeric(5,2)" json:"discount,omitempty"`
	IsActive    bool             `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *LoyaltyReward) BeforeCreate(*gorm.DB) error {
	assignID(&r.ID)
	return nil
}
