package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Appointment struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	UserID uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	User   *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user,omitempty"`

	EmployeeID uuid.UUID `gorm:"type:uuid;index;not null" json:"employee_id"`
	Employee   *Employee `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"employee,omitempty"`

	ServiceID uuid.UUID `gorm:"type:uuid;not null" json:"service_id"`
	Service   *Service  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"service,omitempty"`

	Date    time.Time `gorm:"not null;index" json:"date"`
	EndTime time.Time `gorm:"not null" json:"end_time"`

	Status string `gorm:"size:20;not null;default:'PENDING';index" json:"status"`

	ServicePrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"service_price"`
	TravelFee    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"travel_fee"`
	TotalPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`

	Location      string   `gorm:"size:10;not null;default:'SALON'" json:"location"`
	CustomAddress string   `gorm:"size:255" json:"custom_address,omitempty"`
	Lat           *float64 `json:"lat,omitempty"`
	Lng           *float64 `json:"lng,omitempty"`

	Notes              string     `gorm:"size:500" json:"notes"`
	CancelledAt        *time.Time `json:"cancelled_at"`
	CancellationReason string     `gorm:"size:255" json:"cancellation_reason,omitempty"`
	CompletedAt        *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Appointment) BeforeCreate(*gorm.DB) error {
	assignID(&a.ID)
	return nil
}
