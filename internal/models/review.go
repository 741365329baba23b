package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is a client's rating of a completed appointment. It stays hidden
// from the public until an admin approves it.
type Review struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	UserID uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	User   *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user,omitempty"`

	AppointmentID uuid.UUID    `gorm:"type:uuid;uniqueIndex;not null" json:"appointment_id"`
	Appointment   *Appointment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"appointment,omitempty"`

	EmployeeID uuid.UUID `gorm:"type:uuid;index;not null" json:"employee_id"`
	Employee   *Employee `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"employee,omitempty"`

	ServiceRating  int    `gorm:"not null;check:service_rating BETWEEN 1 AND 5" json:"service_rating"`
	EmployeeRating int    `gorm:"not null;check:employee_rating BETWEEN 1 AND 5" json:"employee_rating"`
	Comment        string `gorm:"size:1000" json:"comment"`

	IsApproved  bool       `gorm:"not null;default:false;index" json:"is_approved"`
	Response    string     `gorm:"size:1000" json:"response,omitempty"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Review) BeforeCreate(*gorm.DB) error {
	assignID(&r.ID)
	return nil
}
