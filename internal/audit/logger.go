package audit

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/lebarbier/lebarbier-api/internal/models"
)

// Store persists events as audit_logs rows.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Name() string { return "audit_log" }

func (s *Store) Handle(ctx context.Context, ev Event) error {
	var meta string
	if ev.Metadata != nil {
		b, err := json.Marshal(ev.Metadata)
		if err != nil {
			return errors.Wrap(err, "marshal audit metadata")
		}
		meta = string(b)
	}

	row := models.AuditLog{
		UserID:   ev.UserID,
		Action:   ev.Action,
		Entity:   ev.Entity,
		EntityID: ev.EntityID,
		Metadata: meta,
	}

	return errors.Wrap(s.db.WithContext(ctx).Create(&row).Error, "insert audit log")
}
