package db

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/lebarbier/lebarbier-api/internal/models"
)

// Two live appointments for the same employee may not overlap. The
// application checks first under a row lock; this constraint is the last
// line when two transactions race past the check.
const appointmentOverlapConstraint = `
DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_constraint WHERE conname = 'appointments_no_overlap'
	) THEN
		ALTER TABLE appointments
			ADD CONSTRAINT appointments_no_overlap
			EXCLUDE USING gist (
				employee_id WITH =,
				tstzrange(date, end_time, '[)') WITH &&
			)
			WHERE (status IN ('CONFIRMED', 'IN_PROGRESS'));
	END IF;
END
$$;`

const appointmentWindowCheck = `
DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_constraint WHERE conname = 'appointments_window_check'
	) THEN
		ALTER TABLE appointments
			ADD CONSTRAINT appointments_window_check CHECK (date < end_time);
	END IF;
END
$$;`

func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		return errors.Wrap(err, "enable btree_gist")
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Employee{},
		&models.Service{},
		&models.Appointment{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.LoyaltyTransaction{},
		&models.LoyaltyReward{},
		&models.Review{},
		&models.AuditLog{},
	); err != nil {
		return errors.Wrap(err, "auto migrate")
	}

	for name, stmt := range map[string]string{
		"appointments_window_check": appointmentWindowCheck,
		"appointments_no_overlap":   appointmentOverlapConstraint,
	} {
		if err := db.Exec(stmt).Error; err != nil {
			return errors.Wrapf(err, "add constraint %s", name)
		}
	}

	return nil
}
