package appointment

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lebarbier/lebarbier-api/internal/config"
	domain "github.com/lebarbier/lebarbier-api/internal/domain/appointment"
	"github.com/lebarbier/lebarbier-api/internal/timezone"
)

// Settings carries the salon rules every appointment use case shares.
type Settings struct {
	Location      *time.Location
	Hours         domain.WorkingHours
	HomeTravelFee decimal.Decimal
	Now           func() time.Time
}

func NewSettings(cfg *config.Config) Settings {
	return Settings{
		Location: timezone.Location(cfg.Salon.Timezone),
		Hours: domain.WorkingHours{
			StartHour:   cfg.Salon.WorkStartHour,
			EndHour:     cfg.Salon.WorkEndHour,
			SlotMinutes: cfg.Salon.SlotMinutes,
		},
		HomeTravelFee: decimal.NewFromInt(cfg.Salon.HomeTravelFee),
		Now:           time.Now,
	}
}

func (s Settings) now() time.Time {
	if s.Now == nil {
		return time.Now().In(s.Location)
	}
	return s.Now().In(s.Location)
}
