package loyalty

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/models"
	"github.com/lebarbier/lebarbier-api/internal/pagination"
	"github.com/lebarbier/lebarbier-api/internal/validators"
)

func (t Tier) Valid() bool {
	return t == TierBronze || t == TierSilver || t == TierGold
}

func (t Tier) rank() int {
	switch t {
	case TierGold:
		return 2
	case TierSilver:
		return 1
	default:
		return 0
	}
}

// Reaches reports whether a member of tier t may claim rewards of min.
func (t Tier) Reaches(min Tier) bool {
	return t.rank() >= min.rank()
}

type RewardFilter struct {
	Tier            string `validate:"omitempty,oneof=BRONZE SILVER GOLD"`
	IncludeInactive bool

	pagination.Params
}

func (f RewardFilter) Validate() error {
	return validators.Struct(f)
}

func (f RewardFilter) Where() (string, []any, error) {
	conds := sq.And{}

	if !f.IncludeInactive {
		conds = append(conds, sq.Eq{"is_active": true})
	}
	if f.Tier != "" {
		conds = append(conds, sq.Eq{"tier": f.Tier})
	}

	return conds.ToSql()
}

// CheckClaim decides whether a member may exchange points for reward.
func CheckClaim(reward *models.LoyaltyReward, s Summary) error {
	if !reward.IsActive {
		return httperr.Conflict("reward_inactive", "Cette récompense n'est plus disponible.")
	}
	if !TierFor(s.LifetimeEarned).Tier.Reaches(Tier(reward.Tier)) {
		return httperr.Forbidden("tier_too_low",
			fmt.Sprintf("Récompense réservée au niveau %s.", reward.Tier))
	}
	return CheckRedeem(s.Balance, reward.PointsCost)
}

type RewardRepository interface {
	Create(ctx context.Context, r *models.LoyaltyReward) error
	Update(ctx context.Context, r *models.LoyaltyReward) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.LoyaltyReward, error)
	List(ctx context.Context, f RewardFilter) ([]models.LoyaltyReward, int64, error)
}
