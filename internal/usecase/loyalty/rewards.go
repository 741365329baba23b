package loyalty

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lebarbier/lebarbier-api/internal/audit"
	"github.com/lebarbier/lebarbier-api/internal/authz"
	domain "github.com/lebarbier/lebarbier-api/internal/domain/loyalty"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/models"
	"github.com/lebarbier/lebarbier-api/internal/pagination"
)

var hundred = decimal.NewFromInt(100)

type RewardPatch struct {
	Tier        *string
	Name        *string
	Description *string
	PointsCost  *int
	// Discount is a percentage of the bill.
	Discount *decimal.Decimal
	IsActive *bool
}

type RewardList struct {
	Rewards    []models.LoyaltyReward `json:"rewards"`
	Pagination pagination.Meta        `json:"pagination"`
}

type Rewards struct {
	rewards domain.RewardRepository
	ledger  domain.Repository
	audit   audit.Publisher
}

func NewRewards(rewards domain.RewardRepository, ledger domain.Repository, audit audit.Publisher) *Rewards {
	return &Rewards{rewards: rewards, ledger: ledger, audit: audit}
}

// List shows active rewards. Admins may ask for retired ones too.
func (uc *Rewards) List(ctx context.Context, who *authz.Principal, f domain.RewardFilter) (*RewardList, error) {
	f.IncludeInactive = f.IncludeInactive && who.IsAdmin()
	f.Params = f.Params.Normalize(pagination.DefaultLimit)

	if err := f.Validate(); err != nil {
		return nil, err
	}

	rewards, total, err := uc.rewards.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if rewards == nil {
		rewards = []models.LoyaltyReward{}
	}

	return &RewardList{Rewards: rewards, Pagination: pagination.NewMeta(f.Params, total)}, nil
}

func (uc *Rewards) Create(ctx context.Context, p RewardPatch) (*models.LoyaltyReward, error) {
	if p.Tier == nil || p.Name == nil || p.Description == nil || p.PointsCost == nil {
		return nil, httperr.Validation("missing_fields", "Niveau, nom, description et coût sont requis.")
	}

	rw := &models.LoyaltyReward{IsActive: true}
	if err := applyReward(rw, p); err != nil {
		return nil, err
	}

	if err := uc.rewards.Create(ctx, rw); err != nil {
		return nil, err
	}
	return rw, nil
}

func (uc *Rewards) Update(ctx context.Context, id uuid.UUID, p RewardPatch) (*models.LoyaltyReward, error) {
	rw, err := uc.rewards.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := applyReward(rw, p); err != nil {
		return nil, err
	}

	if err := uc.rewards.Update(ctx, rw); err != nil {
		return nil, err
	}
	return rw, nil
}

func (uc *Rewards) Delete(ctx context.Context, id uuid.UUID) error {
	return uc.rewards.Delete(ctx, id)
}

// Claim exchanges the caller's points for a catalog reward. The debit is
// an ordinary REDEEM entry referencing the reward.
func (uc *Rewards) Claim(ctx context.Context, who *authz.Principal, id uuid.UUID) (*RedeemResult, error) {
	rw, err := uc.rewards.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tx := &models.LoyaltyTransaction{
		UserID:    who.UserID,
		Points:    rw.PointsCost,
		Type:      string(domain.TypeRedeem),
		Reason:    "Récompense: " + rw.Name,
		Reference: "reward:" + rw.ID.String(),
	}

	res, err := debit(ctx, uc.ledger, tx, func(s domain.Summary) error {
		return domain.CheckClaim(rw, s)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &who.UserID,
		Action:   audit.ActionRewardClaimed,
		Entity:   audit.EntityReward,
		EntityID: &rw.ID,
		Metadata: map[string]any{"points": rw.PointsCost, "balance": res.Balance, "transaction_id": res.Transaction.ID},
	})

	return res, nil
}

func applyReward(dst *models.LoyaltyReward, p RewardPatch) error {
	if p.Tier != nil {
		tier := domain.Tier(strings.ToUpper(strings.TrimSpace(*p.Tier)))
		if !tier.Valid() {
			return httperr.Validation("invalid_tier", "Niveau de fidélité invalide.")
		}
		dst.Tier = string(tier)
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return httperr.Validation("name_required", "Le nom de la récompense est requis.")
		}
		dst.Name = name
	}
	if p.Description != nil {
		dst.Description = strings.TrimSpace(*p.Description)
	}
	if p.PointsCost != nil {
		if *p.PointsCost <= 0 {
			return httperr.Validation("invalid_points", "Le coût en points doit être positif.")
		}
		dst.PointsCost = *p.PointsCost
	}
	if p.Discount != nil {
		if !p.Discount.IsPositive() || p.Discount.GreaterThan(hundred) {
			return httperr.Validation("invalid_discount", "La remise doit être comprise entre 0 et 100 %.")
		}
		d := p.Discount.Round(2)
		dst.Discount = &d
	}
	if p.IsActive != nil {
		dst.IsActive = *p.IsActive
	}
	return nil
}
