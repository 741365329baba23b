package loyalty

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lebarbier/lebarbier-api/internal/audit"
	"github.com/lebarbier/lebarbier-api/internal/authz"
	domain "github.com/lebarbier/lebarbier-api/internal/domain/loyalty"
	"github.com/lebarbier/lebarbier-api/internal/models"
	"github.com/lebarbier/lebarbier-api/internal/pagination"
)

// ======================================================
// BALANCE
// ======================================================

type Account struct {
	UserID       uuid.UUID                   `json:"user_id"`
	Balance      int64                       `json:"balance"`
	Transactions []models.LoyaltyTransaction `json:"transactions"`
	Pagination   pagination.Meta             `json:"pagination"`
	Summary      domain.Summary              `json:"summary"`
	Tier         domain.TierInfo             `json:"tier"`
}

type GetPoints struct {
	repo domain.Repository
}

func NewGetPoints(repo domain.Repository) *GetPoints {
	return &GetPoints{repo: repo}
}

// Execute returns the balance, tier and a page of history. Only admins may
// look at another member.
func (uc *GetPoints) Execute(
	ctx context.Context,
	who *authz.Principal,
	target *uuid.UUID,
	p pagination.Params,
) (*Account, error) {

	userID := who.UserID
	if target != nil && who.IsAdmin() {
		userID = *target
	}
	p = p.Normalize(pagination.DefaultLimit)

	totals, err := uc.repo.Totals(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary := domain.Fold(totals)

	txs, total, err := uc.repo.History(ctx, userID, p)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []models.LoyaltyTransaction{}
	}

	return &Account{
		UserID:       userID,
		Balance:      summary.Balance,
		Transactions: txs,
		Pagination:   pagination.NewMeta(p, total),
		Summary:      summary,
		Tier:         domain.TierFor(summary.LifetimeEarned),
	}, nil
}

// ======================================================
// AWARD
// ======================================================

type AwardInput struct {
	UserID    uuid.UUID
	Points    int
	Type      domain.Type
	Reason    string
	Reference string
	ExpiresAt *time.Time
}

type AwardPoints struct {
	repo  domain.Repository
	audit audit.Publisher
}

func NewAwardPoints(repo domain.Repository, audit audit.Publisher) *AwardPoints {
	return &AwardPoints{repo: repo, audit: audit}
}

func (uc *AwardPoints) Execute(
	ctx context.Context,
	who *authz.Principal,
	in AwardInput,
) (*models.LoyaltyTransaction, error) {

	if in.Type == "" {
		in.Type = domain.TypeEarn
	}
	if err := domain.ValidateAward(in.Points, in.Type); err != nil {
		return nil, err
	}

	tx := &models.LoyaltyTransaction{
		UserID:    in.UserID,
		Points:    in.Points,
		Type:      string(in.Type),
		Reason:    orDefault(in.Reason, "Points attribués"),
		Reference: strings.TrimSpace(in.Reference),
		ExpiresAt: in.ExpiresAt,
	}

	err := uc.repo.WithTx(ctx, func(repo domain.Repository) error {
		if err := repo.LockUser(ctx, in.UserID); err != nil {
			return err
		}
		return repo.Append(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.UserID,
		Action:   audit.ActionPointsAwarded,
		Entity:   audit.EntityLoyalty,
		EntityID: &tx.ID,
		Metadata: map[string]any{"points": tx.Points, "type": tx.Type, "by": who.UserID},
	})

	return tx, nil
}

// ======================================================
// REDEEM
// ======================================================

type RedeemInput struct {
	Points    int
	Reason    string
	Reference string
}

type RedeemResult struct {
	Transaction *models.LoyaltyTransaction `json:"transaction"`
	Balance     int64                      `json:"balance"`
}

type RedeemPoints struct {
	repo  domain.Repository
	audit audit.Publisher
}

func NewRedeemPoints(repo domain.Repository, audit audit.Publisher) *RedeemPoints {
	return &RedeemPoints{repo: repo, audit: audit}
}

// Execute spends points from the caller's own balance. Two concurrent
// redemptions cannot both pass the balance check.
func (uc *RedeemPoints) Execute(
	ctx context.Context,
	who *authz.Principal,
	in RedeemInput,
) (*RedeemResult, error) {

	tx := &models.LoyaltyTransaction{
		UserID:    who.UserID,
		Points:    in.Points,
		Type:      string(domain.TypeRedeem),
		Reason:    orDefault(in.Reason, "Échange de points"),
		Reference: strings.TrimSpace(in.Reference),
	}

	res, err := debit(ctx, uc.repo, tx, func(s domain.Summary) error {
		return domain.CheckRedeem(s.Balance, in.Points)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &who.UserID,
		Action:   audit.ActionPointsRedeemed,
		Entity:   audit.EntityLoyalty,
		EntityID: &res.Transaction.ID,
		Metadata: map[string]any{"points": in.Points, "balance": res.Balance},
	})

	return res, nil
}

// debit appends tx once check accepts the member's summary. The summary is
// read and the debit appended while the member row is locked.
func debit(
	ctx context.Context,
	ledger domain.Repository,
	tx *models.LoyaltyTransaction,
	check func(domain.Summary) error,
) (*RedeemResult, error) {

	res := &RedeemResult{}

	err := ledger.WithTx(ctx, func(repo domain.Repository) error {
		if err := repo.LockUser(ctx, tx.UserID); err != nil {
			return err
		}

		totals, err := repo.Totals(ctx, tx.UserID)
		if err != nil {
			return err
		}
		summary := domain.Fold(totals)

		if err := check(summary); err != nil {
			return err
		}
		if err := repo.Append(ctx, tx); err != nil {
			return err
		}

		res.Transaction = tx
		res.Balance = summary.Balance - int64(tx.Points)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
