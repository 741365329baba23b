package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lebarbier/lebarbier-api/internal/authz"
	domain "github.com/lebarbier/lebarbier-api/internal/domain/loyalty"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/httpresp"
	"github.com/lebarbier/lebarbier-api/internal/models"
	"github.com/lebarbier/lebarbier-api/internal/pagination"
	loyaltyuc "github.com/lebarbier/lebarbier-api/internal/usecase/loyalty"
)

type pointsReader interface {
	Execute(ctx context.Context, who *authz.Principal, target *uuid.UUID, p pagination.Params) (*loyaltyuc.Account, error)
}

type pointsAwarder interface {
	Execute(ctx context.Context, who *authz.Principal, in loyaltyuc.AwardInput) (*models.LoyaltyTransaction, error)
}

type pointsRedeemer interface {
	Execute(ctx context.Context, who *authz.Principal, in loyaltyuc.RedeemInput) (*loyaltyuc.RedeemResult, error)
}

type rewardCatalog interface {
	List(ctx context.Context, who *authz.Principal, f domain.RewardFilter) (*loyaltyuc.RewardList, error)
	Create(ctx context.Context, p loyaltyuc.RewardPatch) (*models.LoyaltyReward, error)
	Update(ctx context.Context, id uuid.UUID, p loyaltyuc.RewardPatch) (*models.LoyaltyReward, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Claim(ctx context.Context, who *authz.Principal, id uuid.UUID) (*loyaltyuc.RedeemResult, error)
}

type LoyaltyHandler struct {
	get     pointsReader
	award   pointsAwarder
	redeem  pointsRedeemer
	rewards rewardCatalog
}

func NewLoyaltyHandler(
	get *loyaltyuc.GetPoints,
	award *loyaltyuc.AwardPoints,
	redeem *loyaltyuc.RedeemPoints,
	rewards *loyaltyuc.Rewards,
) *LoyaltyHandler {
	return &LoyaltyHandler{get: get, award: award, redeem: redeem, rewards: rewards}
}

// --------- Requests ---------

type PointsQuery struct {
	UserID string `form:"userId" binding:"omitempty,uuid"`
	pagination.Params
}

type AwardPointsRequest struct {
	UserID    uuid.UUID  `json:"user_id" binding:"required"`
	Points    int        `json:"points" binding:"required,gt=0"`
	Type      string     `json:"type" binding:"omitempty,oneof=EARN BONUS"`
	Reason    string     `json:"reason" binding:"max=255"`
	Reference string     `json:"reference" binding:"max=100"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type RedeemPointsRequest struct {
	Points    int    `json:"points" binding:"required,gt=0"`
	Reason    string `json:"reason" binding:"max=255"`
	Reference string `json:"reference" binding:"max=100"`
}

type ListRewardsQuery struct {
	Tier            string `form:"tier" binding:"omitempty,oneof=BRONZE SILVER GOLD"`
	IncludeInactive bool   `form:"includeInactive"`
	pagination.Params
}

type RewardRequest struct {
	Tier        *string          `json:"tier,omitempty" binding:"omitempty,oneof=BRONZE SILVER GOLD"`
	Name        *string          `json:"name,omitempty" binding:"omitempty,max=100"`
	Description *string          `json:"description,omitempty" binding:"omitempty,max=500"`
	PointsCost  *int             `json:"points_cost,omitempty" binding:"omitempty,gt=0"`
	Discount    *decimal.Decimal `json:"discount,omitempty"`
	Active      *bool            `json:"active,omitempty"`
}

func (r RewardRequest) patch() loyaltyuc.RewardPatch {
	return loyaltyuc.RewardPatch{
		Tier:        r.Tier,
		Name:        r.Name,
		Description: r.Description,
		PointsCost:  r.PointsCost,
		Discount:    r.Discount,
		IsActive:    r.Active,
	}
}

// --------- Handlers ---------

func (h *LoyaltyHandler) Get(c *gin.Context) {
	var q PointsQuery
	if !bindQuery(c, &q) {
		return
	}

	var target *uuid.UUID
	if q.UserID != "" {
		id := uuid.MustParse(q.UserID)
		target = &id
	}

	acct, err := h.get.Execute(c.Request.Context(), principal(c), target, q.Params)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, acct)
}

func (h *LoyaltyHandler) Award(c *gin.Context) {
	var req AwardPointsRequest
	if !bindJSON(c, &req) {
		return
	}

	tx, err := h.award.Execute(c.Request.Context(), principal(c), loyaltyuc.AwardInput{
		UserID:    req.UserID,
		Points:    req.Points,
		Type:      domain.Type(req.Type),
		Reason:    req.Reason,
		Reference: req.Reference,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, "Points attribués avec succès.", tx)
}

func (h *LoyaltyHandler) Redeem(c *gin.Context) {
	var req RedeemPointsRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.redeem.Execute(c.Request.Context(), principal(c), loyaltyuc.RedeemInput{
		Points:    req.Points,
		Reason:    req.Reason,
		Reference: req.Reference,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Message(c, "Points échangés avec succès.", res)
}

// --------- Rewards ---------

func (h *LoyaltyHandler) ListRewards(c *gin.Context) {
	var q ListRewardsQuery
	if !bindQuery(c, &q) {
		return
	}

	out, err := h.rewards.List(c.Request.Context(), principal(c), domain.RewardFilter{
		Tier:            q.Tier,
		IncludeInactive: q.IncludeInactive,
		Params:          q.Params,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, out)
}

func (h *LoyaltyHandler) CreateReward(c *gin.Context) {
	var req RewardRequest
	if !bindJSON(c, &req) {
		return
	}

	rw, err := h.rewards.Create(c.Request.Context(), req.patch())
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, "Récompense créée.", rw)
}

func (h *LoyaltyHandler) UpdateReward(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req RewardRequest
	if !bindJSON(c, &req) {
		return
	}

	rw, err := h.rewards.Update(c.Request.Context(), id, req.patch())
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Message(c, "Récompense mise à jour.", rw)
}

func (h *LoyaltyHandler) DeleteReward(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.rewards.Delete(c.Request.Context(), id); err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Message(c, "Récompense supprimée.", nil)
}

func (h *LoyaltyHandler) ClaimReward(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	res, err := h.rewards.Claim(c.Request.Context(), principal(c), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Message(c, "Récompense obtenue.", res)
}
