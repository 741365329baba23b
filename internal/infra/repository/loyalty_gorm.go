package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/lebarbier/lebarbier-api/internal/domain/loyalty"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/models"
	"github.com/lebarbier/lebarbier-api/internal/pagination"
)

type LoyaltyGormRepository struct {
	db *gorm.DB
}

func NewLoyaltyGormRepository(db *gorm.DB) *LoyaltyGormRepository {
	return &LoyaltyGormRepository{db: db}
}

func (r *LoyaltyGormRepository) WithTx(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&LoyaltyGormRepository{db: tx})
	})
}

func (r *LoyaltyGormRepository) LockUser(ctx context.Context, userID uuid.UUID) error {
	var u models.User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&u, "id = ?", userID).Error

	return notFound(err, "user_not_found", "Utilisateur introuvable.")
}

func (r *LoyaltyGormRepository) Totals(
	ctx context.Context,
	userID uuid.UUID,
) ([]domain.TypeTotal, error) {

	var totals []domain.TypeTotal
	if err := r.db.WithContext(ctx).
		Model(&models.LoyaltyTransaction{}).
		Select("type, COALESCE(SUM(points), 0) AS points, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("type").
		Scan(&totals).Error; err != nil {
		return nil, errors.Wrap(err, "loyalty totals")
	}

	return totals, nil
}

func (r *LoyaltyGormRepository) Append(
	ctx context.Context,
	tx *models.LoyaltyTransaction,
) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *LoyaltyGormRepository) History(
	ctx context.Context,
	userID uuid.UUID,
	p pagination.Params,
) ([]models.LoyaltyTransaction, int64, error) {

	q := r.db.WithContext(ctx).
		Model(&models.LoyaltyTransaction{}).
		Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count loyalty transactions")
	}

	var txs []models.LoyaltyTransaction
	if err := page(r.db.WithContext(ctx), p).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&txs).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list loyalty transactions")
	}

	return txs, total, nil
}

var _ domain.Repository = (*LoyaltyGormRepository)(nil)

// --------------------------------------------------
// Reward catalog
// --------------------------------------------------

type LoyaltyRewardGormRepository struct {
	db *gorm.DB
}

func NewLoyaltyRewardGormRepository(db *gorm.DB) *LoyaltyRewardGormRepository {
	return &LoyaltyRewardGormRepository{db: db}
}

func (r *LoyaltyRewardGormRepository) Create(ctx context.Context, rw *models.LoyaltyReward) error {
	return r.db.WithContext(ctx).Create(rw).Error
}

func (r *LoyaltyRewardGormRepository) Update(ctx context.Context, rw *models.LoyaltyReward) error {
	return r.db.WithContext(ctx).Save(rw).Error
}

func (r *LoyaltyRewardGormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.LoyaltyReward{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete reward")
	}
	if res.RowsAffected == 0 {
		return httperr.NotFoundError("reward_not_found", "Récompense introuvable.")
	}
	return nil
}

func (r *LoyaltyRewardGormRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.LoyaltyReward, error) {
	var rw models.LoyaltyReward
	if err := r.db.WithContext(ctx).First(&rw, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "reward_not_found", "Récompense introuvable.")
	}
	return &rw, nil
}

func (r *LoyaltyRewardGormRepository) List(
	ctx context.Context,
	f domain.RewardFilter,
) ([]models.LoyaltyReward, int64, error) {

	sql, args, err := f.Where()
	if err != nil {
		return nil, 0, errors.Wrap(err, "build reward filter")
	}

	var total int64
	if err := where(r.db.WithContext(ctx).Model(&models.LoyaltyReward{}), sql, args).
		Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count rewards")
	}

	var rewards []models.LoyaltyReward
	if err := page(where(r.db.WithContext(ctx), sql, args), f.Params).
		Order("points_cost ASC, name ASC").
		Find(&rewards).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list rewards")
	}

	return rewards, total, nil
}

var _ domain.RewardRepository = (*LoyaltyRewardGormRepository)(nil)
