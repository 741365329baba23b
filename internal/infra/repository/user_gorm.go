package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/lebarbier/lebarbier-api/internal/domain/account"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/models"
)

type UserGormRepository struct {
	db *gorm.DB
}

func NewUserGormRepository(db *gorm.DB) *UserGormRepository {
	return &UserGormRepository{db: db}
}

func (r *UserGormRepository) Create(ctx context.Context, u *models.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if httperr.IsUniqueViolation(err) {
		return &httperr.AppError{
			Kind:    httperr.KindConflict,
			Code:    "email_taken",
			Message: "Un compte existe déjà avec cet email.",
			Err:     err,
		}
	}
	return err
}

func (r *UserGormRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "user_not_found", "Utilisateur introuvable.")
	}
	return &u, nil
}

func (r *UserGormRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, notFound(err, "user_not_found", "Utilisateur introuvable.")
	}
	return &u, nil
}

func (r *UserGormRepository) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return errors.Wrap(res.Error, "update role")
	}
	if res.RowsAffected == 0 {
		return httperr.NotFoundError("user_not_found", "Utilisateur introuvable.")
	}
	return nil
}

// Update writes the editable profile columns only. Email, role and
// password have their own paths.
func (r *UserGormRepository) Update(ctx context.Context, u *models.User) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", u.ID).
		Updates(map[string]any{
			"first_name": u.FirstName,
			"last_name":  u.LastName,
			"phone":      u.Phone,
		})
	if res.Error != nil {
		return errors.Wrap(res.Error, "update user")
	}
	if res.RowsAffected == 0 {
		return httperr.NotFoundError("user_not_found", "Utilisateur introuvable.")
	}
	return nil
}

func (r *UserGormRepository) List(
	ctx context.Context,
	f account.UserFilter,
) ([]models.User, int64, error) {

	sql, args, err := f.Where()
	if err != nil {
		return nil, 0, errors.Wrap(err, "build user filter")
	}

	var total int64
	if err := where(r.db.WithContext(ctx).Model(&models.User{}), sql, args).
		Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count users")
	}

	var users []models.User
	if err := page(where(r.db.WithContext(ctx), sql, args), f.Params).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list users")
	}

	return users, total, nil
}

func (r *UserGormRepository) CountByRole(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Role  string
		Count int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "count users by role")
	}

	out := map[string]int64{}
	for _, row := range rows {
		out[row.Role] = row.Count
	}
	return out, nil
}

var (
	_ account.Repository = (*UserGormRepository)(nil)
	_ account.Directory  = (*UserGormRepository)(nil)
)
