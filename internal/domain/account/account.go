package account

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/models"
	"github.com/lebarbier/lebarbier-api/internal/pagination"
	"github.com/lebarbier/lebarbier-api/internal/validators"
)

type Repository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role string) error
	Update(ctx context.Context, u *models.User) error
}

// Directory is the admin view over all accounts.
type Directory interface {
	List(ctx context.Context, f UserFilter) ([]models.User, int64, error)
	CountByRole(ctx context.Context) (map[string]int64, error)
}

type UserFilter struct {
	Role   string `validate:"omitempty,oneof=CLIENT EMPLOYEE ADMIN"`
	Search string `validate:"omitempty,max=100"`

	pagination.Params
}

func (f UserFilter) Validate() error {
	return validators.Struct(f)
}

func (f UserFilter) Where() (string, []any, error) {
	conds := sq.And{}

	if f.Role != "" {
		conds = append(conds, sq.Eq{"role": f.Role})
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		like := "%" + q + "%"
		conds = append(conds, sq.Or{
			sq.ILike{"first_name": like},
			sq.ILike{"last_name": like},
			sq.ILike{"email": like},
			sq.ILike{"phone": like},
		})
	}

	return conds.ToSql()
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", httperr.Unexpected(err)
	}
	return string(hash), nil
}

// CheckPassword reports a mismatch with the same error as an unknown email.
func CheckPassword(hash, password string) error {
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}

var ErrInvalidCredentials = httperr.Unauthenticated("invalid_credentials", "Email ou mot de passe incorrect.")
