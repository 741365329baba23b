package catalog

import (
	"context"
	"strings"
	"unicode"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/models"
	"github.com/lebarbier/lebarbier-api/internal/pagination"
	"github.com/lebarbier/lebarbier-api/internal/validators"
)

type ProductFilter struct {
	Category        string `validate:"omitempty,max=50"`
	Query           string `validate:"omitempty,max=100"`
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	Sort            string `validate:"omitempty,oneof=newest name price_asc price_desc"`
	IncludeInactive bool

	pagination.Params
}

func (f ProductFilter) Validate() error {
	if err := validators.Struct(f); err != nil {
		return err
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return httperr.Validation("invalid_price_range", "Le prix minimum dépasse le prix maximum.")
	}
	return nil
}

func (f ProductFilter) Where() (string, []any, error) {
	conds := sq.And{}

	if !f.IncludeInactive {
		conds = append(conds, sq.Eq{"is_active": true})
	}
	if c := strings.ToLower(strings.TrimSpace(f.Category)); c != "" {
		conds = append(conds, sq.Eq{"LOWER(category)": c})
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + q + "%"
		conds = append(conds, sq.Or{
			sq.ILike{"name": like},
			sq.ILike{"description": like},
		})
	}
	if f.MinPrice != nil {
		conds = append(conds, sq.GtOrEq{"price": *f.MinPrice})
	}
	if f.MaxPrice != nil {
		conds = append(conds, sq.LtOrEq{"price": *f.MaxPrice})
	}

	return conds.ToSql()
}

func (f ProductFilter) OrderBy() string {
	switch f.Sort {
	case "name":
		return "name ASC"
	case "price_asc":
		return "price ASC"
	case "price_desc":
		return "price DESC"
	default:
		return "created_at DESC"
	}
}

type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, f ProductFilter) ([]models.Product, int64, error)
}

// ProductInvalidator drops cached product entries after a write that
// bypassed ProductRepository, such as stock moves inside an order.
type ProductInvalidator interface {
	Invalidate(ctx context.Context, ids ...uuid.UUID)
}

type NopInvalidator struct{}

func (NopInvalidator) Invalidate(context.Context, ...uuid.UUID) {}

type ServiceRepository interface {
	Create(ctx context.Context, s *models.Service) error
	Update(ctx context.Context, s *models.Service) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Service, error)
	List(ctx context.Context, includeInactive bool) ([]models.Service, error)
}

type EmployeeRepository interface {
	Create(ctx context.Context, e *models.Employee) error
	Update(ctx context.Context, e *models.Employee) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Employee, error)
	List(ctx context.Context, includeInactive bool) ([]models.Employee, error)
}

// Slugify lowercases s, strips accents and joins words with dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false

	for _, r := range norm.NFD.String(strings.ToLower(strings.TrimSpace(s))) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
