package loyalty

import (
	"context"

	"github.com/google/uuid"

	"github.com/lebarbier/lebarbier-api/internal/models"
	"github.com/lebarbier/lebarbier-api/internal/pagination"
)

type Repository interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error

	// LockUser row-locks the member so balance reads and appends of
	// concurrent redemptions serialize.
	LockUser(ctx context.Context, userID uuid.UUID) error

	Totals(ctx context.Context, userID uuid.UUID) ([]TypeTotal, error)
	Append(ctx context.Context, tx *models.LoyaltyTransaction) error
	History(ctx context.Context, userID uuid.UUID, p pagination.Params) ([]models.LoyaltyTransaction, int64, error)
}
