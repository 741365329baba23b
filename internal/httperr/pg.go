package httperr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgStringTooLong      = "22001"
	pgUniqueViolation    = "23505"
	pgCheckViolation     = "23514"
	pgExclusionViolation = "23P01"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func IsUniqueViolation(err error) bool {
	return pgCode(err) == pgUniqueViolation || errors.Is(err, gorm.ErrDuplicatedKey)
}

// IsExclusionConflict reports a violation of the appointment overlap
// exclusion constraint.
func IsExclusionConflict(err error) bool {
	return pgCode(err) == pgExclusionViolation
}

// IsValueTooLong reports a string that overflows its column.
func IsValueTooLong(err error) bool {
	return pgCode(err) == pgStringTooLong
}

func IsCheckViolation(err error) bool {
	return pgCode(err) == pgCheckViolation || errors.Is(err, gorm.ErrCheckConstraintViolated)
}

// Classify maps storage errors onto the public taxonomy. Errors that
// already are AppErrors pass through untouched.
func Classify(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFoundError("not_found", "Ressource introuvable.")
	case IsValueTooLong(err):
		return &AppError{Kind: KindValidation, Code: "value_too_long", Message: "Une valeur dépasse la longueur autorisée.", Err: err}
	case IsExclusionConflict(err):
		return &AppError{Kind: KindConflict, Code: "slot_unavailable", Message: "Ce créneau n'est plus disponible.", Err: err}
	case IsUniqueViolation(err):
		return &AppError{Kind: KindConflict, Code: "duplicate", Message: "Cette ressource existe déjà.", Err: err}
	case IsCheckViolation(err):
		return &AppError{Kind: KindConflict, Code: "constraint_violation", Message: "Opération incompatible avec l'état actuel.", Err: err}
	default:
		return Unexpected(err)
	}
}
