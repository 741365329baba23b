package loyalty

import (
	"fmt"

	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/models"
)

type Type string

const (
	TypeEarn   Type = "EARN"
	TypeBonus  Type = "BONUS"
	TypeRedeem Type = "REDEEM"
	TypeRefund Type = "REFUND"
	TypeExpire Type = "EXPIRE"
)

func (t Type) Valid() bool {
	switch t {
	case TypeEarn, TypeBonus, TypeRedeem, TypeRefund, TypeExpire:
		return true
	}
	return false
}

// Sign is +1 for credits and -1 for debits.
func (t Type) Sign() int {
	switch t {
	case TypeRedeem, TypeExpire:
		return -1
	default:
		return 1
	}
}

// Earned reports whether points of this type count toward the tier.
func (t Type) Earned() bool {
	return t == TypeEarn || t == TypeBonus
}

// TypeTotal is the sum and count of one transaction type for a user.
type TypeTotal struct {
	Type   Type
	Points int64
	Count  int64
}

type Summary struct {
	Balance          int64 `json:"balance"`
	TransactionCount int64 `json:"transaction_count"`
	LifetimeEarned   int64 `json:"lifetime_earned"`
}

// Fold reduces per-type totals into a balance.
func Fold(totals []TypeTotal) Summary {
	var s Summary
	for _, t := range totals {
		s.Balance += int64(t.Type.Sign()) * t.Points
		s.TransactionCount += t.Count
		if t.Type.Earned() {
			s.LifetimeEarned += t.Points
		}
	}
	return s
}

// Totals groups raw transactions by type.
func Totals(txs []models.LoyaltyTransaction) []TypeTotal {
	order := make([]Type, 0, 5)
	byType := make(map[Type]*TypeTotal, 5)

	for _, tx := range txs {
		t := Type(tx.Type)
		tot, ok := byType[t]
		if !ok {
			tot = &TypeTotal{Type: t}
			byType[t] = tot
			order = append(order, t)
		}
		tot.Points += int64(tx.Points)
		tot.Count++
	}

	out := make([]TypeTotal, 0, len(order))
	for _, t := range order {
		out = append(out, *byType[t])
	}
	return out
}

func Balance(txs []models.LoyaltyTransaction) Summary {
	return Fold(Totals(txs))
}

func ValidateAward(points int, t Type) error {
	if points <= 0 {
		return httperr.Validation("invalid_points", "Le nombre de points doit être positif.")
	}
	if t != TypeEarn && t != TypeBonus {
		return httperr.Validation("invalid_type", "Type de transaction invalide.")
	}
	return nil
}

func CheckRedeem(balance int64, points int) error {
	if points <= 0 {
		return httperr.Validation("invalid_points", "Le nombre de points doit être positif.")
	}
	if int64(points) > balance {
		return httperr.Conflict("insufficient_points",
			fmt.Sprintf("Points insuffisants (solde: %d).", balance))
	}
	return nil
}
