package loyalty

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lebarbier/lebarbier-api/internal/audit"
	"github.com/lebarbier/lebarbier-api/internal/authz"
	domain "github.com/lebarbier/lebarbier-api/internal/domain/loyalty"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/models"
	"github.com/lebarbier/lebarbier-api/internal/pagination"
)

// fakeLedger serializes WithTx on one mutex, standing in for the row lock.
type fakeLedger struct {
	txMu  sync.Mutex
	mu    sync.Mutex
	users map[uuid.UUID]bool
	rows  []models.LoyaltyTransaction
}

func newFakeLedger(users ...uuid.UUID) *fakeLedger {
	f := &fakeLedger{users: map[uuid.UUID]bool{}}
	for _, u := range users {
		f.users[u] = true
	}
	return f
}

func (f *fakeLedger) WithTx(_ context.Context, fn func(tx domain.Repository) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()

	f.mu.Lock()
	n := len(f.rows)
	f.mu.Unlock()

	if err := fn(f); err != nil {
		f.mu.Lock()
		f.rows = f.rows[:n]
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeLedger) LockUser(_ context.Context, id uuid.UUID) error {
	if !f.users[id] {
		return httperr.NotFoundError("user_not_found", "Utilisateur introuvable.")
	}
	return nil
}

func (f *fakeLedger) Totals(_ context.Context, id uuid.UUID) ([]domain.TypeTotal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var mine []models.LoyaltyTransaction
	for _, r := range f.rows {
		if r.UserID == id {
			mine = append(mine, r)
		}
	}
	return domain.Totals(mine), nil
}

func (f *fakeLedger) Append(_ context.Context, tx *models.LoyaltyTransaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx.ID = uuid.New()
	f.rows = append(f.rows, *tx)
	return nil
}

func (f *fakeLedger) History(_ context.Context, id uuid.UUID, p pagination.Params) ([]models.LoyaltyTransaction, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var mine []models.LoyaltyTransaction
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].UserID == id {
			mine = append(mine, f.rows[i])
		}
	}
	total := int64(len(mine))
	start := p.Offset()
	if start > len(mine) {
		start = len(mine)
	}
	end := start + p.Limit
	if end > len(mine) {
		end = len(mine)
	}
	return mine[start:end], total, nil
}

type nopPublisher struct{}

func (nopPublisher) Dispatch(audit.Event) {}

func TestLoyalty_Scenario(t *testing.T) {
	member := uuid.New()
	ledger := newFakeLedger(member)
	ctx := context.Background()

	admin := &authz.Principal{UserID: uuid.New(), Role: authz.RoleAdmin}
	me := &authz.Principal{UserID: member, Role: authz.RoleClient}

	award := NewAwardPoints(ledger, nopPublisher{})
	redeem := NewRedeemPoints(ledger, nopPublisher{})
	get := NewGetPoints(ledger)

	_, err := award.Execute(ctx, admin, AwardInput{UserID: member, Points: 100})
	require.NoError(t, err)
	_, err = award.Execute(ctx, admin, AwardInput{UserID: member, Points: 20, Type: domain.TypeBonus})
	require.NoError(t, err)

	res, err := redeem.Execute(ctx, me, RedeemInput{Points: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(70), res.Balance)
	assert.Equal(t, "Échange de points", res.Transaction.Reason)

	_, err = redeem.Execute(ctx, me, RedeemInput{Points: 100})
	require.Error(t, err)
	assert.True(t, httperr.IsCode(err, "insufficient_points"))

	acct, err := get.Execute(ctx, me, nil, pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, int64(70), acct.Balance)
	assert.Equal(t, int64(3), acct.Summary.TransactionCount)
	assert.Equal(t, int64(120), acct.Summary.LifetimeEarned)
	assert.Equal(t, domain.TierSilver, acct.Tier.Tier)
	require.Len(t, acct.Transactions, 3)
	assert.Equal(t, string(domain.TypeRedeem), acct.Transactions[0].Type, "newest first")
}

func TestAwardPoints_Validation(t *testing.T) {
	member := uuid.New()
	ledger := newFakeLedger(member)
	award := NewAwardPoints(ledger, nopPublisher{})
	admin := &authz.Principal{UserID: uuid.New(), Role: authz.RoleAdmin}
	ctx := context.Background()

	_, err := award.Execute(ctx, admin, AwardInput{UserID: member, Points: 0})
	assert.Equal(t, httperr.KindValidation, httperr.KindOf(err))

	_, err = award.Execute(ctx, admin, AwardInput{UserID: member, Points: 10, Type: domain.TypeRedeem})
	assert.True(t, httperr.IsCode(err, "invalid_type"))

	_, err = award.Execute(ctx, admin, AwardInput{UserID: uuid.New(), Points: 10})
	assert.Equal(t, httperr.KindNotFound, httperr.KindOf(err))

	assert.Empty(t, ledger.rows)
}

func TestGetPoints_TargetIsAdminOnly(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	ledger := newFakeLedger(alice, bob)
	ctx := context.Background()
	admin := &authz.Principal{UserID: uuid.New(), Role: authz.RoleAdmin}

	_, err := NewAwardPoints(ledger, nopPublisher{}).Execute(ctx, admin, AwardInput{UserID: bob, Points: 40})
	require.NoError(t, err)

	get := NewGetPoints(ledger)

	acct, err := get.Execute(ctx, &authz.Principal{UserID: alice, Role: authz.RoleClient}, &bob, pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, alice, acct.UserID)
	assert.Equal(t, int64(0), acct.Balance)

	acct, err = get.Execute(ctx, admin, &bob, pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, int64(40), acct.Balance)
}

func TestRedeemPoints_ConcurrentRedemptionsNeverOverdraw(t *testing.T) {
	member := uuid.New()
	ledger := newFakeLedger(member)
	ctx := context.Background()
	admin := &authz.Principal{UserID: uuid.New(), Role: authz.RoleAdmin}
	me := &authz.Principal{UserID: member, Role: authz.RoleClient}

	_, err := NewAwardPoints(ledger, nopPublisher{}).Execute(ctx, admin, AwardInput{UserID: member, Points: 100})
	require.NoError(t, err)

	redeem := NewRedeemPoints(ledger, nopPublisher{})

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = redeem.Execute(ctx, me, RedeemInput{Points: 30})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, httperr.IsCode(err, "insufficient_points"))
	}
	assert.Equal(t, 3, ok)

	totals, _ := ledger.Totals(ctx, member)
	assert.Equal(t, int64(10), domain.Fold(totals).Balance)

	types := make([]string, 0, len(ledger.rows))
	for _, r := range ledger.rows {
		types = append(types, r.Type)
	}
	sort.Strings(types)
	assert.Equal(t, []string{"EARN", "REDEEM", "REDEEM", "REDEEM"}, types)
}
