package loyalty

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lebarbier/lebarbier-api/internal/audit"
	"github.com/lebarbier/lebarbier-api/internal/authz"
	domain "github.com/lebarbier/lebarbier-api/internal/domain/loyalty"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/models"
)

type fakeRewards struct {
	rows map[uuid.UUID]models.LoyaltyReward
	last domain.RewardFilter
}

func newFakeRewards() *fakeRewards {
	return &fakeRewards{rows: map[uuid.UUID]models.LoyaltyReward{}}
}

func (f *fakeRewards) Create(_ context.Context, r *models.LoyaltyReward) error {
	r.ID = uuid.New()
	f.rows[r.ID] = *r
	return nil
}

func (f *fakeRewards) Update(_ context.Context, r *models.LoyaltyReward) error {
	f.rows[r.ID] = *r
	return nil
}

func (f *fakeRewards) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.rows[id]; !ok {
		return httperr.NotFoundError("reward_not_found", "Récompense introuvable.")
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeRewards) GetByID(_ context.Context, id uuid.UUID) (*models.LoyaltyReward, error) {
	r, ok := f.rows[id]
	if !ok {
		return nil, httperr.NotFoundError("reward_not_found", "Récompense introuvable.")
	}
	return &r, nil
}

func (f *fakeRewards) List(_ context.Context, filter domain.RewardFilter) ([]models.LoyaltyReward, int64, error) {
	f.last = filter
	return nil, 0, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []audit.Event
}

func (p *recordingPublisher) Dispatch(ev audit.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func ptr[T any](v T) *T { return &v }

func TestRewards_CreateUpdateValidation(t *testing.T) {
	ctx := context.Background()
	uc := NewRewards(newFakeRewards(), newFakeLedger(), nopPublisher{})

	_, err := uc.Create(ctx, RewardPatch{Name: ptr("Coupe offerte")})
	require.Error(t, err)
	assert.True(t, httperr.IsCode(err, "missing_fields"))

	base := RewardPatch{Tier: ptr("silver"), Name: ptr(" Coupe offerte "), Description: ptr("Une coupe"), PointsCost: ptr(120)}

	bad := base
	bad.Tier = ptr("PLATINUM")
	_, err = uc.Create(ctx, bad)
	assert.True(t, httperr.IsCode(err, "invalid_tier"))

	bad = base
	bad.PointsCost = ptr(0)
	_, err = uc.Create(ctx, bad)
	assert.True(t, httperr.IsCode(err, "invalid_points"))

	bad = base
	bad.Discount = ptr(decimal.NewFromInt(150))
	_, err = uc.Create(ctx, bad)
	assert.True(t, httperr.IsCode(err, "invalid_discount"))

	rw, err := uc.Create(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, "SILVER", rw.Tier)
	assert.Equal(t, "Coupe offerte", rw.Name)
	assert.True(t, rw.IsActive)

	rw, err = uc.Update(ctx, rw.ID, RewardPatch{Discount: ptr(decimal.RequireFromString("12.345")), IsActive: ptr(false)})
	require.NoError(t, err)
	require.NotNil(t, rw.Discount)
	assert.Equal(t, "12.35", rw.Discount.StringFixed(2))
	assert.False(t, rw.IsActive)

	require.NoError(t, uc.Delete(ctx, rw.ID))
	assert.True(t, httperr.IsCode(uc.Delete(ctx, rw.ID), "reward_not_found"))
}

func TestRewards_ListHidesRetiredFromMembers(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRewards()
	uc := NewRewards(repo, newFakeLedger(), nopPublisher{})
	admin := &authz.Principal{UserID: uuid.New(), Role: authz.RoleAdmin}

	out, err := uc.List(ctx, nil, domain.RewardFilter{IncludeInactive: true, Tier: "GOLD"})
	require.NoError(t, err)
	assert.NotNil(t, out.Rewards)
	assert.False(t, repo.last.IncludeInactive)
	assert.Equal(t, "GOLD", repo.last.Tier)
	assert.Equal(t, 20, repo.last.Limit)

	_, err = uc.List(ctx, admin, domain.RewardFilter{IncludeInactive: true})
	require.NoError(t, err)
	assert.True(t, repo.last.IncludeInactive)

	_, err = uc.List(ctx, nil, domain.RewardFilter{Tier: "DIAMOND"})
	assert.Equal(t, httperr.KindValidation, httperr.KindOf(err))
}

func TestRewards_ClaimDebitsLedger(t *testing.T) {
	ctx := context.Background()
	member := uuid.New()
	ledger := newFakeLedger(member)
	rewards := newFakeRewards()
	pub := &recordingPublisher{}
	uc := NewRewards(rewards, ledger, pub)

	admin := &authz.Principal{UserID: uuid.New(), Role: authz.RoleAdmin}
	me := &authz.Principal{UserID: member, Role: authz.RoleClient}

	gold, err := uc.Create(ctx, RewardPatch{Tier: ptr("GOLD"), Name: ptr("Soin complet"), Description: ptr("x"), PointsCost: ptr(50)})
	require.NoError(t, err)
	silver, err := uc.Create(ctx, RewardPatch{Tier: ptr("SILVER"), Name: ptr("Coupe offerte"), Description: ptr("x"), PointsCost: ptr(80)})
	require.NoError(t, err)

	_, err = NewAwardPoints(ledger, nopPublisher{}).Execute(ctx, admin, AwardInput{UserID: member, Points: 150})
	require.NoError(t, err)

	_, err = uc.Claim(ctx, me, gold.ID)
	require.Error(t, err)
	assert.True(t, httperr.IsCode(err, "tier_too_low"))

	res, err := uc.Claim(ctx, me, silver.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(70), res.Balance)
	assert.Equal(t, string(domain.TypeRedeem), res.Transaction.Type)
	assert.Equal(t, "Récompense: Coupe offerte", res.Transaction.Reason)
	assert.Equal(t, "reward:"+silver.ID.String(), res.Transaction.Reference)

	_, err = uc.Claim(ctx, me, silver.ID)
	require.Error(t, err)
	assert.True(t, httperr.IsCode(err, "insufficient_points"))

	_, err = uc.Claim(ctx, me, uuid.New())
	assert.True(t, httperr.IsCode(err, "reward_not_found"))

	totals, _ := ledger.Totals(ctx, member)
	s := domain.Fold(totals)
	assert.Equal(t, int64(70), s.Balance)
	assert.Equal(t, int64(150), s.LifetimeEarned, "claims do not demote")

	require.Len(t, pub.events, 1)
	assert.Equal(t, audit.ActionRewardClaimed, pub.events[0].Action)
}
