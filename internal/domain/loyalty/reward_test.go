package loyalty

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/models"
)

func TestTier_Reaches(t *testing.T) {
	assert.True(t, TierGold.Reaches(TierSilver))
	assert.True(t, TierSilver.Reaches(TierSilver))
	assert.True(t, TierBronze.Reaches(TierBronze))
	assert.False(t, TierSilver.Reaches(TierGold))
	assert.False(t, TierBronze.Reaches(TierSilver))
}

func TestCheckClaim(t *testing.T) {
	silverCut := &models.LoyaltyReward{Tier: string(TierSilver), PointsCost: 80, IsActive: true}

	tests := []struct {
		name    string
		reward  *models.LoyaltyReward
		summary Summary
		kind    httperr.Kind
		code    string
	}{
		{"ok", silverCut, Summary{Balance: 90, LifetimeEarned: 150}, 0, ""},
		{"tier too low", silverCut, Summary{Balance: 90, LifetimeEarned: 90}, httperr.KindAuthorization, "tier_too_low"},
		{"short on points", silverCut, Summary{Balance: 50, LifetimeEarned: 400}, httperr.KindConflict, "insufficient_points"},
		{"inactive", &models.LoyaltyReward{Tier: string(TierBronze), PointsCost: 1}, Summary{Balance: 90}, httperr.KindConflict, "reward_inactive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckClaim(tt.reward, tt.summary)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.kind, httperr.KindOf(err))
			assert.True(t, httperr.IsCode(err, tt.code))
		})
	}
}

func TestRewardFilter(t *testing.T) {
	sql, args, err := RewardFilter{Tier: "GOLD"}.Where()
	require.NoError(t, err)
	assert.Equal(t, "(is_active = ? AND tier = ?)", sql)
	assert.Equal(t, []any{true, "GOLD"}, args)

	sql, args, err = RewardFilter{IncludeInactive: true}.Where()
	require.NoError(t, err)
	assert.Equal(t, "(1=1)", sql)
	assert.Empty(t, args)

	assert.Error(t, RewardFilter{Tier: "PLATINUM"}.Validate())
}
