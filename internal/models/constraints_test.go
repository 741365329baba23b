package models

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func checksOf(t *testing.T, model any) []string {
	t.Helper()
	s, err := schema.Parse(model, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)
	var out []string
	for _, c := range s.ParseCheckConstraints() {
		out = append(out, c.Constraint)
	}
	return out
}

func TestColumnChecks(t *testing.T) {
	assert.Contains(t, checksOf(t, &Product{}), "stock >= 0")
	assert.Contains(t, checksOf(t, &LoyaltyTransaction{}), "points > 0")
	assert.Contains(t, checksOf(t, &LoyaltyReward{}), "points_cost > 0")
	assert.ElementsMatch(t, []string{
		"service_rating BETWEEN 1 AND 5",
		"employee_rating BETWEEN 1 AND 5",
	}, checksOf(t, &Review{}))
}
