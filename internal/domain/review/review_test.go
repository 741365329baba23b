package review

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lebarbier/lebarbier-api/internal/httperr"
)

func TestValidateRating(t *testing.T) {
	for _, v := range []int{1, 3, 5} {
		assert.NoError(t, ValidateRating("service", v))
	}
	for _, v := range []int{0, 6, -1} {
		err := ValidateRating("service", v)
		require.Error(t, err)
		assert.True(t, httperr.IsCode(err, "invalid_rating"))
	}
}

func TestAverage(t *testing.T) {
	assert.Equal(t, 0.0, Average(nil))
	assert.Equal(t, 4.0, Average([]int{4}))
	assert.Equal(t, 4.3, Average([]int{4, 4, 5}))
	assert.Equal(t, 2.5, Average([]int{2, 3}))
}

func TestFilter_Where(t *testing.T) {
	emp := uuid.New()
	viewer := uuid.New()
	yes := true
	no := false

	tests := []struct {
		name     string
		filter   Filter
		wantSQL  string
		wantArgs []any
	}{
		{"empty", Filter{}, "(1=1)", nil},
		{
			"employee and rating",
			Filter{EmployeeID: &emp, MinRating: 4},
			"(employee_id = ? AND (service_rating >= ? OR employee_rating >= ?))",
			[]any{emp.String(), 4, 4},
		},
		{
			"approved only",
			Filter{Approved: &yes},
			"(is_approved = ?)",
			[]any{true},
		},
		{
			"approved or own",
			Filter{Approved: &yes, Viewer: &viewer},
			"((is_approved = ? OR user_id = ?))",
			[]any{true, viewer.String()},
		},
		{
			"pending ignores viewer",
			Filter{Approved: &no, Viewer: &viewer},
			"(is_approved = ?)",
			[]any{false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := tt.filter.Where()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			if tt.wantArgs == nil {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tt.wantArgs, args)
			}
		})
	}
}

func TestFilter_Validate(t *testing.T) {
	assert.NoError(t, Filter{MinRating: 5}.Validate())
	assert.Error(t, Filter{MinRating: 6}.Validate())
}
