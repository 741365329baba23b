package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, Params{Page: 1, Limit: 20}, Params{}.Normalize(DefaultLimit))
	assert.Equal(t, Params{Page: 3, Limit: 50}, Params{Page: 3, Limit: 50}.Normalize(DefaultLimit))
	assert.Equal(t, Params{Page: 1, Limit: 50}, Params{Page: -2, Limit: 5000}.Normalize(50))
}

func TestOffsetAndMeta(t *testing.T) {
	p := Params{Page: 3, Limit: 20}
	assert.Equal(t, 40, p.Offset())

	meta := NewMeta(p, 41)
	assert.Equal(t, int64(3), meta.TotalPages)
	assert.Equal(t, int64(0), NewMeta(p, 0).TotalPages)
}
