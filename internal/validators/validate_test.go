package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lebarbier/lebarbier-api/internal/httperr"
)

func stubResolver(t *testing.T, known ...string) {
	t.Helper()
	prev := ResolveDomain
	ResolveDomain = func(domain string) bool {
		for _, k := range known {
			if k == domain {
				return true
			}
		}
		return false
	}
	t.Cleanup(func() { ResolveDomain = prev })
}

func TestIsEmailDomainValid(t *testing.T) {
	stubResolver(t, "lebarbier.cm")

	assert.True(t, IsEmailDomainValid("client@lebarbier.cm"))
	assert.False(t, IsEmailDomainValid("client@nowhere.invalid"))
	assert.False(t, IsEmailDomainValid("client@"))
	assert.False(t, IsEmailDomainValid("no-at-sign"))
}

func TestStruct(t *testing.T) {
	stubResolver(t, "lebarbier.cm")

	type signup struct {
		Email string `validate:"required,email,emaildomain"`
		Age   int    `validate:"gte=0"`
	}

	assert.NoError(t, Struct(signup{Email: "a@lebarbier.cm"}))

	err := Struct(signup{Email: "a@unknown.test", Age: -1})
	assert.Equal(t, httperr.KindValidation, httperr.KindOf(err))
	assert.Contains(t, err.(*httperr.AppError).Message, "Email")
	assert.Contains(t, err.(*httperr.AppError).Message, "Age")
}
