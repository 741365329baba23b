package validators

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/lebarbier/lebarbier-api/internal/httperr"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		register(validate)
	})
	return validate
}

func register(v *validator.Validate) {
	_ = v.RegisterValidation("emaildomain", emailDomain)
}

// Struct validates s and reports failures as a ValidationError.
func Struct(s any) error {
	if err := instance().Struct(s); err != nil {
		return httperr.Bind(err)
	}
	return nil
}

// RegisterGin installs the custom rules on gin's binding validator so
// request structs can use them in binding tags.
func RegisterGin() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		register(v)
	}
}
