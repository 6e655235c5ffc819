package middleware

import (
	"github.com/go-playground/validator/v10"
	"github.com/streamcart/streamcart_backend/utils"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return utils.ValidUsername(fl.Field().String())
	})
	return &CustomValidator{validator: v}
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
