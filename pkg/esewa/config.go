package esewa

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Config identifies the merchant and the environment to talk to.
// MerchantID and SecretKey are carried for the caller's authenticator and
// are not checked here.
type Config struct {
	Environment Environment `json:"environment" validate:"required,oneof=test production"`
	MerchantID  string      `json:"merchant_id"`
	SecretKey   string      `json:"secret_key"`
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("%w: %q", ErrUnknownEnvironment, string(c.Environment))
		}
		return err
	}
	return nil
}

func validateInput(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	fe := verrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "gte":
		msg = fmt.Sprintf("must be at least %s", fe.Param())
	default:
		msg = fmt.Sprintf("failed on %q", fe.Tag())
	}
	return NewValidationError(fe.Field(), msg)
}
