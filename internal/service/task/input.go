package task

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
)

// ErrValidation marks input rejected before any persistence.
var ErrValidation = errors.New("validation failed")

// ValidationError carries a message safe to show the caller verbatim.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// CreateInput is the repair intake form.
type CreateInput struct {
	Description   string  `json:"description" validate:"required,max=2000"`
	TotalCost     float64 `json:"totalCost" validate:"gte=0"`
	CustomerName  string  `json:"customerName" validate:"required,max=200"`
	CustomerPhone string  `json:"customerPhone" validate:"required"`
	LaptopBrand   string  `json:"laptopBrand" validate:"required,max=100"`
	LaptopModel   string  `json:"laptopModel" validate:"required,max=100"`
}

// Normalize trims the form, validates it and returns a copy whose phone
// number is in E.164. region is the default region for numbers written
// without a country code.
func (in CreateInput) Normalize(region string) (CreateInput, error) {
	in.Description = strings.TrimSpace(in.Description)
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	in.LaptopBrand = strings.TrimSpace(in.LaptopBrand)
	in.LaptopModel = strings.TrimSpace(in.LaptopModel)

	if err := validate.Struct(in); err != nil {
		return CreateInput{}, toValidationError(err)
	}

	phone, err := NormalizePhone(in.CustomerPhone, region)
	if err != nil {
		return CreateInput{}, err
	}
	in.CustomerPhone = phone
	return in, nil
}

// NormalizePhone parses raw and formats it as E.164.
func NormalizePhone(raw, region string) (string, error) {
	num, err := phonenumbers.Parse(raw, region)
	if err != nil || !phonenumbers.IsPossibleNumber(num) {
		return "", &ValidationError{Msg: "customerPhone is not a valid phone number"}
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

func toValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Msg: err.Error()}
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return &ValidationError{Msg: strings.Join(msgs, "; ")}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
