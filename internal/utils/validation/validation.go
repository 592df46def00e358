package validation

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// TagName is the struct tag shared with gin's request binding.
const TagName = "binding"

// New returns a validator reading the binding tag with decimal support registered.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName(TagName)
	Register(v)
	return v
}

// Register teaches v to compare decimal.Decimal fields numerically (gt, gte, lt, ...).
func Register(v *validator.Validate) {
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
}

func decimalValue(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}
