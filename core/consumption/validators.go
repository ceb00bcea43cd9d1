package consumption

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core"
)

var (
	periodTag  = "period"
	periodText = "period must be formatted as YYYY-MM or YYYY-MM-DD"

	resourceTag  = "resource"
	resourceText = "resource must be one of electricity, water or waste"
)

// InitValidators registers the consumption validators on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(periodTag, periodValidation)
	core.RegisterCustomTranslation(validate, translator, periodTag, periodText)

	_ = validate.RegisterValidation(resourceTag, resourceValidation)
	core.RegisterCustomTranslation(validate, translator, resourceTag, resourceText)
}

func periodValidation(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		_, valid := ParsePeriod(s)
		return valid
	}
	return false
}

func resourceValidation(fl validator.FieldLevel) bool {
	switch v := fl.Field().Interface().(type) {
	case string:
		return Resource(v).Valid()
	case Resource:
		return v.Valid()
	}
	return false
}
