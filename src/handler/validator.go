package handler

import (
	"errors"

	"github.com/apaarauth/backend/src/domain"
	"github.com/apaarauth/backend/src/service"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Binding tags understood by the request structs.
const (
	tagAparID = "aparid"
	tagPhone  = "phone10"
	tagCode   = "otpcode"
	tagIntent = "intent"
)

// RegisterValidators installs the custom binding tags on gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}

	validations := map[string]validator.Func{
		tagAparID: func(fl validator.FieldLevel) bool { return domain.IsValidAparID(fl.Field().String()) },
		tagPhone:  func(fl validator.FieldLevel) bool { return domain.IsValidPhone(fl.Field().String()) },
		tagCode:   func(fl validator.FieldLevel) bool { return service.IsCode(fl.Field().String()) },
		tagIntent: func(fl validator.FieldLevel) bool { return domain.Intent(fl.Field().String()).Valid() },
	}
	for tag, fn := range validations {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// bindingErrorMessage maps the first failed binding rule to the client message.
// Anything that is not a validation failure is a malformed payload.
func bindingErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return msgInvalidPayload
	}

	switch validationErrs[0].Tag() {
	case "required":
		return service.MsgFieldsRequired
	case tagAparID:
		return service.MsgAparIDInvalid
	case tagPhone:
		return service.MsgPhoneInvalid
	case tagCode:
		return service.MsgCodeInvalid
	case tagIntent:
		return service.MsgIntentInvalid
	default:
		return msgInvalidPayload
	}
}
