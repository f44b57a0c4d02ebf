package validation

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PayloadError holds translated messages of failed validation rules, one per line
type PayloadError struct {
	messages []string
}

func (e *PayloadError) Error() string {
	buff := bytes.NewBufferString("")

	for _, msg := range e.messages {
		buff.WriteString(msg)
		buff.WriteString("\n")
	}

	return buff.String()
}

type EchoValidator struct {
	validator  *validator.Validate
	translator ut.Translator
}

func Echo(validator *validator.Validate, translator ut.Translator) *EchoValidator {
	return &EchoValidator{
		validator:  validator,
		translator: translator,
	}
}

// English builds EchoValidator with english messages
func English() (*EchoValidator, error) {
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())
	if err := entranslations.RegisterDefaultTranslations(v, translator); err != nil {
		return nil, fmt.Errorf("failed to register default translations - %w", err)
	}

	if err := v.RegisterValidation("objectid", objectID); err != nil {
		return nil, fmt.Errorf("failed to register object id validation - %w", err)
	}

	err := v.RegisterTranslation("objectid", translator, func(ut ut.Translator) error {
		return ut.Add("objectid", "{0} must be a valid object id", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		msg, _ := ut.T("objectid", fe.Field())
		return msg
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register object id translation - %w", err)
	}

	return Echo(v, translator), nil
}

// objectID accepts 24 hex digits in any case
func objectID(fl validator.FieldLevel) bool {
	_, err := primitive.ObjectIDFromHex(fl.Field().String())
	return err == nil
}

func (v *EchoValidator) Validate(i any) error {
	err := v.validator.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return v.payloadError(ve)
	}

	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func (v *EchoValidator) payloadError(ve validator.ValidationErrors) error {
	pldErr := &PayloadError{messages: make([]string, 0, len(ve))}
	for _, e := range ve {
		pldErr.messages = append(pldErr.messages, e.Translate(v.translator))
	}
	return pldErr
}
