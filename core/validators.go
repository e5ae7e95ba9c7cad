package core

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	// custom validation tags & texts
	notBlankTag  = "notblank"
	notBlankText = "this field cannot be blank"

	usernameTag   = "username"
	usernameText  = "only letters, digits, dots, dashes and underscores are allowed"
	usernameRegex = regexp.MustCompile(`^[\w.\-]+$`)

	requiredTag  = "required"
	requiredText = "this field is required"
)

// Instantiate the validator for use.
func init() {
	Validate = validator.New()

	// Register the english error messages for validation errors.
	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Use JSON tag names for errors instead of Go struct names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = Validate.RegisterValidation(notBlankTag, notBlankValidation)
	RegisterCustomTranslation(notBlankTag, notBlankText)

	_ = Validate.RegisterValidation(usernameTag, usernameValidation)
	RegisterCustomTranslation(usernameTag, usernameText)

	RegisterCustomTranslation(requiredTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = Validate.RegisterTranslation(
		tag, Translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// ValidateStruct runs the struct validator on s and converts any failure into a *ValidationError
// whose fields keep the declaration order of s (first field = first missing field).
func ValidateStruct(s interface{}) error {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	flds := make([]FieldError, 0, len(vErrs))
	for _, fe := range vErrs {
		flds = append(flds, FieldError{Field: fieldPath(fe), Error: fe.Translate(Translator)})
	}
	return NewValidationError(nil, flds...)
}

// fieldPath drops the top-level struct name from the namespace: "NewUser.username" -> "username".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// Custom Global Validators

func notBlankValidation(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func usernameValidation(fl validator.FieldLevel) bool {
	return usernameRegex.MatchString(fl.Field().String())
}
