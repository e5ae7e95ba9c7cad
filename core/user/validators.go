package user

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/academia/core"
)

var (
	roleTag  = "role"
	roleText = "invalid role"

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to user attributes"
)

// register custom validators
func init() {
	_ = core.Validate.RegisterValidation(roleTag, roleValidation)
	core.RegisterCustomTranslation(roleTag, roleText)

	core.Validate.RegisterStructValidation(newUserStructValidation, NewUser{})
	core.RegisterCustomTranslation(pwdAttrSimTag, pwdAttrSimText)
}

// Custom Validators

// roleValidation checks that the provided role is one of AllRoles
func roleValidation(fl validator.FieldLevel) bool {
	return Role(fl.Field().String()).Valid()
}

// newUserStructValidation does NewUser's struct level validation
func newUserStructValidation(sl validator.StructLevel) {
	if nu, ok := sl.Current().Interface().(NewUser); ok && nu.Password != "" && !nu.defaultPassword {
		if passwordTooSimilar(nu.Password, nu.Username, nu.FirstName, nu.LastName, nu.Email) {
			sl.ReportError(nu.Password, "password", "Password", pwdAttrSimTag, "")
		}
	}
}

func passwordTooSimilar(pwd string, attrs ...string) bool {
	lpwd := strings.ToLower(pwd)
	for _, attr := range attrs {
		if attr == "" {
			continue
		}
		m := difflib.NewMatcher(strings.Split(lpwd, ""), strings.Split(strings.ToLower(attr), ""))
		if m.QuickRatio() >= pwdMaxSim {
			return true
		}
	}
	return false
}
