package validators

import (
	"regexp"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const (
	AliasMinLength = 2
	AliasMaxLength = 64

	PasswordMinLength = 8
	PasswordMaxLength = 64
)

// aliasRegex keeps aliases URL-safe and visually distinct from public
// ids: lowercase alphanumerics and single dashes, no leading/trailing dash.
var aliasRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Alias validates the shape of a human-chosen note alias.
func Alias(fl validator.FieldLevel) bool {
	alias, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	if len(alias) < AliasMinLength || len(alias) > AliasMaxLength {
		return false
	}
	return aliasRegex.MatchString(alias)
}

// ValidAlias applies the same rule outside struct validation, for
// aliases arriving as path parameters rather than JSON fields.
func ValidAlias(alias string) bool {
	return len(alias) >= AliasMinLength &&
		len(alias) <= AliasMaxLength &&
		aliasRegex.MatchString(alias)
}

func HasUpper(fl validator.FieldLevel) bool {
	return containsClass(fl, unicode.IsUpper)
}

func HasLower(fl validator.FieldLevel) bool {
	return containsClass(fl, unicode.IsLower)
}

func HasDigit(fl validator.FieldLevel) bool {
	return containsClass(fl, unicode.IsDigit)
}

func containsClass(fl validator.FieldLevel, class func(rune) bool) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	for _, ch := range value {
		if class(ch) {
			return true
		}
	}
	return false
}
