package validators

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestValidAlias(t *testing.T) {
	valid := []string{
		"my-note",
		"ab",
		"a1",
		"design-doc-2026",
		"x-y-z",
		strings.Repeat("a", AliasMaxLength),
	}
	for _, alias := range valid {
		if !ValidAlias(alias) {
			t.Errorf("ValidAlias(%q) = false, want true", alias)
		}
	}

	invalid := []string{
		"",
		"a",                  // too short
		"My-Note",            // uppercase
		"-leading",           // leading dash
		"trailing-",          // trailing dash
		"double--dash",       // consecutive dashes
		"under_score",        // underscore
		"with space",         // whitespace
		"nötiz",              // non-ascii
		"semi;colon",         // punctuation
		strings.Repeat("a", AliasMaxLength+1),
	}
	for _, alias := range invalid {
		if ValidAlias(alias) {
			t.Errorf("ValidAlias(%q) = true, want false", alias)
		}
	}
}

func TestPasswordClassValidators(t *testing.T) {
	validate := validator.New()
	_ = validate.RegisterValidation("hasupper", HasUpper)
	_ = validate.RegisterValidation("haslower", HasLower)
	_ = validate.RegisterValidation("hasdigit", HasDigit)

	type creds struct {
		Password string `validate:"hasupper,haslower,hasdigit"`
	}

	cases := []struct {
		password string
		ok       bool
	}{
		{"Sup3rsecret", true},
		{"alllowercase1", false},
		{"ALLUPPERCASE1", false},
		{"NoDigitsHere", false},
		{"", false},
	}
	for _, tc := range cases {
		err := validate.Struct(creds{Password: tc.password})
		if (err == nil) != tc.ok {
			t.Errorf("password %q: err = %v, want ok = %v", tc.password, err, tc.ok)
		}
	}
}

