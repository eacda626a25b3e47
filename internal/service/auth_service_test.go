package service

import (
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/mwaldner/scrawl/internal/contract"
	"github.com/mwaldner/scrawl/internal/domain/sqlite"
	"github.com/mwaldner/scrawl/internal/domain/sqlite/repository"
	"github.com/mwaldner/scrawl/internal/utils"
	"github.com/mwaldner/scrawl/internal/utils/apierror"
	"github.com/mwaldner/scrawl/internal/validators"
)

func newAuthService(t *testing.T) *DefaultAuthService {
	t.Helper()

	if err := utils.InitJWT("auth-test-secret"); err != nil {
		t.Fatalf("init jwt: %v", err)
	}

	db, err := sqlite.Init(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("init db: %v", err)
	}

	validate := validator.New()
	_ = validate.RegisterValidation("hasupper", validators.HasUpper)
	_ = validate.RegisterValidation("haslower", validators.HasLower)
	_ = validate.RegisterValidation("hasdigit", validators.HasDigit)

	return NewAuthService(repository.NewUserRepository(db), validate)
}

func TestSignupAndLogin(t *testing.T) {
	auth := newAuthService(t)

	user, apierr := auth.Signup(&contract.SignupRequest{Username: "alice", Password: "Sup3rsecret"})
	if apierr != nil {
		t.Fatalf("signup: %v", apierr)
	}
	if user.Username != "alice" || user.ID == "" {
		t.Fatalf("signup response = %+v", user)
	}

	tok, apierr := auth.Login(&contract.LoginRequest{Username: "alice", Password: "Sup3rsecret"})
	if apierr != nil {
		t.Fatalf("login: %v", apierr)
	}

	data, err := utils.ValidateToken(tok.Token)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if data.Sub != user.ID {
		t.Errorf("token subject = %q, want %q", data.Sub, user.ID)
	}
}

func TestSignupDuplicateUsername(t *testing.T) {
	auth := newAuthService(t)

	if _, apierr := auth.Signup(&contract.SignupRequest{Username: "bob", Password: "Sup3rsecret"}); apierr != nil {
		t.Fatalf("signup: %v", apierr)
	}
	if _, apierr := auth.Signup(&contract.SignupRequest{Username: "bob", Password: "An0therpass"}); apierr != apierror.ExistingUsernameError {
		t.Errorf("duplicate signup error = %v, want ExistingUsernameError", apierr)
	}
}

func TestSignupRejectsWeakPassword(t *testing.T) {
	auth := newAuthService(t)

	weak := []string{"short1A", "nouppercase1", "NOLOWERCASE1", "NoDigitsHere"}
	for _, pw := range weak {
		if _, apierr := auth.Signup(&contract.SignupRequest{Username: "carol", Password: pw}); apierr == nil {
			t.Errorf("password %q accepted", pw)
		}
	}
}

// Unknown user and wrong password must be indistinguishable to callers.
func TestLoginCredentialsMismatch(t *testing.T) {
	auth := newAuthService(t)

	if _, apierr := auth.Signup(&contract.SignupRequest{Username: "dave", Password: "Sup3rsecret"}); apierr != nil {
		t.Fatalf("signup: %v", apierr)
	}

	_, unknownErr := auth.Login(&contract.LoginRequest{Username: "nobody", Password: "Sup3rsecret"})
	_, wrongErr := auth.Login(&contract.LoginRequest{Username: "dave", Password: "WrongPass1"})

	if unknownErr != apierror.CredentialsMismatchError {
		t.Errorf("unknown user error = %v", unknownErr)
	}
	if wrongErr != apierror.CredentialsMismatchError {
		t.Errorf("wrong password error = %v", wrongErr)
	}
}
