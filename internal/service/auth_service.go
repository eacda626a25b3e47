package service

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/mwaldner/scrawl/internal/contract"
	"github.com/mwaldner/scrawl/internal/domain/entity"
	"github.com/mwaldner/scrawl/internal/utils"
	"github.com/mwaldner/scrawl/internal/utils/apierror"
)

const tokenTTL = 24 * time.Hour

type DefaultAuthService struct {
	UserRepo UserRepository
	Validate *validator.Validate
}

func NewAuthService(userRepo UserRepository, validate *validator.Validate) *DefaultAuthService {
	return &DefaultAuthService{
		UserRepo: userRepo,
		Validate: validate,
	}
}

func (a *DefaultAuthService) Signup(req *contract.SignupRequest) (*contract.UserResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if valerr := a.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	existing, err := a.UserRepo.FindByUsername(req.Username)
	if err != nil {
		log.Errorf("failed to check username availability: %v", err)
		return nil, apierror.InternalServerError
	}
	if existing != nil {
		return nil, apierror.ExistingUsernameError
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Errorf("failed to hash password: %v", err)
		return nil, apierror.InternalServerError
	}

	now := utils.NowUTC()
	user := &entity.User{
		PublicID:     uuid.NewString(),
		Username:     req.Username,
		PasswordHash: string(hash),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := a.UserRepo.Save(user); err != nil {
		log.Errorf("failed to save user: %v", err)
		return nil, apierror.InternalServerError
	}

	return &contract.UserResponse{
		ID:        user.PublicID,
		Username:  user.Username,
		CreatedAt: utils.FormatEpoch(user.CreatedAt),
	}, nil
}

func (a *DefaultAuthService) Login(req *contract.LoginRequest) (*contract.TokenResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if valerr := a.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	user, err := a.UserRepo.FindByUsername(req.Username)
	if err != nil {
		log.Errorf("failed to fetch user: %v", err)
		return nil, apierror.InternalServerError
	}

	// Same response for unknown user and wrong password.
	if user == nil {
		return nil, apierror.CredentialsMismatchError
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, apierror.CredentialsMismatchError
	}

	if user.Suspended || !user.Active {
		return nil, apierror.AccountDisabledError
	}

	token, err := utils.IssueToken(user.PublicID, tokenTTL)
	if err != nil {
		log.Errorf("failed to issue token: %v", err)
		return nil, apierror.InternalServerError
	}

	return &contract.TokenResponse{
		Token:     token,
		ExpiresAt: utils.FormatEpoch(utils.NowUTC() + tokenTTL.Milliseconds()),
	}, nil
}
