package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/parkinglot-backend/pkg/config"
	"github.com/angelmondragon/parkinglot-backend/pkg/db"
	"github.com/angelmondragon/parkinglot-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/parkinglot-backend/pkg/errors"
	"github.com/angelmondragon/parkinglot-backend/pkg/security"
	"github.com/angelmondragon/parkinglot-backend/pkg/types"
)

var (
	ErrUserNotFound    = pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	ErrEmailTaken      = pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	ErrCurrentPassword = pkgerrors.New(pkgerrors.CodeUnauthorized, "current password is incorrect")
)

const (
	errInvalidPostalCode = "must be exactly 6 digits"
	maxNameLength        = 120
	maxAddressLength     = 255
)

type repository interface {
	Create(ctx context.Context, dto CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

// Service covers self-service account management and the admin user list.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*UserDTO, error)
	Get(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, input UpdatePasswordInput) error
	List(ctx context.Context) ([]UserDTO, error)
}

// RegisterInput is the signup payload.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Address    string
	PostalCode string
}

// UpdateProfileInput requires the current password before any change.
type UpdateProfileInput struct {
	CurrentPassword string
	Name            string
	Address         string
	PostalCode      string
}

type UpdatePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

type service struct {
	repo        repository
	passwordCfg config.PasswordConfig
}

func NewService(repo repository, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo, passwordCfg: passwordCfg}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*UserDTO, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	profile, err := validateProfile(input.Name, input.Address, input.PostalCode)
	if err != nil {
		return nil, err
	}
	if err := security.CheckPasswordPolicy(input.Password); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"password": err.Error()})
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check user email")
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.repo.Create(ctx, CreateUserDTO{
		Email:        email,
		PasswordHash: hash,
		Name:         profile.Name,
		Address:      profile.Address,
		PostalCode:   profile.PostalCode,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, ErrEmailTaken
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return FromModel(user), nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCurrentPassword(user, input.CurrentPassword); err != nil {
		return nil, err
	}

	// blank fields keep their stored value
	name := firstNonBlank(input.Name, user.Name)
	address := firstNonBlank(input.Address, user.Address)
	postal := firstNonBlank(input.PostalCode, user.PostalCode)
	profile, err := validateProfile(name, address, postal)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProfile(ctx, user.ID, profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}
	user.Name = profile.Name
	user.Address = profile.Address
	user.PostalCode = profile.PostalCode
	return FromModel(user), nil
}

func (s *service) UpdatePassword(ctx context.Context, userID uuid.UUID, input UpdatePasswordInput) error {
	user, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.checkCurrentPassword(user, input.CurrentPassword); err != nil {
		return err
	}
	if err := security.CheckPasswordPolicy(input.NewPassword); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"new_password": err.Error()})
	}
	hash, err := security.HashPassword(input.NewPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.repo.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update password")
	}
	return nil
}

func (s *service) List(ctx context.Context) ([]UserDTO, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	return FromModels(list), nil
}

func (s *service) load(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func (s *service) checkCurrentPassword(user *models.User, password string) error {
	if password == "" {
		return ErrCurrentPassword
	}
	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return ErrCurrentPassword
	}
	return nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", validationError("email", "is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", validationError("email", "must be a valid email")
	}
	return email, nil
}

func validateProfile(name, address, postal string) (ProfileUpdate, error) {
	p := ProfileUpdate{
		Name:       strings.TrimSpace(name),
		Address:    strings.TrimSpace(address),
		PostalCode: types.NormalizePostalCode(postal),
	}
	details := map[string]string{}
	switch {
	case p.Name == "":
		details["name"] = "is required"
	case len(p.Name) > maxNameLength:
		details["name"] = fmt.Sprintf("must be at most %d", maxNameLength)
	}
	switch {
	case p.Address == "":
		details["address"] = "is required"
	case len(p.Address) > maxAddressLength:
		details["address"] = fmt.Sprintf("must be at most %d", maxAddressLength)
	}
	if !types.IsPostalCode(p.PostalCode) {
		details["postal_code"] = errInvalidPostalCode
	}
	if len(details) > 0 {
		return ProfileUpdate{}, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return p, nil
}

func validationError(field, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{field: msg})
}

func firstNonBlank(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
