// Package identity implements registration, login and actor resolution
// over the users collection. The engines themselves never touch session
// state; whoever serves a request resolves the actor here and passes it
// down explicitly.
package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	library "lending-service/internal/domain/library"
	apperrors "lending-service/pkg/errors"
)

// UserRepository is the user access the identity service needs.
type UserRepository interface {
	Create(ctx context.Context, u *library.User) (*library.User, error)
	GetByID(ctx context.Context, id int64) (*library.User, error)
	GetByEmail(ctx context.Context, email string) (*library.User, error)
}

// Usecase implements account registration and sign-in.
type Usecase struct {
	users    UserRepository
	log      *zap.Logger
	validate *validator.Validate
}

// New creates an identity service over the given repository.
func New(users UserRepository, log *zap.Logger) *Usecase {
	return &Usecase{users: users, log: log, validate: validator.New()}
}

// Register creates a new account with role user. The password is hashed
// before it reaches the store; the stored value stays an opaque string
// as far as the store is concerned.
func (uc *Usecase) Register(ctx context.Context, in RegisterRequest) (*Account, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	if err := uc.fieldErrors(in); err != nil {
		uc.log.Warn("registration rejected", zap.Error(err))
		return nil, err
	}

	existing, err := uc.users.GetByEmail(ctx, in.Email)
	if err != nil {
		uc.log.Error("failed to check email uniqueness", zap.String("email", in.Email), zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewValidationError(map[string]string{
			"email": "is already registered",
		})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	created, err := uc.users.Create(ctx, &library.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hash),
		Role:     library.RoleUser,
	})
	if err != nil {
		uc.log.Error("failed to create user", zap.String("email", in.Email), zap.Error(err))
		return nil, err
	}

	uc.log.Info("user registered", zap.Int64("user_id", created.ID))
	return toAccount(created), nil
}

// Login verifies credentials and returns the account on success.
func (uc *Usecase) Login(ctx context.Context, in LoginRequest) (*Account, error) {
	if err := uc.fieldErrors(in); err != nil {
		return nil, err
	}

	u, err := uc.users.GetByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		uc.log.Error("failed to look up user", zap.Error(err))
		return nil, err
	}
	if u == nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(in.Password)); err != nil {
		uc.log.Info("failed login attempt", zap.Int64("user_id", u.ID))
		return nil, apperrors.ErrInvalidCredentials
	}

	uc.log.Info("user logged in", zap.Int64("user_id", u.ID))
	return toAccount(u), nil
}

// Resolve turns a user id into an actor, or nil when no such user
// exists. Used by the HTTP layer to establish the acting identity.
func (uc *Usecase) Resolve(ctx context.Context, userID int64) (*library.Actor, error) {
	u, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		var notFound *apperrors.NotFoundError
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, err
	}
	return &library.Actor{ID: u.ID, Name: u.Name, Role: u.Role}, nil
}

func toAccount(u *library.User) *Account {
	return &Account{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func (uc *Usecase) fieldErrors(in any) error {
	err := uc.validate.Struct(in)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		fields[fieldName(e.Field())] = fieldMessage(e)
	}
	return apperrors.NewValidationError(fields)
}

func fieldName(structField string) string {
	switch structField {
	case "ConfirmPassword":
		return "confirmPassword"
	default:
		return strings.ToLower(structField)
	}
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + e.Param() + " characters"
	case "eqfield":
		return "must match password"
	default:
		return "is invalid"
	}
}
