package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	library "lending-service/internal/domain/library"
	"lending-service/internal/store"
	apperrors "lending-service/pkg/errors"
)

// UserRepo accesses the users collection.
type UserRepo struct {
	client store.Client
	log    *zap.Logger
}

// NewUserRepo creates a user repository over the given store client.
func NewUserRepo(client store.Client, log *zap.Logger) *UserRepo {
	return &UserRepo{client: client, log: log}
}

// Create stores a new user and returns it with its assigned id.
func (r *UserRepo) Create(ctx context.Context, u *library.User) (*library.User, error) {
	fields := map[string]any{
		"name":     u.Name,
		"email":    u.Email,
		"password": u.Password,
		"role":     u.Role,
	}
	record, err := r.client.Create(ctx, store.Users, fields)
	if err != nil {
		return nil, apperrors.NewStoreError("create user", err)
	}
	return decodeUser(record)
}

// GetByID returns a single user.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*library.User, error) {
	record, err := r.client.GetByID(ctx, store.Users, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NewNotFound("user", id)
	}
	if err != nil {
		return nil, apperrors.NewStoreError("get user", err)
	}
	return decodeUser(record)
}

// GetByEmail returns the user with the given email, or nil when no such
// user exists. Email comparison is exact, as stored.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*library.User, error) {
	records, err := r.client.List(ctx, store.Users, store.Filters{"email": email})
	if err != nil {
		return nil, apperrors.NewStoreError("query user by email", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return decodeUser(records[0])
}

// ListAll returns every user.
func (r *UserRepo) ListAll(ctx context.Context) ([]library.User, error) {
	records, err := r.client.List(ctx, store.Users, nil)
	if err != nil {
		return nil, apperrors.NewStoreError("list users", err)
	}
	users := make([]library.User, 0, len(records))
	for _, record := range records {
		u, err := decodeUser(record)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, nil
}

func decodeUser(record json.RawMessage) (*library.User, error) {
	var u library.User
	if err := strict.Unmarshal(record, &u); err != nil {
		return nil, fmt.Errorf("malformed user record: %w", err)
	}
	return &u, nil
}
