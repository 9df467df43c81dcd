package application

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/example/workplace-booking/internal/persistence"
)

// UserStore captures the persistence operations needed by the user service.
type UserStore interface {
	CreateUser(ctx context.Context, user persistence.User) error
	UpdateUser(ctx context.Context, user persistence.User) error
	GetUser(ctx context.Context, id string) (persistence.User, error)
	GetUserByEmail(ctx context.Context, email string) (persistence.User, error)
	ListUsers(ctx context.Context) ([]persistence.User, error)
	DeleteUser(ctx context.Context, id string) error
	UpsertCredentials(ctx context.Context, creds persistence.Credentials) error
	GetCredentials(ctx context.Context, userID string) (persistence.Credentials, error)
}

// UserService orchestrates validation, authorization, and persistence for users.
type UserService struct {
	users       UserStore
	idGenerator func() string
	now         func() time.Time
}

// NewUserService wires dependencies for the user service.
func NewUserService(users UserStore, idGenerator func() string, now func() time.Time) *UserService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{users: users, idGenerator: idGenerator, now: now}
}

// CreateUser validates input and persists a new user for administrators.
// When the input carries a password the account's credentials are stored in
// the same call.
func (s *UserService) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if !params.Principal.IsAdmin {
		return User{}, ErrUnauthorized
	}

	normalized := normalizeUserInput(params.Input)
	vErr := validateUserInput(normalized, normalized.Password != "")
	if vErr.HasErrors() {
		return User{}, vErr
	}

	record := persistence.User{
		ID:          s.idGenerator(),
		Email:       normalized.Email,
		DisplayName: normalized.DisplayName,
		IsAdmin:     normalized.IsAdmin,
		CreatedAt:   s.now(),
	}
	record.UpdatedAt = record.CreatedAt

	if s.users == nil {
		return toUser(record), nil
	}

	if err := s.users.CreateUser(ctx, record); err != nil {
		return User{}, mapUserRepoError(err)
	}

	if normalized.Password != "" {
		hash, err := HashPassword(normalized.Password, DefaultArgon2idParams)
		if err != nil {
			return User{}, err
		}
		creds := persistence.Credentials{UserID: record.ID, PasswordHash: hash}
		if err := s.users.UpsertCredentials(ctx, creds); err != nil {
			return User{}, mapUserRepoError(err)
		}
	}

	return toUser(record), nil
}

// UpdateUser validates input and updates an existing user for administrators.
func (s *UserService) UpdateUser(ctx context.Context, params UpdateUserParams) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if !params.Principal.IsAdmin {
		return User{}, ErrUnauthorized
	}
	if s.users == nil {
		return User{}, fmt.Errorf("user store not configured")
	}

	existing, err := s.users.GetUser(ctx, params.UserID)
	if err != nil {
		return User{}, mapUserRepoError(err)
	}

	normalized := normalizeUserInput(params.Input)
	vErr := validateUserInput(normalized, false)
	if vErr.HasErrors() {
		return User{}, vErr
	}

	updated := existing
	updated.Email = normalized.Email
	updated.DisplayName = normalized.DisplayName
	updated.IsAdmin = normalized.IsAdmin
	updated.UpdatedAt = s.now()

	if err := s.users.UpdateUser(ctx, updated); err != nil {
		return User{}, mapUserRepoError(err)
	}

	return toUser(updated), nil
}

// SetPassword rehashes and stores a user's password. Administrators may set
// any user's password; other principals only their own.
func (s *UserService) SetPassword(ctx context.Context, params SetPasswordParams) error {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	if !params.Principal.IsAdmin && params.Principal.UserID != params.UserID {
		return ErrUnauthorized
	}
	if s.users == nil {
		return fmt.Errorf("user store not configured")
	}

	vErr := &ValidationError{}
	validatePassword(params.Password, vErr)
	if vErr.HasErrors() {
		return vErr
	}

	if _, err := s.users.GetUser(ctx, params.UserID); err != nil {
		return mapUserRepoError(err)
	}

	hash, err := HashPassword(params.Password, DefaultArgon2idParams)
	if err != nil {
		return err
	}

	creds := persistence.Credentials{UserID: params.UserID, PasswordHash: hash}
	if err := s.users.UpsertCredentials(ctx, creds); err != nil {
		return mapUserRepoError(err)
	}
	return nil
}

// DeleteUser removes a user when requested by an administrator.
func (s *UserService) DeleteUser(ctx context.Context, principal Principal, userID string) error {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if s.users == nil {
		return fmt.Errorf("user store not configured")
	}

	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return mapUserRepoError(err)
	}

	return nil
}

// GetUser returns a single user. Administrators may read any account; other
// principals only their own.
func (s *UserService) GetUser(ctx context.Context, principal Principal, userID string) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if !principal.IsAdmin && principal.UserID != userID {
		return User{}, ErrUnauthorized
	}
	if s.users == nil {
		return User{}, fmt.Errorf("user store not configured")
	}

	record, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return User{}, mapUserRepoError(err)
	}
	return toUser(record), nil
}

// ListUsers returns all users for administrators.
func (s *UserService) ListUsers(ctx context.Context, principal Principal) ([]User, error) {
	if s == nil {
		return nil, fmt.Errorf("UserService is nil")
	}
	if !principal.IsAdmin {
		return nil, ErrUnauthorized
	}
	if s.users == nil {
		return nil, nil
	}

	records, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]User, 0, len(records))
	for _, record := range records {
		out = append(out, toUser(record))
	}

	sort.Slice(out, func(i, j int) bool {
		if strings.EqualFold(out[i].Email, out[j].Email) {
			return out[i].ID < out[j].ID
		}
		return strings.ToLower(out[i].Email) < strings.ToLower(out[j].Email)
	})

	return out, nil
}

func toUser(record persistence.User) User {
	return User{
		ID:          record.ID,
		Email:       record.Email,
		DisplayName: record.DisplayName,
		IsAdmin:     record.IsAdmin,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}

func normalizeUserInput(input UserInput) UserInput {
	return UserInput{
		Email:       strings.ToLower(strings.TrimSpace(input.Email)),
		DisplayName: strings.TrimSpace(input.DisplayName),
		IsAdmin:     input.IsAdmin,
		Password:    input.Password,
	}
}

func validateUserInput(input UserInput, withPassword bool) *ValidationError {
	vErr := &ValidationError{}

	if input.Email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		vErr.add("email", "email is invalid")
	}

	if input.DisplayName == "" {
		vErr.add("display_name", "display name is required")
	}

	if withPassword {
		validatePassword(input.Password, vErr)
	}

	return vErr
}

func validatePassword(password string, vErr *ValidationError) {
	if utf8.RuneCountInString(password) < 8 {
		vErr.add("password", "password must be at least 8 characters")
	}
}

func mapUserRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	return err
}
