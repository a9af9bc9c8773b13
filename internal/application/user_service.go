package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/example/room-reservation/internal/persistence"
)

// PasswordHasher derives a storable hash from a plaintext password.
type PasswordHasher func(password string) (string, error)

// UserService orchestrates validation, authorization, and persistence for
// user accounts. All mutations require an administrator.
type UserService struct {
	users        persistence.UserRepository
	hashPassword PasswordHasher
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewUserService wires dependencies for the user service.
func NewUserService(users persistence.UserRepository, hashPassword PasswordHasher, idGenerator func() string, now func() time.Time, logger *slog.Logger) *UserService {
	if hashPassword == nil {
		hashPassword = HashPassword
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{
		users:        users,
		hashPassword: hashPassword,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// Create validates input and persists a new user for administrators.
func (s *UserService) Create(ctx context.Context, params CreateUserParams) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Create", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "user create refused", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "user created")
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	normalized := normalizeUserInput(params.Input)
	vErr := validateUserInput(normalized, true)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var hash string
	hash, err = s.hashPassword(normalized.Password)
	if err != nil {
		return
	}

	createdAt := s.now()
	record := persistence.User{
		ID:           s.idGenerator(),
		Email:        normalized.Email,
		DisplayName:  normalized.DisplayName,
		PasswordHash: hash,
		Role:         string(normalized.Role),
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	if err = mapRepoError(s.users.CreateUser(ctx, record)); err != nil {
		return
	}

	user = userFromRecord(record)
	return
}

// Update validates input and updates an existing user for administrators.
// An empty password keeps the stored hash.
func (s *UserService) Update(ctx context.Context, params UpdateUserParams) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Update",
		"principal_id", params.Principal.UserID,
		"user_id", params.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "user update refused", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "user updated")
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	var existing persistence.User
	existing, err = s.users.GetUser(ctx, params.UserID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	normalized := normalizeUserInput(params.Input)
	vErr := validateUserInput(normalized, false)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.Email = normalized.Email
	updated.DisplayName = normalized.DisplayName
	updated.Role = string(normalized.Role)
	updated.UpdatedAt = s.now()
	if normalized.Password != "" {
		if updated.PasswordHash, err = s.hashPassword(normalized.Password); err != nil {
			return
		}
	}

	if err = mapRepoError(s.users.UpdateUser(ctx, updated)); err != nil {
		return
	}

	user = userFromRecord(updated)
	return
}

// Delete removes a user for administrators. A user who still holds
// reservations is refused with ErrConflict.
func (s *UserService) Delete(ctx context.Context, principal Principal, userID string) error {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return fmt.Errorf("user repository not configured")
	}
	if !principal.IsAdmin() {
		return ErrUnauthorized
	}

	if err := s.users.DeleteUser(ctx, userID); err != nil {
		if isConstraintViolation(err) {
			return ErrConflict
		}
		return mapRepoError(err)
	}
	return nil
}

// Get returns one user. Principals may read themselves; administrators may
// read anyone.
func (s *UserService) Get(ctx context.Context, principal Principal, userID string) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}
	if userID != principal.UserID && !principal.IsAdmin() {
		return User{}, ErrUnauthorized
	}

	record, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return User{}, mapRepoError(err)
	}
	return userFromRecord(record), nil
}

// List returns every account, for administrators only.
func (s *UserService) List(ctx context.Context, principal Principal) ([]User, error) {
	if s == nil {
		return nil, fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return nil, fmt.Errorf("user repository not configured")
	}
	if !principal.IsAdmin() {
		return nil, ErrUnauthorized
	}

	records, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}

	users := make([]User, 0, len(records))
	for _, record := range records {
		users = append(users, userFromRecord(record))
	}
	return users, nil
}

func normalizeUserInput(input UserInput) UserInput {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	if input.Role == "" {
		input.Role = RoleUser
	}
	return input
}

func validateUserInput(input UserInput, passwordRequired bool) *ValidationError {
	vErr := &ValidationError{}
	if input.Email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		vErr.add("email", "email is not a valid address")
	}
	if input.DisplayName == "" {
		vErr.add("display_name", "display name is required")
	}
	if !input.Role.Valid() {
		vErr.add("role", "role must be USER or ADMIN")
	}
	if passwordRequired && input.Password == "" {
		vErr.add("password", "password is required")
	} else if input.Password != "" && len(input.Password) < 8 {
		vErr.add("password", "password must be at least 8 characters")
	}
	return vErr
}
