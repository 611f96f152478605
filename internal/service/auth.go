// Package service contains the business logic layer of the application.
//
// THE LAYERS:
//
//	Handler (HTTP)      → parses requests, writes responses
//	Service (business)  → validates, enforces rules, orchestrates
//	Repository (data)   → reads/writes the database
//
// Services return *apperror.AppError for anything a client caused and plain
// wrapped errors for infrastructure failures. Handlers turn the former into
// 4xx responses and the latter into a logged 500.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sakif/course-registration/internal/apperror"
	"github.com/sakif/course-registration/internal/auth"
	"github.com/sakif/course-registration/internal/model"
	"github.com/sakif/course-registration/internal/repository"
)

// tracer resolves against the global provider, which internal/tracing
// replaces at startup. Until then it is a no-op.
var tracer = otel.Tracer("github.com/sakif/course-registration/internal/service")

// AuthService handles account creation, login and sessions.
//
//	AuthHandler (HTTP) → AuthService → UserRepository (DB)
//	                               ↘ TokenService (JWT), PasswordService (bcrypt)
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// RegisterInput is the sign-up form.
type RegisterInput struct {
	FirstName string
	LastName  string
	IDNumber  string
	Email     string
	Password  string
}

// normalized trims every field except the password and lower-cases the
// email, which is how emails are stored and looked up.
func (in RegisterInput) normalized() RegisterInput {
	return RegisterInput{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		IDNumber:  strings.TrimSpace(in.IDNumber),
		Email:     normalizeEmail(in.Email),
		Password:  in.Password,
	}
}

// AuthResult bundles the user and the issued token so the handler can set
// the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates a new account.
//
// Duplicates are checked up front for a friendly error, and again by the
// store's UNIQUE constraints, which catch two sign-ups racing for the same
// email or ID number.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	ctx, span := tracer.Start(ctx, "auth.Register")
	defer span.End()

	in = in.normalized()
	if in.FirstName == "" || in.LastName == "" || in.IDNumber == "" || in.Email == "" || in.Password == "" {
		return nil, apperror.ValidationFailed("", "All fields are required")
	}
	if !validEmail(in.Email) {
		return nil, apperror.ValidationFailed("email", "Invalid email address")
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("Password must be %d bytes or fewer", auth.MaxPasswordBytes)).
			WithCause(auth.ErrPasswordTooLong)
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, duplicateEmail()
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fail(span, fmt.Errorf("service/auth: checking email: %w", err))
	}

	taken, err := s.users.ExistsByIDNumber(ctx, in.IDNumber)
	if err != nil {
		return nil, fail(span, fmt.Errorf("service/auth: checking ID number: %w", err))
	}
	if taken {
		return nil, duplicateIDNumber()
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fail(span, fmt.Errorf("service/auth: %w", err))
	}

	user := &model.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		IDNumber:     in.IDNumber,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && errors.Is(err, apperror.ErrConflict) {
			if appErr.Field == "idNumber" {
				return nil, duplicateIDNumber()
			}
			return nil, duplicateEmail()
		}
		return nil, fail(span, fmt.Errorf("service/auth: creating user: %w", err))
	}

	span.SetAttributes(attribute.String("user.id", user.ID))
	s.logger.Info("user registered", slog.String("userID", user.ID))

	return user, nil
}

// Login checks credentials and issues a session token.
//
// An unknown email and a wrong password produce the same error, and the
// unknown-email path still pays for one bcrypt comparison, so neither the
// response nor its timing tells a caller which accounts exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	ctx, span := tracer.Start(ctx, "auth.Login")
	defer span.End()

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("", "Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			_ = s.passwords.VerifyDummy(password)
			return nil, invalidCredentials()
		}
		return nil, fail(span, fmt.Errorf("service/auth: looking up user: %w", err))
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.logger.Debug("login rejected", slog.String("userID", user.ID))
			return nil, invalidCredentials()
		}
		return nil, fail(span, fmt.Errorf("service/auth: verifying password for user %s: %w", user.ID, err))
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fail(span, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err))
	}

	span.SetAttributes(attribute.String("user.id", user.ID))
	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// Logout revokes the session token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, token string) {
	_, span := tracer.Start(ctx, "auth.Logout")
	defer span.End()

	s.tokens.Revoke(token)
}

// GetUserByID returns the user for the given ID. It backs GET /auth/me.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	ctx, span := tracer.Start(ctx, "auth.GetUserByID")
	defer span.End()

	if id == "" {
		return nil, userNotFound()
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, userNotFound()
		}
		return nil, fail(span, fmt.Errorf("service/auth: fetching user %s: %w", id, err))
	}

	return user, nil
}

// ValidateToken validates a session token and returns the user ID it encodes.
func (s *AuthService) ValidateToken(tokenStr string) (string, error) {
	userID, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return "", fmt.Errorf("service/auth: %w", err)
	}
	return userID, nil
}

// fail records err on the span and returns it unchanged.
func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func duplicateEmail() *apperror.AppError {
	return apperror.ValidationFailed("email", auth.ErrDuplicateEmail.Error()).
		WithCause(auth.ErrDuplicateEmail)
}

func duplicateIDNumber() *apperror.AppError {
	return apperror.ValidationFailed("idNumber", auth.ErrDuplicateIDNumber.Error()).
		WithCause(auth.ErrDuplicateIDNumber)
}

func invalidCredentials() *apperror.AppError {
	return apperror.Unauthorized(auth.ErrInvalidCredentials.Error()).
		WithCause(auth.ErrInvalidCredentials)
}

func userNotFound() *apperror.AppError {
	return apperror.NotFound("User").WithCause(ErrUserNotFound)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validEmail accepts a bare address only; "Name <a@b.c>" is rejected.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
