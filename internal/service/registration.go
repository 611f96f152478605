package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/sakif/course-registration/internal/apperror"
	"github.com/sakif/course-registration/internal/model"
	"github.com/sakif/course-registration/internal/registration"
	"github.com/sakif/course-registration/internal/repository"
)

// RegistrationService saves and reads a user's course selections.
//
// REGISTER FLOW:
//  1. Load the user (404 if unknown)
//  2. Load the catalog snapshot (usually from the cache)
//  3. Run the validator, which stops at the first broken rule
//  4. Replace the stored selections and stamp the time in one transaction
//
// A second registration replaces the first one entirely.
type RegistrationService struct {
	users   repository.UserRepository
	catalog repository.CatalogReader
	logger  *slog.Logger
	now     func() time.Time
}

// NewRegistrationService creates a RegistrationService.
// Pass a *catalog.Cached as catalogs to avoid a catalog query per request.
func NewRegistrationService(
	users repository.UserRepository,
	catalogs repository.CatalogReader,
	logger *slog.Logger,
) *RegistrationService {
	return &RegistrationService{
		users:   users,
		catalog: catalogs,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Register validates selections and stores them as the user's registration.
func (s *RegistrationService) Register(ctx context.Context, userID string, selections []model.SelectionInput) (*model.Registration, error) {
	ctx, span := tracer.Start(ctx, "registration.Register")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.Int("selections", len(selections)),
	)

	if _, err := s.lookupUser(ctx, userID); err != nil {
		return nil, fail(span, err)
	}

	cat, err := s.catalog.LoadCatalog(ctx)
	if err != nil {
		return nil, fail(span, fmt.Errorf("service/registration: loading catalog: %w", err))
	}

	enriched, err := registration.Validate(selections, cat)
	if err != nil {
		var verr *registration.ValidationError
		if errors.As(err, &verr) {
			s.logger.Debug("registration rejected",
				slog.String("userID", userID),
				slog.String("reason", string(verr.Reason)),
			)
			return nil, apperror.Wrap(apperror.ErrValidation, string(verr.Reason), verr).
				WithField("courseSelections")
		}
		return nil, fail(span, fmt.Errorf("service/registration: validating: %w", err))
	}

	at := s.now()
	if err := s.users.ReplaceSelections(ctx, userID, enriched, at); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			// the user was deleted between lookup and write
			return nil, userNotFound()
		}
		return nil, fail(span, fmt.Errorf("service/registration: saving selections for user %s: %w", userID, err))
	}

	s.logger.Info("course registration saved",
		slog.String("userID", userID),
		slog.Int("courses", len(enriched)),
	)

	return &model.Registration{
		UserID:       userID,
		Courses:      enriched,
		RegisteredAt: at,
	}, nil
}

// GetRegistration returns the user's saved registration.
func (s *RegistrationService) GetRegistration(ctx context.Context, userID string) (*model.Registration, error) {
	ctx, span := tracer.Start(ctx, "registration.GetRegistration")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	user, err := s.lookupUser(ctx, userID)
	if err != nil {
		return nil, fail(span, err)
	}

	reg := user.Registration()
	if reg == nil {
		return nil, apperror.Wrap(apperror.ErrNotFound, "", ErrRegistrationNotFound)
	}
	reg.Courses = append([]model.Selection(nil), reg.Courses...)

	return reg, nil
}

// Catalog returns the course and lecturer lists shown on the selection page.
func (s *RegistrationService) Catalog(ctx context.Context) (*model.Catalog, error) {
	ctx, span := tracer.Start(ctx, "registration.Catalog")
	defer span.End()

	cat, err := s.catalog.LoadCatalog(ctx)
	if err != nil {
		return nil, fail(span, fmt.Errorf("service/registration: loading catalog: %w", err))
	}
	return cat, nil
}

func (s *RegistrationService) lookupUser(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, userNotFound()
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, userNotFound()
		}
		return nil, fmt.Errorf("service/registration: fetching user %s: %w", userID, err)
	}
	return user, nil
}
