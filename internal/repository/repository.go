// Package repository declares the storage contracts the service layer
// depends on. Implementations live in subpackages (see sqldb).
package repository

import (
	"context"
	"time"

	"github.com/sakif/course-registration/internal/model"
)

// UserRepository is the identity store.
//
// Create returns an apperror conflict whose Field is "email" or "idNumber"
// when a uniqueness constraint is violated. Lookups return apperror
// not-found errors for missing users.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByIDNumber(ctx context.Context, idNumber string) (bool, error)

	// ReplaceSelections atomically swaps the user's selection list and
	// stamps the registration time. On error nothing is changed.
	ReplaceSelections(ctx context.Context, userID string, selections []model.Selection, at time.Time) error
}

// CatalogReader is the read side of the catalog store; it is all the
// request path needs.
type CatalogReader interface {
	LoadCatalog(ctx context.Context) (*model.Catalog, error)
}

// CatalogRepository adds the seed-time write.
type CatalogRepository interface {
	CatalogReader
	ReplaceCatalog(ctx context.Context, catalog *model.Catalog) error
}
