package catalog

import (
	"context"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/sakif/course-registration/internal/model"
	"github.com/sakif/course-registration/internal/repository"
)

const snapshotKey = "catalog"

// compile-time check that *Cached can stand in for the store
var _ repository.CatalogReader = (*Cached)(nil)

// Cached is a read-through cache over a CatalogReader.
//
// The catalog is read-only on the request path, so one snapshot is shared by
// all requests until the TTL lapses. Callers must not modify the returned
// catalog. A zero TTL disables caching.
type Cached struct {
	next   repository.CatalogReader
	cache  *gocache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCached wraps next with a snapshot cache.
func NewCached(next repository.CatalogReader, ttl time.Duration, logger *slog.Logger) *Cached {
	return &Cached{
		next:   next,
		cache:  gocache.New(ttl, 2*ttl),
		ttl:    ttl,
		logger: logger,
	}
}

// LoadCatalog returns the cached snapshot, loading it from the store on a miss.
func (c *Cached) LoadCatalog(ctx context.Context) (*model.Catalog, error) {
	if c.ttl <= 0 {
		return c.next.LoadCatalog(ctx)
	}

	if v, found := c.cache.Get(snapshotKey); found {
		if cat, ok := v.(*model.Catalog); ok {
			return cat, nil
		}
		c.logger.Error("catalog cache holds unexpected type")
	}

	cat, err := c.next.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	c.cache.Set(snapshotKey, cat, c.ttl)
	c.logger.Debug("catalog cached",
		slog.Int("courses", len(cat.Courses)),
		slog.Int("lecturers", len(cat.Lecturers)),
	)
	return cat, nil
}

// Invalidate drops the cached snapshot so the next load hits the store.
func (c *Cached) Invalidate() {
	c.cache.Flush()
}
