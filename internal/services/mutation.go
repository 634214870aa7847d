package services

import (
	"context"
	"log/slog"

	"github.com/joshua-takyi/estately/internal/cache"
)

// Cache names shared by the query and mutation sides.
const (
	KeyProperties         = "properties"
	KeyProperty           = "property"
	KeyMyProperties       = "my-properties"
	KeyAllPropertiesAdmin = "all-properties-admin"
	KeyFavorites          = "favorites"
	KeyFavoriteIds        = "favorite-ids"
	KeyAllUsers           = "all-users"
)

// listingViews are the cached views that embed property or image rows.
var listingViews = []string{
	KeyProperties,
	KeyMyProperties,
	KeyProperty,
	KeyAllPropertiesAdmin,
	KeyFavorites,
}

// mutation describes one write: what it invalidates on success and the
// notifications it produces.
type mutation struct {
	name        string
	invalidates []string
	success     string
	failure     string
}

// runMutation performs fn and, only when it succeeds, invalidates the
// mutation's cache names. A failure is returned as a *MutationError and
// leaves the cache as it was.
func runMutation[T any](ctx context.Context, c *cache.Coordinator, logger *slog.Logger, m mutation, fn func(ctx context.Context) (T, error)) (T, error) {
	result, err := fn(ctx)
	if err != nil {
		logger.Error("mutation failed", "mutation", m.name, "error", err)
		var zero T
		return zero, &MutationError{Title: m.failure, Err: err}
	}

	if err := c.Invalidate(ctx, m.invalidates...); err != nil {
		// The write went through; a stale entry is refetched after the next
		// invalidation of the same name.
		logger.Warn("cache invalidation failed", "mutation", m.name, "error", err)
	}
	if m.success != "" {
		logger.Info(m.success, "mutation", m.name)
	}
	return result, nil
}
