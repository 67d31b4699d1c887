package client

import (
	"context"
	"fmt"

	"github.com/skilledge/skilledge-server/internal/logger"
	"github.com/skilledge/skilledge-server/internal/model"
)

// CourseFetcher reads the course catalogue from the server.
type CourseFetcher interface {
	Courses(ctx context.Context) ([]model.Course, error)
}

// CourseCache keeps the last fetched catalogue for offline use.
type CourseCache interface {
	SaveCourses(ctx context.Context, courses []model.Course) error
	Courses(ctx context.Context) ([]model.Course, error)
}

// Catalog serves courses from the server, falling back to the local cache
// while the server is unreachable.
type Catalog struct {
	fetcher CourseFetcher
	cache   CourseCache
	logger  *logger.Logger
}

func NewCatalog(fetcher CourseFetcher, cache CourseCache, logger *logger.Logger) *Catalog {
	return &Catalog{fetcher: fetcher, cache: cache, logger: logger}
}

// Courses returns the catalogue and whether it came from the cache. Only
// network failures fall back to the cache; other errors are returned.
func (c *Catalog) Courses(ctx context.Context) ([]model.Course, bool, error) {
	courses, err := c.fetcher.Courses(ctx)
	if err == nil {
		if err := c.cache.SaveCourses(ctx, courses); err != nil {
			c.logger.Warn("Catalog: failed to cache courses", "error", err.Error())
		}
		return courses, false, nil
	}
	if !model.IsNetwork(err) {
		return nil, false, err
	}

	c.logger.Info("Catalog: server unreachable, using cached courses", "error", err.Error())
	cached, cerr := c.cache.Courses(ctx)
	if cerr != nil {
		return nil, false, fmt.Errorf("failed to read cached courses: %w", cerr)
	}
	return cached, true, nil
}
