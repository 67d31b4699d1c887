package service

import (
	"context"
	"fmt"

	"github.com/skilledge/skilledge-server/internal/logger"
	"github.com/skilledge/skilledge-server/internal/model"
)

type Courses struct {
	store  model.CourseStore
	logger *logger.Logger
}

func NewCourses(store model.CourseStore, logger *logger.Logger) *Courses {
	return &Courses{store: store, logger: logger}
}

func (s *Courses) List(ctx context.Context) ([]model.Course, error) {
	courses, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

func (s *Courses) Get(ctx context.Context, slug string) (model.Course, error) {
	course, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		return model.Course{}, fmt.Errorf("failed to get course %q: %w", slug, err)
	}
	return course, nil
}

// SeedDemo inserts the demo catalogue. Courses that already exist are kept.
func (s *Courses) SeedDemo(ctx context.Context) ([]model.Course, error) {
	demo := model.DemoCourses()
	seeded := make([]model.Course, 0, len(demo))
	for _, c := range demo {
		stored, err := s.store.CreateIfAbsent(ctx, c)
		if err != nil {
			s.logger.Error("Courses service: failed to seed course",
				"slug", c.Slug,
				"error", err.Error())
			return nil, fmt.Errorf("failed to seed course %q: %w", c.Slug, err)
		}
		seeded = append(seeded, stored)
	}

	s.logger.Info("Courses service: demo courses seeded", "count", len(seeded))
	return seeded, nil
}
