package file

import (
	"context"
	"slices"

	"github.com/skilledge/skilledge-server/internal/model"
)

var _ model.CourseStore = courseView{}

// Courses returns the store viewed as a course store.
func (s *Store) Courses() model.CourseStore {
	return courseView{s}
}

type courseView struct {
	s *Store
}

func (v courseView) List(ctx context.Context) ([]model.Course, error) {
	return v.s.ListCourses(ctx)
}

func (v courseView) GetBySlug(ctx context.Context, slug string) (model.Course, error) {
	return v.s.GetCourseBySlug(ctx, slug)
}

func (v courseView) CreateIfAbsent(ctx context.Context, course model.Course) (model.Course, error) {
	return v.s.CreateCourseIfAbsent(ctx, course)
}

func (s *Store) ListCourses(_ context.Context) ([]model.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.doc.Courses), nil
}

func (s *Store) GetCourseBySlug(_ context.Context, slug string) (model.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.doc.Courses {
		if c.Slug == slug {
			return c, nil
		}
	}
	return model.Course{}, model.ErrNotFound
}

func (s *Store) CreateCourseIfAbsent(_ context.Context, course model.Course) (model.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.doc.Courses {
		if c.Slug == course.Slug {
			return c, nil
		}
	}

	if course.ID == 0 {
		course.ID = len(s.doc.Courses) + 1
	}
	prev := s.doc.Courses
	s.doc.Courses = append(slices.Clone(prev), course)
	if err := s.save(); err != nil {
		s.doc.Courses = prev
		return model.Course{}, err
	}
	return course, nil
}
