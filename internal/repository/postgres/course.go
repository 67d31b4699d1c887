package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/skilledge/skilledge-server/internal/model"
)

var _ model.CourseStore = (*CourseRepository)(nil)

type CourseRepository struct {
	db *Connection
}

func NewCourseRepository(db *Connection) *CourseRepository {
	return &CourseRepository{
		db: db,
	}
}

func scanCourse(row pgx.Row) (model.Course, error) {
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		return model.Course{}, err
	}
	var course model.Course
	if err := json.Unmarshal(raw, &course); err != nil {
		return model.Course{}, fmt.Errorf("failed to decode course document: %w", err)
	}
	return course, nil
}

func (r *CourseRepository) List(ctx context.Context) ([]model.Course, error) {
	rows, err := r.db.Query(ctx, `SELECT doc FROM courses ORDER BY seq`)
	if err != nil {
		return nil, model.NewStorageError("list courses", err)
	}
	defer rows.Close()

	courses := make([]model.Course, 0)
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, model.NewStorageError("scan course", err)
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, model.NewStorageError("list courses", err)
	}

	return courses, nil
}

func (r *CourseRepository) GetBySlug(ctx context.Context, slug string) (model.Course, error) {
	course, err := scanCourse(r.db.QueryRow(ctx, `SELECT doc FROM courses WHERE slug = $1`, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Course{}, model.ErrNotFound
		}
		return model.Course{}, model.NewStorageError("get course", err)
	}

	return course, nil
}

func (r *CourseRepository) CreateIfAbsent(ctx context.Context, course model.Course) (model.Course, error) {
	doc, err := json.Marshal(course)
	if err != nil {
		return model.Course{}, fmt.Errorf("failed to encode course document: %w", err)
	}

	_, err = r.db.Exec(ctx, `INSERT INTO courses (slug, doc) VALUES ($1, $2) ON CONFLICT (slug) DO NOTHING`, course.Slug, doc)
	if err != nil {
		return model.Course{}, model.NewStorageError("create course", err)
	}

	return r.GetBySlug(ctx, course.Slug)
}
