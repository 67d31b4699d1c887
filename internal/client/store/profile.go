package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/skilledge/skilledge-server/internal/model"
)

// SaveUser caches the last known server record of a user.
func (s *Store) SaveUser(ctx context.Context, user model.User) error {
	doc, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (name, doc, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (name) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		user.Name, string(doc), time.Now().UTC())
	if err != nil {
		return model.NewStorageError("save user", err)
	}
	return nil
}

// GetUser returns the cached record or model.ErrNotFound.
func (s *Store) GetUser(ctx context.Context, name string) (model.User, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM users WHERE name = ?`, name).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, model.ErrNotFound
	}
	if err != nil {
		return model.User{}, model.NewStorageError("get user", err)
	}

	var user model.User
	if err := json.Unmarshal([]byte(doc), &user); err != nil {
		return model.User{}, fmt.Errorf("failed to decode cached user: %w", err)
	}
	user.Normalize()
	return user, nil
}

// MarkProgress records an optimistic module completion.
func (s *Store) MarkProgress(ctx context.Context, name, moduleID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO progress (user_name, module_id, completed, completed_at) VALUES (?, ?, 1, ?)
		 ON CONFLICT (user_name, module_id) DO NOTHING`,
		name, moduleID, time.Now().UTC())
	if err != nil {
		return model.NewStorageError("mark progress", err)
	}
	return nil
}

// Progress lists the locally completed modules of a user in completion order.
func (s *Store) Progress(ctx context.Context, name string) ([]model.ModuleProgress, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT module_id, completed FROM progress WHERE user_name = ? ORDER BY completed_at, module_id`, name)
	if err != nil {
		return nil, model.NewStorageError("list progress", err)
	}
	defer rows.Close()

	out := []model.ModuleProgress{}
	for rows.Next() {
		var p model.ModuleProgress
		if err := rows.Scan(&p.ID, &p.Completed); err != nil {
			return nil, model.NewStorageError("scan progress", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, model.NewStorageError("list progress", err)
	}
	return out, nil
}

// SaveCourses upserts courses into the cache by slug.
func (s *Store) SaveCourses(ctx context.Context, courses []model.Course) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.NewStorageError("save courses", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, c := range courses {
		doc, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to encode course %q: %w", c.Slug, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO courses (slug, doc, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT (slug) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
			c.Slug, string(doc), now); err != nil {
			return model.NewStorageError("save courses", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return model.NewStorageError("save courses", err)
	}
	return nil
}

// Courses returns the cached courses ordered by slug.
func (s *Store) Courses(ctx context.Context) ([]model.Course, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM courses ORDER BY slug`)
	if err != nil {
		return nil, model.NewStorageError("list courses", err)
	}
	defer rows.Close()

	out := []model.Course{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, model.NewStorageError("scan course", err)
		}
		var c model.Course
		if err := json.Unmarshal([]byte(doc), &c); err != nil {
			return nil, fmt.Errorf("failed to decode cached course: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, model.NewStorageError("list courses", err)
	}
	return out, nil
}
