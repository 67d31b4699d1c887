package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/skilledge/skilledge-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

const userColumns = `id, name, password_hash, doc, created_at, updated_at`

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// userDoc is the progress document stored in the doc column.
type userDoc struct {
	Email   string                 `json:"email,omitempty"`
	Points  int                    `json:"points"`
	Badges  []string               `json:"badges"`
	Path    *model.Path            `json:"path"`
	Modules []model.ModuleProgress `json:"modules"`
}

func encodeUserDoc(user model.User) ([]byte, error) {
	return json.Marshal(userDoc{
		Email:   user.Email,
		Points:  user.Points,
		Badges:  user.Badges,
		Path:    user.Path,
		Modules: user.Modules,
	})
}

func decodeUserDoc(raw []byte, user *model.User) error {
	var doc userDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	user.Email = doc.Email
	user.Points = doc.Points
	user.Badges = doc.Badges
	user.Path = doc.Path
	user.Modules = doc.Modules
	user.Normalize()
	return nil
}

func scanUser(row pgx.Row) (model.User, error) {
	var (
		user model.User
		raw  []byte
	)
	if err := row.Scan(&user.ID, &user.Name, &user.PasswordHash, &raw, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return model.User{}, err
	}
	if err := decodeUserDoc(raw, &user); err != nil {
		return model.User{}, fmt.Errorf("failed to decode user document: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByName(ctx context.Context, name string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE name = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, model.NewStorageError("get user", err)
	}

	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	user.Normalize()
	doc, err := encodeUserDoc(user)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to encode user document: %w", err)
	}

	query := `INSERT INTO users (id, name, password_hash, doc, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT (name) DO NOTHING
			  RETURNING ` + userColumns

	saved, err := scanUser(r.db.QueryRow(ctx, query,
		user.ID, user.Name, user.PasswordHash, doc, user.CreatedAt, user.UpdatedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrAlreadyExists
		}
		return model.User{}, model.NewStorageError("create user", err)
	}

	return saved, nil
}

// Mutate runs fn inside a transaction holding the row lock of the user.
func (r *UserRepository) Mutate(ctx context.Context, name string, fn func(user *model.User) error) (model.User, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return model.User{}, model.NewStorageError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	seed := model.NewUser(name)
	seedDoc, err := encodeUserDoc(seed)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to encode user document: %w", err)
	}

	// Concurrent first syncs for one name race on the insert; the unique
	// constraint lets exactly one of them create the row.
	_, err = tx.Exec(ctx, `INSERT INTO users (id, name, doc, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (name) DO NOTHING`,
		seed.ID, seed.Name, seedDoc, seed.CreatedAt, seed.UpdatedAt,
	)
	if err != nil {
		return model.User{}, model.NewStorageError("create user", err)
	}

	user, err := scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE name = $1 FOR UPDATE`, name))
	if err != nil {
		return model.User{}, model.NewStorageError("lock user", err)
	}

	if err := fn(&user); err != nil {
		return model.User{}, err
	}

	user.Normalize()
	user.UpdatedAt = time.Now().UTC()
	doc, err := encodeUserDoc(user)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to encode user document: %w", err)
	}

	_, err = tx.Exec(ctx, `UPDATE users SET password_hash = $2, doc = $3, updated_at = $4 WHERE name = $1`,
		name, user.PasswordHash, doc, user.UpdatedAt,
	)
	if err != nil {
		return model.User{}, model.NewStorageError("update user", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.User{}, model.NewStorageError("commit transaction", err)
	}

	return user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY seq`)
	if err != nil {
		return nil, model.NewStorageError("list users", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, model.NewStorageError("scan user", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, model.NewStorageError("list users", err)
	}

	return users, nil
}
