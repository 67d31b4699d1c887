package model

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByName(ctx context.Context, name string) (User, error)
	Create(ctx context.Context, user User) (User, error)
	// Mutate applies fn to the stored user as one atomic read-modify-write.
	// A user that does not exist yet is created with NewUser before fn runs.
	// Returning an error from fn aborts the write.
	Mutate(ctx context.Context, name string, fn func(user *User) error) (User, error)
	// List returns all users in insertion order.
	List(ctx context.Context) ([]User, error)
}

// User is the authoritative progress record of a learner.
type User struct {
	ID           uuid.UUID        `json:"id"`
	Name         string           `json:"name"`
	Email        string           `json:"email,omitempty"`
	PasswordHash string           `json:"-"`
	Points       int              `json:"points"`
	Badges       []string         `json:"badges"`
	Path         *Path            `json:"path"`
	Modules      []ModuleProgress `json:"modules"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// ModuleProgress marks a module the user reported as completed.
type ModuleProgress struct {
	ID        string `json:"id"`
	Completed bool   `json:"completed"`
}

// NewUser returns a user with zero points, no badges and no path.
func NewUser(name string) User {
	now := time.Now().UTC()
	return User{
		ID:        uuid.New(),
		Name:      name,
		Badges:    []string{},
		Modules:   []ModuleProgress{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasBadge reports whether the badge label is already granted.
func (u *User) HasBadge(label string) bool {
	return slices.Contains(u.Badges, label)
}

// AddBadge inserts label into the badge set and reports whether it was new.
func (u *User) AddBadge(label string) bool {
	if u.HasBadge(label) {
		return false
	}
	u.Badges = append(u.Badges, label)
	return true
}

// CompleteModule marks the module completed, appending it when absent.
// It reports whether the module transitioned from absent or incomplete.
func (u *User) CompleteModule(id string) bool {
	for i := range u.Modules {
		if u.Modules[i].ID == id {
			if u.Modules[i].Completed {
				return false
			}
			u.Modules[i].Completed = true
			return true
		}
	}
	u.Modules = append(u.Modules, ModuleProgress{ID: id, Completed: true})
	return true
}

// Normalize replaces nil collections so the record always encodes as arrays.
func (u *User) Normalize() {
	if u.Badges == nil {
		u.Badges = []string{}
	}
	if u.Modules == nil {
		u.Modules = []ModuleProgress{}
	}
}

// Clone returns a deep copy so callers cannot alias stored slices.
func (u User) Clone() User {
	out := u
	out.Badges = slices.Clone(u.Badges)
	out.Modules = slices.Clone(u.Modules)
	if u.Path != nil {
		p := u.Path.Clone()
		out.Path = &p
	}
	out.Normalize()
	return out
}
