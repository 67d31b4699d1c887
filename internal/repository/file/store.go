// Package file implements the user and course stores on a single JSON file.
// It is used when no database is configured or the database is unreachable.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/skilledge/skilledge-server/internal/model"
)

var _ model.UserStore = (*Store)(nil)

type storedUser struct {
	model.User
	PasswordHash string `json:"passwordHash,omitempty"`
}

type document struct {
	Users   []storedUser   `json:"users"`
	Courses []model.Course `json:"courses"`
}

// Store keeps every record in memory and rewrites the whole file on each
// mutation. All access is serialized by one mutex.
type Store struct {
	mu   sync.Mutex
	path string
	doc  document
}

// Open loads the store from path. A missing file is created and seeded with
// the demo courses.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.doc = document{Users: []storedUser{}, Courses: model.DemoCourses()}
		if err := s.save(); err != nil {
			return nil, err
		}
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}

	if err := json.Unmarshal(raw, &s.doc); err != nil {
		return nil, fmt.Errorf("failed to decode store file: %w", err)
	}
	if s.doc.Users == nil {
		s.doc.Users = []storedUser{}
	}

	return s, nil
}

// save writes the document to a temporary file and renames it over the
// target so readers never observe a partial write.
func (s *Store) save() error {
	raw, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return model.NewStorageError("encode store", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return model.NewStorageError("create store directory", err)
	}

	tmp, err := os.CreateTemp(dir, ".store-*.json")
	if err != nil {
		return model.NewStorageError("create temp file", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return model.NewStorageError("write temp file", err)
	}
	if err := tmp.Close(); err != nil {
		return model.NewStorageError("close temp file", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return model.NewStorageError("replace store file", err)
	}

	return nil
}

func (s *Store) indexOf(name string) int {
	for i := range s.doc.Users {
		if s.doc.Users[i].Name == name {
			return i
		}
	}
	return -1
}

func fromStored(su storedUser) model.User {
	u := su.User.Clone()
	u.PasswordHash = su.PasswordHash
	return u
}

func toStored(u model.User) storedUser {
	c := u.Clone()
	return storedUser{User: c, PasswordHash: u.PasswordHash}
}

func (s *Store) GetByName(_ context.Context, name string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(name)
	if i < 0 {
		return model.User{}, model.ErrNotFound
	}
	return fromStored(s.doc.Users[i]), nil
}

func (s *Store) Create(_ context.Context, user model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(user.Name) >= 0 {
		return model.User{}, model.ErrAlreadyExists
	}

	s.doc.Users = append(s.doc.Users, toStored(user))
	if err := s.save(); err != nil {
		s.doc.Users = s.doc.Users[:len(s.doc.Users)-1]
		return model.User{}, err
	}
	return fromStored(s.doc.Users[len(s.doc.Users)-1]), nil
}

func (s *Store) Mutate(_ context.Context, name string, fn func(user *model.User) error) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(name)
	var user model.User
	if i < 0 {
		user = model.NewUser(name)
	} else {
		user = fromStored(s.doc.Users[i])
	}

	if err := fn(&user); err != nil {
		return model.User{}, err
	}
	user.UpdatedAt = time.Now().UTC()

	prev := s.doc.Users
	next := make([]storedUser, len(prev), len(prev)+1)
	copy(next, prev)
	if i < 0 {
		next = append(next, toStored(user))
	} else {
		next[i] = toStored(user)
	}

	s.doc.Users = next
	if err := s.save(); err != nil {
		s.doc.Users = prev
		return model.User{}, err
	}

	return user.Clone(), nil
}

func (s *Store) List(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]model.User, 0, len(s.doc.Users))
	for _, su := range s.doc.Users {
		users = append(users, fromStored(su))
	}
	return users, nil
}

// Ping checks that the store file is still reachable.
func (s *Store) Ping(_ context.Context) error {
	if _, err := os.Stat(s.path); err != nil {
		return model.NewStorageError("ping", err)
	}
	return nil
}
