package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skilledge/skilledge-server/internal/model"
)

func TestNewUserRepository(t *testing.T) {
	db := &Connection{}
	repo := NewUserRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestNewCourseRepository(t *testing.T) {
	db := &Connection{}
	repo := NewCourseRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestUserDoc_RoundTrip(t *testing.T) {
	user := model.NewUser("alice")
	user.PasswordHash = "secret-hash"
	user.Points = 20
	user.AddBadge("Completed: mod1")
	user.CompleteModule("mod1")
	user.Path = &model.Path{Title: "Frontend", Progress: 40, Modules: []model.PathModule{{ID: "mod1", Completed: true}}}

	raw, err := encodeUserDoc(user)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-hash")
	assert.NotContains(t, string(raw), "alice")

	var got model.User
	require.NoError(t, decodeUserDoc(raw, &got))
	assert.Equal(t, 20, got.Points)
	assert.Equal(t, []string{"Completed: mod1"}, got.Badges)
	assert.Equal(t, []model.ModuleProgress{{ID: "mod1", Completed: true}}, got.Modules)
	require.NotNil(t, got.Path)
	assert.Equal(t, "Frontend", got.Path.Title)
}

func TestDecodeUserDoc_NormalizesEmptyCollections(t *testing.T) {
	var got model.User
	require.NoError(t, decodeUserDoc([]byte(`{"points":0}`), &got))

	assert.NotNil(t, got.Badges)
	assert.NotNil(t, got.Modules)
	assert.Nil(t, got.Path)
}

func TestDecodeUserDoc_Malformed(t *testing.T) {
	var got model.User
	assert.Error(t, decodeUserDoc([]byte(`{"points":`), &got))
}
