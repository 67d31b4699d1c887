package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/skilledge/skilledge-server/internal/mocks"
	"github.com/skilledge/skilledge-server/internal/model"
	tu "github.com/skilledge/skilledge-server/internal/testutil"
)

func TestCourses_SeedDemo(t *testing.T) {
	store := mocks.NewCourseStore(t)
	store.On("CreateIfAbsent", mock.Anything, mock.Anything).
		Return(func(_ context.Context, c model.Course) (model.Course, error) { return c, nil }).
		Times(len(model.DemoCourses()))

	seeded, err := NewCourses(store, tu.MakeNoopLogger()).SeedDemo(context.Background())
	require.NoError(t, err)
	require.Len(t, seeded, 2)
	assert.Equal(t, "web-fundamentals", seeded[0].Slug)
}

func TestCourses_SeedDemoFailure(t *testing.T) {
	store := mocks.NewCourseStore(t)
	store.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(model.Course{}, errors.New("down")).Once()

	_, err := NewCourses(store, tu.MakeNoopLogger()).SeedDemo(context.Background())
	assert.Error(t, err)
}

func TestCourses_Get(t *testing.T) {
	store := mocks.NewCourseStore(t)
	store.On("GetBySlug", mock.Anything, "web-fundamentals").Return(model.DemoCourses()[0], nil)
	store.On("GetBySlug", mock.Anything, "nope").Return(model.Course{}, model.ErrNotFound)
	s := NewCourses(store, tu.MakeNoopLogger())

	c, err := s.Get(context.Background(), "web-fundamentals")
	require.NoError(t, err)
	assert.Len(t, c.Modules, 3)

	_, err = s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCourses_List(t *testing.T) {
	store := mocks.NewCourseStore(t)
	store.On("List", mock.Anything).Return(model.DemoCourses(), nil)

	list, err := NewCourses(store, tu.MakeNoopLogger()).List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
