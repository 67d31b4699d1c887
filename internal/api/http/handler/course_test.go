package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/skilledge/skilledge-server/internal/mocks"
	"github.com/skilledge/skilledge-server/internal/model"
	tu "github.com/skilledge/skilledge-server/internal/testutil"
)

func TestCourse_Get(t *testing.T) {
	svc := mocks.NewCourseService(t)
	svc.On("Get", mock.Anything, "web-fundamentals").Return(model.DemoCourses()[0], nil)
	svc.On("Get", mock.Anything, "nope").Return(model.Course{}, model.ErrNotFound)
	h := NewCourse(svc, tu.MakeNoopLogger())

	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/courses/web-fundamentals", nil), map[string]string{"slug": "web-fundamentals"})
	rec := httptest.NewRecorder()
	h.Get(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"slug":"web-fundamentals"`)

	req = mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/courses/nope", nil), map[string]string{"slug": "nope"})
	rec = httptest.NewRecorder()
	h.Get(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCourse_ListAndSeed(t *testing.T) {
	svc := mocks.NewCourseService(t)
	svc.On("List", mock.Anything).Return(nil, nil)
	svc.On("SeedDemo", mock.Anything).Return(model.DemoCourses(), nil)
	h := NewCourse(svc, tu.MakeNoopLogger())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/courses", nil))
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.SeedDemo(rec, httptest.NewRequest(http.MethodPost, "/api/courses/seed-demo", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "react-advanced")
}
