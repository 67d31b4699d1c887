package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/skilledge/skilledge-server/internal/logger"
	"github.com/skilledge/skilledge-server/internal/model"
)

type Course struct {
	courseService CourseService
	logger        *logger.Logger
}

func NewCourse(courseService CourseService, logger *logger.Logger) *Course {
	return &Course{courseService: courseService, logger: logger}
}

func (h *Course) List(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courseService.List(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	if courses == nil {
		courses = []model.Course{}
	}
	writeJSON(w, http.StatusOK, courses)
}

func (h *Course) Get(w http.ResponseWriter, r *http.Request) {
	course, err := h.courseService.Get(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (h *Course) SeedDemo(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courseService.SeedDemo(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}
