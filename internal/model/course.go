package model

import "context"

// CourseStore defines persistence operations for courses.
type CourseStore interface {
	List(ctx context.Context) ([]Course, error)
	GetBySlug(ctx context.Context, slug string) (Course, error)
	// CreateIfAbsent stores the course unless its slug is taken and returns
	// the stored version.
	CreateIfAbsent(ctx context.Context, course Course) (Course, error)
}

// Course is read-mostly catalogue content keyed by slug.
type Course struct {
	ID          int            `json:"id"`
	Slug        string         `json:"slug"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Modules     []CourseModule `json:"modules"`
}

// CourseModule is one lesson of a course.
type CourseModule struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
}

// DemoCourses is the catalogue seeded into an empty store.
func DemoCourses() []Course {
	return []Course{
		{
			ID:          1,
			Slug:        "web-fundamentals",
			Title:       "Web Fundamentals",
			Description: "Learn the basics of web development",
			Modules: []CourseModule{
				{ID: "mod1", Title: "HTML Basics", Content: "Learn HTML structure and semantics"},
				{ID: "mod2", Title: "CSS Styling", Content: "Master CSS for beautiful layouts"},
				{ID: "mod3", Title: "JavaScript Fundamentals", Content: "Core JavaScript concepts"},
			},
		},
		{
			ID:          2,
			Slug:        "react-advanced",
			Title:       "React Advanced",
			Description: "Master advanced React patterns",
			Modules: []CourseModule{
				{ID: "mod4", Title: "Hooks Deep Dive", Content: "Understanding React hooks"},
				{ID: "mod5", Title: "State Management", Content: "Redux and Context API"},
				{ID: "mod6", Title: "Performance Optimization", Content: "Making React fast"},
			},
		},
	}
}
