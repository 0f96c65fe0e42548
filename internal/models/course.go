package models

import "time"

// Course is the authoritative record held by the course registry.
type Course struct {
	ID          int64     `db:"id" json:"id"`
	Code        string    `db:"code" json:"code"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Deleted     bool      `db:"deleted" json:"deleted"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Snapshot returns the wire view shared with the student service.
func (c Course) Snapshot() CourseSnapshot {
	return CourseSnapshot{Code: c.Code, Name: c.Name, Description: c.Description, Deleted: c.Deleted}
}

// CourseSnapshot is the read-only course payload fetched from the course registry.
type CourseSnapshot struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Deleted     bool   `json:"deleted"`
}

// CourseFilter provides filters for listing courses.
type CourseFilter struct {
	Search    string
	Deleted   *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
