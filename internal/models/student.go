package models

import "time"

// Student represents a learner registered in the student registry.
// Deleted is a soft-delete marker; rows are never physically removed.
type Student struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Age       int       `db:"age" json:"age"`
	Deleted   bool      `db:"deleted" json:"deleted"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StudentWithEnrollments is a student with its enrollment collection eagerly loaded.
type StudentWithEnrollments struct {
	Student
	Enrollments []Enrollment `json:"enrollments"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	Deleted   *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
