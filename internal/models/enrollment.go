package models

import "time"

// Enrollment links a student to a point-in-time snapshot of a remote course.
// The course fields are copied on enroll and only change on an explicit refresh.
type Enrollment struct {
	ID                int64     `db:"id" json:"id"`
	StudentID         int64     `db:"student_id" json:"student_id"`
	CourseCode        string    `db:"course_code" json:"course_code"`
	CourseName        string    `db:"course_name" json:"course_name"`
	CourseDescription string    `db:"course_desc" json:"course_description"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// ApplySnapshot overwrites the denormalized course fields. The code is the
// lookup key and is left untouched.
func (e *Enrollment) ApplySnapshot(snapshot CourseSnapshot) {
	e.CourseName = snapshot.Name
	e.CourseDescription = snapshot.Description
}

// NewEnrollment builds an enrollment owned by studentID from a course snapshot.
func NewEnrollment(studentID int64, snapshot CourseSnapshot) *Enrollment {
	return &Enrollment{
		StudentID:         studentID,
		CourseCode:        snapshot.Code,
		CourseName:        snapshot.Name,
		CourseDescription: snapshot.Description,
	}
}
