package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-enrollment-api/internal/models"
)

const enrollmentColumns = "id, student_id, course_code, course_name, course_desc, created_at, updated_at"

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// FindByStudentAndCode returns the enrollment for the pair or sql.ErrNoRows.
func (r *EnrollmentRepository) FindByStudentAndCode(ctx context.Context, studentID int64, code string) (*models.Enrollment, error) {
	query := "SELECT " + enrollmentColumns + " FROM student_courses WHERE student_id = $1 AND course_code = $2 LIMIT 1"
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, studentID, code); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ListByStudent returns every enrollment owned by the student, unordered.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error) {
	query := "SELECT " + enrollmentColumns + " FROM student_courses WHERE student_id = $1"
	enrollments := []models.Enrollment{}
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}

// Insert persists a new enrollment. A duplicate (student, code) pair yields ErrDuplicate.
func (r *EnrollmentRepository) Insert(ctx context.Context, enrollment *models.Enrollment) error {
	now := time.Now().UTC()
	enrollment.CreatedAt = now
	enrollment.UpdatedAt = now
	const query = `INSERT INTO student_courses (student_id, course_code, course_name, course_desc, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := r.db.QueryRowxContext(ctx, query,
		enrollment.StudentID,
		enrollment.CourseCode,
		enrollment.CourseName,
		enrollment.CourseDescription,
		enrollment.CreatedAt,
		enrollment.UpdatedAt,
	).Scan(&enrollment.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Update rewrites the course snapshot of an existing enrollment.
func (r *EnrollmentRepository) Update(ctx context.Context, enrollment *models.Enrollment) error {
	enrollment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE student_courses SET course_name = :course_name, course_desc = :course_desc, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("update enrollment: %w", err)
	}
	return nil
}

// Delete removes the enrollment row.
func (r *EnrollmentRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM student_courses WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return nil
}
