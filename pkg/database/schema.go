package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var studentSchema = []string{
	`CREATE TABLE IF NOT EXISTS students (
        id BIGSERIAL PRIMARY KEY,
        name TEXT NOT NULL,
        age INTEGER NOT NULL DEFAULT 0,
        deleted BOOLEAN NOT NULL DEFAULT FALSE,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS student_courses (
        id BIGSERIAL PRIMARY KEY,
        student_id BIGINT NOT NULL REFERENCES students(id),
        course_code TEXT NOT NULL,
        course_name TEXT NOT NULL DEFAULT '',
        course_desc TEXT NOT NULL DEFAULT '',
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        CONSTRAINT student_courses_student_code_key UNIQUE (student_id, course_code)
    )`,
	`CREATE INDEX IF NOT EXISTS student_courses_student_id_idx ON student_courses (student_id)`,
}

var courseSchema = []string{
	`CREATE TABLE IF NOT EXISTS courses (
        id BIGSERIAL PRIMARY KEY,
        code TEXT NOT NULL UNIQUE,
        name TEXT NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        deleted BOOLEAN NOT NULL DEFAULT FALSE,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
}

// EnsureStudentSchema creates the student registry tables when missing.
func EnsureStudentSchema(ctx context.Context, db *sqlx.DB) error {
	return apply(ctx, db, studentSchema)
}

// EnsureCourseSchema creates the course registry tables when missing.
func EnsureCourseSchema(ctx context.Context, db *sqlx.DB) error {
	return apply(ctx, db, courseSchema)
}

func apply(ctx context.Context, db *sqlx.DB, statements []string) error {
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
