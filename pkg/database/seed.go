package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type seedCourse struct {
	Code        string `db:"code"`
	Name        string `db:"name"`
	Description string `db:"description"`
}

type seedStudent struct {
	Name string `db:"name"`
	Age  int    `db:"age"`
}

var defaultCourses = []seedCourse{
	{Code: "CS01", Name: "Course 1", Description: "Description for course 1"},
	{Code: "CS02", Name: "Course 2", Description: "Description for course 2"},
	{Code: "CS03", Name: "Course 3", Description: "Description for course 3"},
	{Code: "CS04", Name: "Course 4", Description: "Description for course 4"},
}

var defaultStudents = []seedStudent{
	{Name: "Student 1", Age: 18},
	{Name: "Student 2", Age: 19},
	{Name: "Student 3", Age: 20},
}

// SeedCourses inserts the sample catalogue when the courses table is empty.
// It returns the number of inserted rows.
func SeedCourses(ctx context.Context, db *sqlx.DB) (int, error) {
	empty, err := isEmpty(ctx, db, "courses")
	if err != nil || !empty {
		return 0, err
	}
	const query = `INSERT INTO courses (code, name, description) VALUES (:code, :name, :description)`
	for _, course := range defaultCourses {
		if _, err := db.NamedExecContext(ctx, query, course); err != nil {
			return 0, fmt.Errorf("seed course %s: %w", course.Code, err)
		}
	}
	return len(defaultCourses), nil
}

// SeedStudents inserts sample students when the students table is empty.
func SeedStudents(ctx context.Context, db *sqlx.DB) (int, error) {
	empty, err := isEmpty(ctx, db, "students")
	if err != nil || !empty {
		return 0, err
	}
	const query = `INSERT INTO students (name, age) VALUES (:name, :age)`
	for _, student := range defaultStudents {
		if _, err := db.NamedExecContext(ctx, query, student); err != nil {
			return 0, fmt.Errorf("seed student %s: %w", student.Name, err)
		}
	}
	return len(defaultStudents), nil
}

func isEmpty(ctx context.Context, db *sqlx.DB, table string) (bool, error) {
	var count int
	if err := db.GetContext(ctx, &count, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)); err != nil {
		return false, fmt.Errorf("count %s: %w", table, err)
	}
	return count == 0, nil
}
