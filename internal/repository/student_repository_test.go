package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-enrollment-api/internal/models"
)

var studentRowColumns = []string{"id", "name", "age", "deleted", "created_at", "updated_at"}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	deleted := false
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, age, deleted, created_at, updated_at FROM students WHERE deleted = $1 ORDER BY name DESC LIMIT 20 OFFSET 0")).
		WithArgs(false).
		WillReturnRows(sqlmock.NewRows(studentRowColumns).AddRow(1, "Ana", 20, false, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE deleted = $1")).
		WithArgs(false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{Deleted: &deleted, SortBy: "name", SortOrder: "desc"})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByIDWithEnrollments(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(studentRowColumns).AddRow(1, "Ana", 20, false, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM student_courses WHERE student_id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(enrollmentRowColumns).AddRow(5, 1, "CS01", "Intro", "d", now, now))

	student, err := repo.FindByIDWithEnrollments(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Ana", student.Name)
	require.Len(t, student.Enrollments, 1)
	assert.Equal(t, "CS01", student.Enrollments[0].CourseCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByIDMissingSkipsEnrollments(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("FROM students WHERE id").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(studentRowColumns))

	_, err := repo.FindByIDWithEnrollments(context.Background(), 99)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("INSERT INTO students").
		WithArgs("Ana", 20, false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	student := &models.Student{Name: "Ana", Age: 20}
	require.NoError(t, repo.Create(context.Background(), student))
	assert.Equal(t, int64(3), student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateKeepsRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE students SET name").
		WithArgs("Ana", 21, true, sqlmock.AnyArg(), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), &models.Student{ID: 3, Name: "Ana", Age: 21, Deleted: true}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
