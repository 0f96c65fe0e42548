package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
)

func newExportFixture() *ExportService {
	store := newFakeEnrollmentStore()
	store.rows[1] = models.Enrollment{ID: 1, StudentID: 1, CourseCode: "CS01", CourseName: "Intro", CourseDescription: "d"}
	students := &fakeStudentDirectory{students: map[int64]models.Student{1: {ID: 1, Name: "Ana"}}, store: store}
	svc := NewExportService(students, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestExportCSV(t *testing.T) {
	svc := newExportFixture()

	file, err := svc.Export(context.Background(), 1, "")
	require.NoError(t, err)
	assert.Equal(t, "student-1-enrollments-20240301.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	lines := strings.Split(strings.TrimSpace(string(file.Body)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Course Code,Course Name,Course Description,Enrolled At,Updated At", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "CS01,Intro,d,"))
}

func TestExportPDF(t *testing.T) {
	svc := newExportFixture()

	file, err := svc.Export(context.Background(), 1, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc := newExportFixture()

	_, err := svc.Export(context.Background(), 1, "xlsx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestExportUnknownStudent(t *testing.T) {
	svc := newExportFixture()

	_, err := svc.Export(context.Background(), 42, "csv")
	assert.ErrorIs(t, err, appErrors.ErrStudentNotFound)
}
