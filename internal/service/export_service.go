package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
	"github.com/noah-isme/course-enrollment-api/pkg/export"
)

type studentEnrollmentReader interface {
	FindByIDWithEnrollments(ctx context.Context, id int64) (*models.StudentWithEnrollments, error)
}

var enrollmentExportHeaders = []string{"Course Code", "Course Name", "Course Description", "Enrolled At", "Updated At"}

// ExportFile is a rendered document ready to be streamed.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders a student's enrollment snapshots as CSV or PDF.
type ExportService struct {
	students studentEnrollmentReader
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService constructs ExportService.
func NewExportService(students studentEnrollmentReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{students: students, logger: logger, now: time.Now}
}

// Export renders the enrollments of studentID in the requested format.
func (s *ExportService) Export(ctx context.Context, studentID int64, rawFormat string) (*ExportFile, error) {
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be csv or pdf")
	}
	renderer, err := export.NewRenderer(format)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to prepare renderer")
	}

	student, err := s.students.FindByIDWithEnrollments(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrStudentNotFound, "")
		}
		return nil, appErrors.Internal(err, "failed to load student enrollments")
	}

	dataset := export.Dataset{
		Title:   fmt.Sprintf("Enrollments for %s (#%d)", student.Name, student.ID),
		Headers: enrollmentExportHeaders,
		Rows:    make([]map[string]string, 0, len(student.Enrollments)),
	}
	for _, e := range student.Enrollments {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Course Code":        e.CourseCode,
			"Course Name":        e.CourseName,
			"Course Description": e.CourseDescription,
			"Enrolled At":        e.CreatedAt.UTC().Format(time.RFC3339),
			"Updated At":         e.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}

	body, err := renderer.Render(dataset)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render export")
	}

	filename := fmt.Sprintf("student-%s-enrollments-%s.%s",
		strconv.FormatInt(student.ID, 10), s.now().UTC().Format("20060102"), renderer.Extension())
	s.logger.Info("enrollments exported",
		zap.Int64("student_id", student.ID),
		zap.String("format", string(format)),
		zap.Int("rows", len(dataset.Rows)),
	)
	return &ExportFile{Filename: filename, ContentType: renderer.ContentType(), Body: body}, nil
}
