package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/course-enrollment-api/internal/client"
	"github.com/noah-isme/course-enrollment-api/internal/models"
	"github.com/noah-isme/course-enrollment-api/internal/repository"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
)

type enrollmentStore interface {
	FindByStudentAndCode(ctx context.Context, studentID int64, code string) (*models.Enrollment, error)
	Insert(ctx context.Context, enrollment *models.Enrollment) error
	Update(ctx context.Context, enrollment *models.Enrollment) error
	Delete(ctx context.Context, id int64) error
}

type studentDirectory interface {
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	FindByIDWithEnrollments(ctx context.Context, id int64) (*models.StudentWithEnrollments, error)
}

type courseLookup interface {
	Fetch(ctx context.Context, code string) (*models.CourseSnapshot, error)
}

// EnrollmentService links students to snapshots of remote courses.
// Local checks always run before the course-api round trip.
type EnrollmentService struct {
	store    enrollmentStore
	students studentDirectory
	courses  courseLookup
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(store enrollmentStore, students studentDirectory, courses courseLookup, metrics *MetricsService, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{store: store, students: students, courses: courses, metrics: metrics, logger: logger}
}

// Enroll creates an enrollment carrying the current remote course snapshot.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID int64, courseCode string) (*models.Enrollment, error) {
	enrollment, err := s.enroll(ctx, studentID, courseCode)
	s.finish("enroll", studentID, courseCode, err)
	return enrollment, err
}

func (s *EnrollmentService) enroll(ctx context.Context, studentID int64, courseCode string) (*models.Enrollment, error) {
	code, err := normalizeCode(courseCode)
	if err != nil {
		return nil, err
	}
	if err := s.resolveStudent(ctx, studentID); err != nil {
		return nil, err
	}
	if _, err := s.store.FindByStudentAndCode(ctx, studentID, code); err == nil {
		return nil, appErrors.Clone(appErrors.ErrAlreadyEnrolled, "")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Internal(err, "failed to check existing enrollment")
	}

	snapshot, err := s.fetch(ctx, code)
	if err != nil {
		return nil, err
	}
	if snapshot.Deleted {
		return nil, appErrors.Clone(appErrors.ErrCourseUnavailable, "")
	}
	if err := ctx.Err(); err != nil {
		return nil, upstreamError(err)
	}

	enrollment := models.NewEnrollment(studentID, *snapshot)
	if err := s.store.Insert(ctx, enrollment); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrAlreadyEnrolled, "")
		}
		return nil, appErrors.Internal(err, "failed to create enrollment")
	}
	return enrollment, nil
}

// Unenroll hard-deletes the enrollment. No remote call is made.
func (s *EnrollmentService) Unenroll(ctx context.Context, studentID int64, courseCode string) error {
	err := s.unenroll(ctx, studentID, courseCode)
	s.finish("unenroll", studentID, courseCode, err)
	return err
}

func (s *EnrollmentService) unenroll(ctx context.Context, studentID int64, courseCode string) error {
	code, err := normalizeCode(courseCode)
	if err != nil {
		return err
	}
	if err := s.resolveStudent(ctx, studentID); err != nil {
		return err
	}
	enrollment, err := s.existing(ctx, studentID, code)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, enrollment.ID); err != nil {
		return appErrors.Internal(err, "failed to delete enrollment")
	}
	return nil
}

// Refresh overwrites the snapshot name and description from course-api.
// The deleted flag is not consulted, so retired courses can still be refreshed.
func (s *EnrollmentService) Refresh(ctx context.Context, studentID int64, courseCode string) (*models.Enrollment, error) {
	enrollment, err := s.refresh(ctx, studentID, courseCode)
	s.finish("refresh", studentID, courseCode, err)
	return enrollment, err
}

func (s *EnrollmentService) refresh(ctx context.Context, studentID int64, courseCode string) (*models.Enrollment, error) {
	code, err := normalizeCode(courseCode)
	if err != nil {
		return nil, err
	}
	if err := s.resolveStudent(ctx, studentID); err != nil {
		return nil, err
	}
	enrollment, err := s.existing(ctx, studentID, code)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.fetch(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, upstreamError(err)
	}

	enrollment.ApplySnapshot(*snapshot)
	if err := s.store.Update(ctx, enrollment); err != nil {
		return nil, appErrors.Internal(err, "failed to update enrollment")
	}
	return enrollment, nil
}

// List returns the stored snapshots of the student, unordered and not revalidated.
func (s *EnrollmentService) List(ctx context.Context, studentID int64) ([]models.Enrollment, error) {
	student, err := s.students.FindByIDWithEnrollments(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrStudentNotFound, "")
		}
		return nil, appErrors.Internal(err, "failed to load student enrollments")
	}
	if student.Enrollments == nil {
		return []models.Enrollment{}, nil
	}
	return student.Enrollments, nil
}

func (s *EnrollmentService) resolveStudent(ctx context.Context, studentID int64) error {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrStudentNotFound, "")
		}
		return appErrors.Internal(err, "failed to load student")
	}
	return nil
}

func (s *EnrollmentService) existing(ctx context.Context, studentID int64, code string) (*models.Enrollment, error) {
	enrollment, err := s.store.FindByStudentAndCode(ctx, studentID, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrEnrollmentNotFound, "")
		}
		return nil, appErrors.Internal(err, "failed to load enrollment")
	}
	return enrollment, nil
}

func (s *EnrollmentService) fetch(ctx context.Context, code string) (*models.CourseSnapshot, error) {
	snapshot, err := s.courses.Fetch(ctx, code)
	switch {
	case err == nil:
	case errors.Is(err, client.ErrCourseNotFound):
		return nil, appErrors.Clone(appErrors.ErrCourseNotFound, "")
	case errors.Is(err, client.ErrEmptyCode):
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "course code is required")
	default:
		s.logger.Error("course lookup failed",
			zap.String("upstream", "course-api"),
			zap.String("course_code", code),
			zap.Error(err),
		)
		return nil, upstreamError(err)
	}
	if snapshot == nil || snapshot.Code == "" {
		return nil, appErrors.Clone(appErrors.ErrCourseNotFound, "")
	}
	return snapshot, nil
}

// finish logs business outcomes at info and counts the result.
func (s *EnrollmentService) finish(operation string, studentID int64, code string, err error) {
	result := "ok"
	if err != nil {
		result = appErrors.FromError(err).Code
	}
	s.metrics.RecordEnrollmentResult(operation, result)

	fields := []zap.Field{
		zap.String("operation", operation),
		zap.Int64("student_id", studentID),
		zap.String("course_code", code),
		zap.String("result", result),
	}
	switch {
	case err == nil:
		s.logger.Info("enrollment operation completed", fields...)
	case result == appErrors.ErrInternal.Code:
		s.logger.Error("enrollment operation failed", append(fields, zap.Error(err))...)
	case result == appErrors.ErrUpstreamUnavailable.Code:
		// already logged with the upstream cause
	default:
		s.logger.Info("enrollment operation rejected", fields...)
	}
}

func normalizeCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "course code is required")
	}
	return code, nil
}

func upstreamError(err error) error {
	return appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, appErrors.ErrUpstreamUnavailable.Message)
}
