package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	"github.com/noah-isme/course-enrollment-api/internal/service"
	"github.com/noah-isme/course-enrollment-api/pkg/response"
)

type enrollmentService interface {
	Enroll(ctx context.Context, studentID int64, courseCode string) (*models.Enrollment, error)
	Unenroll(ctx context.Context, studentID int64, courseCode string) error
	Refresh(ctx context.Context, studentID int64, courseCode string) (*models.Enrollment, error)
	List(ctx context.Context, studentID int64) ([]models.Enrollment, error)
}

type enrollmentExporter interface {
	Export(ctx context.Context, studentID int64, format string) (*service.ExportFile, error)
}

// EnrollmentHandler exposes the student course enrollment endpoints.
type EnrollmentHandler struct {
	enrollments enrollmentService
	exports     enrollmentExporter
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments enrollmentService, exports enrollmentExporter) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, exports: exports}
}

// List godoc
// @Summary List student enrollments
// @Tags Enrollments
// @Produce json
// @Security ApiKeyAuth
// @Param studentId path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/courses/{studentId} [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	studentID, err := parseStudentID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	enrollments, err := h.enrollments.List(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, enrollments)
}

// Enroll godoc
// @Summary Enroll student in a course
// @Tags Enrollments
// @Produce json
// @Security ApiKeyAuth
// @Param studentId path int true "Student ID"
// @Param courseCode path string true "Course code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /student/courses/{studentId}/{courseCode} [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	studentID, err := parseStudentID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	enrollment, err := h.enrollments.Enroll(c.Request.Context(), studentID, c.Param("courseCode"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, enrollment)
}

// Refresh godoc
// @Summary Refresh the course snapshot of an enrollment
// @Tags Enrollments
// @Produce json
// @Security ApiKeyAuth
// @Param studentId path int true "Student ID"
// @Param courseCode path string true "Course code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /student/courses/{studentId}/{courseCode} [put]
func (h *EnrollmentHandler) Refresh(c *gin.Context) {
	studentID, err := parseStudentID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	enrollment, err := h.enrollments.Refresh(c.Request.Context(), studentID, c.Param("courseCode"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, enrollment)
}

// Unenroll godoc
// @Summary Remove an enrollment
// @Tags Enrollments
// @Produce json
// @Security ApiKeyAuth
// @Param studentId path int true "Student ID"
// @Param courseCode path string true "Course code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/courses/{studentId}/{courseCode} [delete]
func (h *EnrollmentHandler) Unenroll(c *gin.Context) {
	studentID, err := parseStudentID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.enrollments.Unenroll(c.Request.Context(), studentID, c.Param("courseCode")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, nil, nil)
}

// Export godoc
// @Summary Export student enrollments
// @Tags Enrollments
// @Produce text/csv
// @Produce application/pdf
// @Security ApiKeyAuth
// @Param studentId path int true "Student ID"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /student/courses/{studentId}/export [get]
func (h *EnrollmentHandler) Export(c *gin.Context) {
	studentID, err := parseStudentID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.Export(c.Request.Context(), studentID, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.ContentType, file.Filename, file.Body)
}
