package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-enrollment-api/internal/middleware"
	"github.com/noah-isme/course-enrollment-api/internal/models"
	"github.com/noah-isme/course-enrollment-api/internal/service"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
	"github.com/noah-isme/course-enrollment-api/pkg/response"
)

type enrollmentServiceMock struct {
	enrollResp  *models.Enrollment
	err         error
	listResp    []models.Enrollment
	calls       int
	lastStudent int64
	lastCode    string
}

func (m *enrollmentServiceMock) Enroll(ctx context.Context, studentID int64, courseCode string) (*models.Enrollment, error) {
	m.calls++
	m.lastStudent, m.lastCode = studentID, courseCode
	return m.enrollResp, m.err
}

func (m *enrollmentServiceMock) Unenroll(ctx context.Context, studentID int64, courseCode string) error {
	m.calls++
	m.lastStudent, m.lastCode = studentID, courseCode
	return m.err
}

func (m *enrollmentServiceMock) Refresh(ctx context.Context, studentID int64, courseCode string) (*models.Enrollment, error) {
	m.calls++
	m.lastStudent, m.lastCode = studentID, courseCode
	return m.enrollResp, m.err
}

func (m *enrollmentServiceMock) List(ctx context.Context, studentID int64) ([]models.Enrollment, error) {
	m.calls++
	m.lastStudent = studentID
	return m.listResp, m.err
}

type exporterMock struct {
	file   *service.ExportFile
	err    error
	format string
}

func (m *exporterMock) Export(ctx context.Context, studentID int64, format string) (*service.ExportFile, error) {
	m.format = format
	return m.file, m.err
}

func newEnrollmentRouter(enrollments *enrollmentServiceMock, exports *exporterMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api", middleware.APIKey("x-api-key", "secret"))
	RegisterStudentRoutes(api, NewStudentHandler(&studentServiceMock{}), NewEnrollmentHandler(enrollments, exports))
	return r
}

func doRequest(r http.Handler, method, target string, withKey bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if withKey {
		req.Header.Set("x-api-key", "secret")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var body response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestEnrollRouteSuccess(t *testing.T) {
	svc := &enrollmentServiceMock{enrollResp: &models.Enrollment{ID: 5, StudentID: 1, CourseCode: "CS01", CourseName: "Intro"}}
	r := newEnrollmentRouter(svc, &exporterMock{})

	w := doRequest(r, http.MethodPost, "/api/student/courses/1/CS01", true)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), svc.lastStudent)
	assert.Equal(t, "CS01", svc.lastCode)
	body := decodeEnvelope(t, w)
	data := body.Data.(map[string]interface{})
	assert.Equal(t, "Intro", data["course_name"])
}

func TestEnrollRouteWithoutKeyNeverReachesOrchestrator(t *testing.T) {
	svc := &enrollmentServiceMock{}
	r := newEnrollmentRouter(svc, &exporterMock{})

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		w := doRequest(r, method, "/api/student/courses/1/CS01", false)
		assert.Equal(t, http.StatusUnauthorized, w.Code, method)
	}
	w := doRequest(r, http.MethodGet, "/api/student/courses/1", false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, svc.calls)
}

func TestEnrollRouteStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"student missing", appErrors.Clone(appErrors.ErrStudentNotFound, ""), http.StatusNotFound, "STUDENT_NOT_FOUND"},
		{"course missing", appErrors.Clone(appErrors.ErrCourseNotFound, ""), http.StatusNotFound, "COURSE_NOT_FOUND"},
		{"course retired", appErrors.Clone(appErrors.ErrCourseUnavailable, ""), http.StatusNotFound, "COURSE_UNAVAILABLE"},
		{"duplicate", appErrors.Clone(appErrors.ErrAlreadyEnrolled, ""), http.StatusConflict, "ALREADY_ENROLLED"},
		{"upstream", appErrors.Clone(appErrors.ErrUpstreamUnavailable, ""), http.StatusBadGateway, "UPSTREAM_UNAVAILABLE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newEnrollmentRouter(&enrollmentServiceMock{err: tc.err}, &exporterMock{})
			w := doRequest(r, http.MethodPost, "/api/student/courses/1/CS01", true)
			assert.Equal(t, tc.status, w.Code)
			body := decodeEnvelope(t, w)
			require.NotNil(t, body.Error)
			assert.Equal(t, tc.code, body.Error.Code)
		})
	}
}

func TestEnrollRouteRejectsBadStudentID(t *testing.T) {
	svc := &enrollmentServiceMock{}
	r := newEnrollmentRouter(svc, &exporterMock{})

	w := doRequest(r, http.MethodPost, "/api/student/courses/abc/CS01", true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, svc.calls)
}

func TestUnenrollRouteReturnsEmptyData(t *testing.T) {
	svc := &enrollmentServiceMock{}
	r := newEnrollmentRouter(svc, &exporterMock{})

	w := doRequest(r, http.MethodDelete, "/api/student/courses/1/CS01", true)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeEnvelope(t, w)
	assert.Nil(t, body.Data)
	assert.Nil(t, body.Error)
}

func TestRefreshRoute(t *testing.T) {
	svc := &enrollmentServiceMock{enrollResp: &models.Enrollment{ID: 5, CourseCode: "CS01", CourseName: "Intro v2"}}
	r := newEnrollmentRouter(svc, &exporterMock{})

	w := doRequest(r, http.MethodPut, "/api/student/courses/1/CS01", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CS01", svc.lastCode)
}

func TestListEnrollmentsRoute(t *testing.T) {
	svc := &enrollmentServiceMock{listResp: []models.Enrollment{{ID: 1, CourseCode: "CS01"}, {ID: 2, CourseCode: "CS02"}}}
	r := newEnrollmentRouter(svc, &exporterMock{})

	w := doRequest(r, http.MethodGet, "/api/student/courses/1", true)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeEnvelope(t, w)
	assert.Len(t, body.Data, 2)
}

func TestExportRoute(t *testing.T) {
	exports := &exporterMock{file: &service.ExportFile{Filename: "student-1.csv", ContentType: "text/csv", Body: []byte("a\n")}}
	svc := &enrollmentServiceMock{}
	r := newEnrollmentRouter(svc, exports)

	w := doRequest(r, http.MethodGet, "/api/student/courses/1/export?format=csv", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", exports.format)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "student-1.csv")
	assert.Equal(t, 0, svc.calls)
}

func TestExportCodeStillEnrollable(t *testing.T) {
	svc := &enrollmentServiceMock{enrollResp: &models.Enrollment{CourseCode: "export"}}
	r := newEnrollmentRouter(svc, &exporterMock{})

	w := doRequest(r, http.MethodPost, "/api/student/courses/1/export", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "export", svc.lastCode)
}
