package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	"github.com/noah-isme/course-enrollment-api/pkg/middleware/requestid"
)

const upstreamName = "course-api"

// Lookup outcomes reported to the metrics recorder.
const (
	OutcomeFound       = "found"
	OutcomeNotFound    = "not_found"
	OutcomeUnavailable = "unavailable"
)

var (
	// ErrCourseNotFound is returned when course-api answers 404 for the code.
	ErrCourseNotFound = errors.New("course not found upstream")
	// ErrUnavailable matches every *UnavailableError.
	ErrUnavailable = errors.New("course service unavailable")
	// ErrEmptyCode is returned before any request when the code is blank.
	ErrEmptyCode = errors.New("course code is required")
)

// UnavailableError carries the reason course-api could not give an answer.
type UnavailableError struct {
	Status int
	Cause  error
}

func (e *UnavailableError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("course service unavailable: status %d", e.Status)
	}
	return fmt.Sprintf("course service unavailable: %v", e.Cause)
}

func (e *UnavailableError) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, ErrUnavailable) match regardless of cause.
func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

// Recorder receives one observation per upstream call.
type Recorder interface {
	ObserveUpstreamCall(outcome string, duration time.Duration)
}

// Config configures the course lookup client.
type Config struct {
	BaseURL    string
	APIKey     string
	HeaderName string
	Timeout    time.Duration
}

// CourseClient resolves course codes against course-api.
type CourseClient struct {
	http    *resty.Client
	baseURL string
	metrics Recorder
	logger  *zap.Logger
}

// NewCourseClient builds a client issuing exactly one round trip per lookup.
func NewCourseClient(cfg Config, metrics Recorder, logger *zap.Logger) *CourseClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = "x-api-key"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader(cfg.HeaderName, cfg.APIKey).
		SetHeader("Accept", "application/json")

	return &CourseClient{
		http:    httpClient,
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger.With(zap.String("upstream", upstreamName)),
	}
}

// Fetch looks up a course by code. Errors are ErrEmptyCode, ErrCourseNotFound
// (404 or a payload without a code) or an *UnavailableError.
func (c *CourseClient) Fetch(ctx context.Context, code string) (*models.CourseSnapshot, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrEmptyCode
	}

	req := c.http.R().SetContext(ctx).SetPathParam("code", code)
	if id := requestid.FromContext(ctx); id != "" {
		req.SetHeader(requestid.Header(), id)
	}

	start := time.Now()
	resp, err := req.Get("/{code}")
	duration := time.Since(start)

	if err != nil {
		c.observe(OutcomeUnavailable, duration)
		c.logger.Error("course lookup failed", zap.String("course_code", code), zap.Duration("latency", duration), zap.Error(err))
		return nil, &UnavailableError{Cause: err}
	}

	switch status := resp.StatusCode(); {
	case status == http.StatusNotFound:
		c.observe(OutcomeNotFound, duration)
		c.logger.Info("course not found upstream", zap.String("course_code", code), zap.Duration("latency", duration))
		return nil, ErrCourseNotFound
	case status < 200 || status >= 300:
		c.observe(OutcomeUnavailable, duration)
		c.logger.Error("unexpected course service status", zap.String("course_code", code), zap.Int("status", status), zap.Duration("latency", duration))
		return nil, &UnavailableError{Status: status}
	}

	snapshot, err := decodeSnapshot(resp.Body())
	if err != nil {
		c.observe(OutcomeUnavailable, duration)
		c.logger.Error("undecodable course payload", zap.String("course_code", code), zap.Error(err))
		return nil, &UnavailableError{Cause: err}
	}

	if snapshot.Code == "" {
		c.observe(OutcomeNotFound, duration)
		c.logger.Info("course payload without code", zap.String("course_code", code))
		return nil, ErrCourseNotFound
	}

	c.observe(OutcomeFound, duration)
	c.logger.Debug("course resolved", zap.String("course_code", code), zap.Bool("deleted", snapshot.Deleted), zap.Duration("latency", duration))
	return snapshot, nil
}

// Ping reports whether course-api answers its base URL with a 2xx status.
func (c *CourseClient) Ping(ctx context.Context) bool {
	resp, err := c.http.R().SetContext(ctx).Get(c.baseURL)
	if err != nil {
		c.logger.Debug("course service ping failed", zap.Error(err))
		return false
	}
	return resp.IsSuccess()
}

func (c *CourseClient) observe(outcome string, duration time.Duration) {
	if c.metrics != nil {
		c.metrics.ObserveUpstreamCall(outcome, duration)
	}
}

// decodeSnapshot accepts either a bare course object or one wrapped in the
// {"data": ...} response envelope.
func decodeSnapshot(body []byte) (*models.CourseSnapshot, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode course payload: %w", err)
	}
	payload := body
	if len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		payload = envelope.Data
	}
	var snapshot models.CourseSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("decode course payload: %w", err)
	}
	return &snapshot, nil
}
