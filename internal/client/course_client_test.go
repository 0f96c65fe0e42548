package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-enrollment-api/pkg/middleware/requestid"
)

type recordedCall struct {
	outcome string
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (f *fakeRecorder) ObserveUpstreamCall(outcome string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedCall{outcome: outcome})
}

func (f *fakeRecorder) outcomes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.outcome)
	}
	return out
}

func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) (*CourseClient, *fakeRecorder, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	rec := &fakeRecorder{}
	c := NewCourseClient(Config{BaseURL: srv.URL + "/api/course/", APIKey: "secret", Timeout: timeout}, rec, nil)
	return c, rec, &hits
}

func TestFetchFound(t *testing.T) {
	c, rec, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/course/CS01", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":"CS01","name":"Intro","description":"Basics","deleted":false}`))
	}, time.Second)

	snapshot, err := c.Fetch(context.Background(), "CS01")
	require.NoError(t, err)
	assert.Equal(t, "CS01", snapshot.Code)
	assert.Equal(t, "Intro", snapshot.Name)
	assert.Equal(t, "Basics", snapshot.Description)
	assert.False(t, snapshot.Deleted)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
	assert.Equal(t, []string{OutcomeFound}, rec.outcomes())
}

func TestFetchUnwrapsEnvelope(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"code":"CS09","name":"Old","description":"","deleted":true}}`))
	}, time.Second)

	snapshot, err := c.Fetch(context.Background(), "CS09")
	require.NoError(t, err)
	assert.True(t, snapshot.Deleted)
	assert.Equal(t, "Old", snapshot.Name)
}

func TestFetchNotFound(t *testing.T) {
	c, rec, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, time.Second)

	_, err := c.Fetch(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, ErrCourseNotFound)
	assert.False(t, errors.Is(err, ErrUnavailable))
	assert.Equal(t, []string{OutcomeNotFound}, rec.outcomes())
}

func TestFetchServerErrorIsUnavailable(t *testing.T) {
	c, rec, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, time.Second)

	_, err := c.Fetch(context.Background(), "CS01")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, errors.Is(err, ErrCourseNotFound))

	var unavailable *UnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, http.StatusInternalServerError, unavailable.Status)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits), "no retries")
	assert.Equal(t, []string{OutcomeUnavailable}, rec.outcomes())
}

func TestFetchUnexpectedStatusIsUnavailable(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, time.Second)

	_, err := c.Fetch(context.Background(), "CS01")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFetchMalformedBodyIsUnavailable(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}, time.Second)

	_, err := c.Fetch(context.Background(), "CS01")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFetchTimeoutIsUnavailable(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}, 50*time.Millisecond)

	_, err := c.Fetch(context.Background(), "CS01")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFetchCancelledContextIsUnavailable(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Fetch(ctx, "CS01")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFetchEmptyCodeSkipsNetwork(t *testing.T) {
	c, rec, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {}, time.Second)

	_, err := c.Fetch(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyCode)
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
	assert.Empty(t, rec.outcomes())
}

func TestPing(t *testing.T) {
	up, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, time.Second)
	assert.True(t, up.Ping(context.Background()))

	down, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, time.Second)
	assert.False(t, down.Ping(context.Background()))

	unreachable := NewCourseClient(Config{BaseURL: "http://127.0.0.1:1", Timeout: 100 * time.Millisecond}, nil, nil)
	assert.False(t, unreachable.Ping(context.Background()))
}

func TestFetchPayloadWithoutCodeIsNotFound(t *testing.T) {
	c, rec, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"ghost"}`))
	}, time.Second)

	_, err := c.Fetch(context.Background(), "CS01")
	assert.ErrorIs(t, err, ErrCourseNotFound)
	assert.Equal(t, []string{OutcomeNotFound}, rec.outcomes())
}

func TestFetchPropagatesRequestID(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "req-123", r.Header.Get("X-Request-ID"))
		_, _ = w.Write([]byte(`{"code":"CS01","name":"Intro"}`))
	}, time.Second)

	_, err := c.Fetch(requestid.WithContext(context.Background(), "req-123"), "CS01")
	require.NoError(t, err)
}
