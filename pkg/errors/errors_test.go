package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneMatchesSentinel(t *testing.T) {
	clone := Clone(ErrAlreadyEnrolled, "student 1 already enrolled in CS01")
	wrapped := fmt.Errorf("enroll: %w", clone)

	assert.True(t, errors.Is(wrapped, ErrAlreadyEnrolled))
	assert.False(t, errors.Is(wrapped, ErrCourseNotFound))
	assert.Equal(t, "student 1 already enrolled in CS01", clone.Message)
	assert.Equal(t, "course already enrolled for student", ErrAlreadyEnrolled.Message)
}

func TestUpstreamDistinctFromNotFound(t *testing.T) {
	assert.NotEqual(t, ErrUpstreamUnavailable.Code, ErrCourseNotFound.Code)
	assert.GreaterOrEqual(t, ErrUpstreamUnavailable.Status, http.StatusInternalServerError)
	assert.Equal(t, http.StatusNotFound, ErrCourseNotFound.Status)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	appErr := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Nil(t, FromError(nil))

	typed := Wrap(errors.New("dial tcp"), ErrUpstreamUnavailable.Code, ErrUpstreamUnavailable.Status, "course service unavailable")
	assert.Same(t, typed, FromError(typed))
	assert.Contains(t, typed.Error(), "dial tcp")
}
