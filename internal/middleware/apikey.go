package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
	"github.com/noah-isme/course-enrollment-api/pkg/response"
)

// DefaultAPIKeyHeader is used when no header name is configured.
const DefaultAPIKeyHeader = "x-api-key"

// APIKey rejects requests whose key header does not match expected.
// An empty expected key rejects every request.
func APIKey(header, expected string) gin.HandlerFunc {
	if strings.TrimSpace(header) == "" {
		header = DefaultAPIKeyHeader
	}
	want := []byte(expected)
	return func(c *gin.Context) {
		got := c.GetHeader(header)
		if got == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing api key"))
			c.Abort()
			return
		}
		if len(want) == 0 || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid api key"))
			c.Abort()
			return
		}
		c.Next()
	}
}
