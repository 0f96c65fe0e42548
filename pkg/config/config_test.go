package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, "x-api-key", cfg.Security.HeaderName)
	assert.Equal(t, 5*time.Second, cfg.CourseAPI.Timeout)
	assert.Equal(t, 30*time.Second, cfg.CourseAPI.HealthCheckInterval)
	assert.False(t, cfg.Cache.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("API_KEY", "secret")
	t.Setenv("COURSE_API_URL", "http://courses:8081/api/course/")
	t.Setenv("COURSE_API_TIMEOUT", "750ms")
	t.Setenv("COURSE_CACHE_TTL", "not-a-duration")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "secret", cfg.Security.APIKey)
	assert.Equal(t, "http://courses:8081/api/course", cfg.CourseAPI.BaseURL)
	assert.Equal(t, 750*time.Millisecond, cfg.CourseAPI.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}
