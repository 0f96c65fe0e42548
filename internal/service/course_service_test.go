package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	"github.com/noah-isme/course-enrollment-api/internal/repository"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
)

type memoryCourseRepo struct {
	courses   map[string]models.Course
	findCalls int
	listCalls int
}

func newMemoryCourseRepo() *memoryCourseRepo {
	return &memoryCourseRepo{courses: map[string]models.Course{
		"CS01": {ID: 1, Code: "CS01", Name: "Intro", Description: "d"},
	}}
}

func (m *memoryCourseRepo) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	m.listCalls++
	out := []models.Course{}
	for _, c := range m.courses {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (m *memoryCourseRepo) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	m.findCalls++
	if c, ok := m.courses[code]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memoryCourseRepo) Create(ctx context.Context, course *models.Course) error {
	if _, ok := m.courses[course.Code]; ok {
		return repository.ErrDuplicate
	}
	course.ID = int64(len(m.courses) + 1)
	m.courses[course.Code] = *course
	return nil
}

func (m *memoryCourseRepo) Update(ctx context.Context, course *models.Course) error {
	m.courses[course.Code] = *course
	return nil
}

type memoryCache struct {
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	for key := range m.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.entries, key)
		}
	}
	return nil
}

func newCachedCourseService() (*CourseService, *memoryCourseRepo, *memoryCache) {
	repo := newMemoryCourseRepo()
	store := newMemoryCache()
	cache := NewCacheService(store, NewMetricsService(), time.Minute, nil, true)
	return NewCourseService(repo, cache, nil, nil), repo, store
}

func TestCourseServiceGetByCodeReadsThroughCache(t *testing.T) {
	svc, repo, _ := newCachedCourseService()

	first, hit, err := svc.GetByCode(context.Background(), "CS01")
	require.NoError(t, err)
	assert.False(t, hit)
	second, hit, err := svc.GetByCode(context.Background(), "CS01")
	require.NoError(t, err)
	assert.True(t, hit)

	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, 1, repo.findCalls)
}

func TestCourseServiceWritesInvalidateCache(t *testing.T) {
	svc, repo, store := newCachedCourseService()

	_, _, err := svc.GetByCode(context.Background(), "CS01")
	require.NoError(t, err)
	_, _, err = svc.List(context.Background(), models.CourseFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, store.entries)

	updated, err := svc.Update(context.Background(), "CS01", UpdateCourseRequest{Name: "Intro v2", Description: "new"})
	require.NoError(t, err)
	assert.Equal(t, "Intro v2", updated.Name)
	assert.Empty(t, store.entries)

	fetched, _, err := svc.GetByCode(context.Background(), "CS01")
	require.NoError(t, err)
	assert.Equal(t, "Intro v2", fetched.Name)
	assert.Equal(t, 3, repo.findCalls)
}

func TestCourseServiceDeleteRetainsRetiredCourse(t *testing.T) {
	svc, _, _ := newCachedCourseService()

	retired, err := svc.Delete(context.Background(), "CS01")
	require.NoError(t, err)
	assert.True(t, retired.Deleted)

	fetched, _, err := svc.GetByCode(context.Background(), "CS01")
	require.NoError(t, err)
	assert.True(t, fetched.Deleted)
	assert.True(t, fetched.Snapshot().Deleted)
}

func TestCourseServiceCreateDuplicate(t *testing.T) {
	svc, _, _ := newCachedCourseService()

	_, err := svc.Create(context.Background(), CreateCourseRequest{Code: "CS01", Name: "Again"})
	assert.ErrorIs(t, err, appErrors.ErrCourseExists)

	created, err := svc.Create(context.Background(), CreateCourseRequest{Code: " CS05 ", Name: "New"})
	require.NoError(t, err)
	assert.Equal(t, "CS05", created.Code)
}

func TestCourseServiceCreateValidation(t *testing.T) {
	svc, _, _ := newCachedCourseService()

	_, err := svc.Create(context.Background(), CreateCourseRequest{Code: "", Name: "x"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestCourseServiceNotFound(t *testing.T) {
	svc := NewCourseService(newMemoryCourseRepo(), nil, nil, nil)

	_, _, err := svc.GetByCode(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, appErrors.ErrCourseNotFound)
	_, err = svc.Delete(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, appErrors.ErrCourseNotFound)
}

func TestCourseServiceListWithoutCache(t *testing.T) {
	repo := newMemoryCourseRepo()
	svc := NewCourseService(repo, nil, nil, nil)

	courses, pagination, err := svc.List(context.Background(), models.CourseFilter{})
	require.NoError(t, err)
	assert.Len(t, courses, 1)
	assert.Equal(t, 1, pagination.TotalCount)

	_, _, err = svc.List(context.Background(), models.CourseFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
}
