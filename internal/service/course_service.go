package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	"github.com/noah-isme/course-enrollment-api/internal/repository"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
)

const courseCachePattern = "course:*"

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindByCode(ctx context.Context, code string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
}

// CreateCourseRequest is the payload for registering a course.
type CreateCourseRequest struct {
	Code        string `json:"code" validate:"required,max=32"`
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
}

// UpdateCourseRequest is the payload for editing a course. The code is immutable.
type UpdateCourseRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
}

type courseListCacheEntry struct {
	Courses []models.Course `json:"courses"`
	Total   int             `json:"total"`
}

// CourseService is the authoritative course registry.
type CourseService struct {
	repo      courseRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs the course registry. cache may be nil.
func NewCourseService(repo courseRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns courses with pagination metadata.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	page, size := models.NormalizePage(filter.Page, filter.PageSize)
	filter.Page, filter.PageSize = page, size
	key := courseListKey(filter)

	var entry courseListCacheEntry
	if hit, _ := s.cache.Get(ctx, key, &entry); hit {
		return entry.Courses, &models.Pagination{Page: page, PageSize: size, TotalCount: entry.Total}, nil
	}

	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list courses")
	}
	if courses == nil {
		courses = []models.Course{}
	}
	_ = s.cache.Set(ctx, key, courseListCacheEntry{Courses: courses, Total: total}, 0)
	return courses, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// GetByCode returns a course by code and whether it was served from cache.
// Retired courses are returned with Deleted set.
func (s *CourseService) GetByCode(ctx context.Context, code string) (*models.Course, bool, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "course code is required")
	}
	key := courseKey(code)

	var cached models.Course
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, true, nil
	}

	course, err := s.load(ctx, code)
	if err != nil {
		return nil, false, err
	}
	_ = s.cache.Set(ctx, key, course, 0)
	return course, false, nil
}

// Create registers a new course.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	req.Code = strings.TrimSpace(req.Code)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	course := &models.Course{Code: req.Code, Name: req.Name, Description: req.Description}
	if err := s.repo.Create(ctx, course); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrCourseExists, "")
		}
		return nil, appErrors.Internal(err, "failed to create course")
	}
	s.invalidate(ctx)
	s.logger.Info("course created", zap.String("course_code", course.Code))
	return course, nil
}

// Update changes the name and description of a course.
func (s *CourseService) Update(ctx context.Context, code string, req UpdateCourseRequest) (*models.Course, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	course, err := s.load(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	course.Name = req.Name
	course.Description = req.Description
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Internal(err, "failed to update course")
	}
	s.invalidate(ctx)
	return course, nil
}

// Delete retires the course and returns the updated record.
func (s *CourseService) Delete(ctx context.Context, code string) (*models.Course, error) {
	course, err := s.load(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	course.Deleted = true
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Internal(err, "failed to delete course")
	}
	s.invalidate(ctx)
	s.logger.Info("course retired", zap.String("course_code", course.Code))
	return course, nil
}

func (s *CourseService) load(ctx context.Context, code string) (*models.Course, error) {
	course, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrCourseNotFound, "")
		}
		return nil, appErrors.Internal(err, "failed to load course")
	}
	return course, nil
}

func (s *CourseService) invalidate(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, courseCachePattern)
}

func courseKey(code string) string {
	return "course:code:" + code
}

func courseListKey(filter models.CourseFilter) string {
	deleted := "any"
	if filter.Deleted != nil {
		deleted = fmt.Sprintf("%t", *filter.Deleted)
	}
	return fmt.Sprintf("course:list:%s:%s:%d:%d:%s:%s",
		strings.ToLower(filter.Search), deleted, filter.Page, filter.PageSize, filter.SortBy, filter.SortOrder)
}
