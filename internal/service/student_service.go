package service

import (
	"context"
	"database/sql"
	"errors"
	"math"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tutoria-app/tutoria-api/internal/models"
	appErrors "github.com/tutoria-app/tutoria-api/pkg/errors"
)

const studentStatsCacheKey = "reports:student:"

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) (int64, error)
}

type studentLogReader interface {
	ListLogsByStudent(ctx context.Context, studentID string) ([]models.AttendanceLogView, error)
	Evolution(ctx context.Context, studentID string) ([]models.EvolutionPoint, error)
}

// CreateStudentRequest holds payload for creating students.
type CreateStudentRequest struct {
	Name        string  `json:"name" validate:"required"`
	Phone       *string `json:"phone"`
	ParentName  *string `json:"parent_name"`
	ParentPhone *string `json:"parent_phone"`
	ParentEmail *string `json:"parent_email" validate:"omitempty,email"`
	SchoolYear  *string `json:"school_year"`
	ClassType   *string `json:"class_type"`
}

// UpdateStudentRequest exposes the full mutable field set.
type UpdateStudentRequest struct {
	Name        string  `json:"name" validate:"required"`
	Phone       *string `json:"phone"`
	ParentName  *string `json:"parent_name"`
	ParentPhone *string `json:"parent_phone"`
	ParentEmail *string `json:"parent_email" validate:"omitempty,email"`
	SchoolYear  *string `json:"school_year"`
	ClassType   *string `json:"class_type"`
	Active      bool    `json:"active"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	logs      studentLogReader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, logs studentLogReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, logs: logs, cache: cache, validator: validate, logger: logger}
}

// List returns the owner's students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Create registers a new student under the authenticated owner.
func (s *StudentService) Create(ctx context.Context, ownerID string, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student := &models.Student{
		Name:        req.Name,
		Phone:       req.Phone,
		ParentName:  req.ParentName,
		ParentPhone: req.ParentPhone,
		ParentEmail: req.ParentEmail,
		SchoolYear:  req.SchoolYear,
		ClassType:   req.ClassType,
		Active:      true,
		OwnerID:     ownerID,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return student, nil
}

// Get returns a student after the ownership check.
func (s *StudentService) Get(ctx context.Context, userID, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := ensureOwner(userID, student.OwnerID); err != nil {
		return nil, err
	}
	return student, nil
}

// Update modifies an existing student. The owner never changes.
func (s *StudentService) Update(ctx context.Context, userID, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	student.Name = req.Name
	student.Phone = req.Phone
	student.ParentName = req.ParentName
	student.ParentPhone = req.ParentPhone
	student.ParentEmail = req.ParentEmail
	student.SchoolYear = req.SchoolYear
	student.ClassType = req.ClassType
	student.Active = req.Active
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// Delete removes a student and, through the schema cascade, every
// attendance log, enrollment and payment that references it.
func (s *StudentService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	_ = s.cache.Invalidate(ctx, studentStatsCacheKey+id)
	return nil
}

// Evolution returns the (date, grade, status) series for charting.
func (s *StudentService) Evolution(ctx context.Context, userID, id string) ([]models.EvolutionPoint, error) {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	points, err := s.logs.Evolution(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evolution")
	}
	return points, nil
}

// Statistics aggregates the student's attendance history: attendance
// rate over all logs and the mean of non-null grades, both rounded to
// two decimals, zero when there is nothing to average.
func (s *StudentService) Statistics(ctx context.Context, userID, id string) (*models.StudentStatistics, error) {
	student, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	cacheKey := studentStatsCacheKey + id
	var cached models.StudentStatistics
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	logs, err := s.logs.ListLogsByStudent(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance logs")
	}

	total := len(logs)
	present := 0
	gradeSum := 0.0
	graded := 0
	for _, log := range logs {
		if log.Status == models.StatusPresent {
			present++
		}
		if log.Grade != nil {
			gradeSum += *log.Grade
			graded++
		}
	}

	rate := 0.0
	if total > 0 {
		rate = round2(float64(present) / float64(total) * 100)
	}
	avg := 0.0
	if graded > 0 {
		avg = round2(gradeSum / float64(graded))
	}

	stats := &models.StudentStatistics{
		Student:        *student,
		TotalClasses:   total,
		Present:        present,
		AttendanceRate: rate,
		AvgGrade:       avg,
		Logs:           logs,
	}
	_ = s.cache.Set(ctx, cacheKey, stats, 0)
	return stats, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
