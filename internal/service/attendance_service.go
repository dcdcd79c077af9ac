package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tutoria-app/tutoria-api/internal/models"
	appErrors "github.com/tutoria-app/tutoria-api/pkg/errors"
)

type attendanceRepository interface {
	MaxLessonNumber(ctx context.Context, classID string) (int, error)
	ExistsOnDate(ctx context.Context, classID string, date time.Time) (bool, error)
	CreateWithLogs(ctx context.Context, session *models.AttendanceSession, logs []models.AttendanceLog) error
	UpdateWithLogs(ctx context.Context, session *models.AttendanceSession, logs []models.AttendanceLog) error
	FindByID(ctx context.Context, id string) (*models.AttendanceSession, error)
	FindDetail(ctx context.Context, id string) (*models.SessionDetail, error)
	ListByClass(ctx context.Context, classID string) ([]models.AttendanceSession, error)
	Delete(ctx context.Context, id string) (int64, error)
}

// AttendanceLogRequest is one student's entry in a session payload.
type AttendanceLogRequest struct {
	StudentID      string   `json:"student_id" validate:"required"`
	Status         string   `json:"status" validate:"required,oneof=present absent late justified"`
	EssayDelivered bool     `json:"essay_delivered"`
	Grade          *float64 `json:"grade" validate:"omitempty,gte=0,lte=100"`
	Observation    *string  `json:"observation"`
}

// SessionRequest holds payload for creating or updating sessions.
type SessionRequest struct {
	Date        time.Time              `json:"date" validate:"required"`
	Description string                 `json:"description"`
	Logs        []AttendanceLogRequest `json:"logs" validate:"dive"`
}

// AttendanceService handles sessions and their per-student logs.
type AttendanceService struct {
	repo      attendanceRepository
	classes   *ClassService
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, classes *ClassService, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, classes: classes, cache: cache, validator: validate, logger: logger}
}

// Create records a new session. The lesson number is one past the
// class's current maximum and a blank description becomes "Aula NN".
// A second session on the same date conflicts.
func (s *AttendanceService) Create(ctx context.Context, userID, classID string, req SessionRequest) (*models.SessionDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	if _, err := s.classes.Get(ctx, userID, classID); err != nil {
		return nil, err
	}

	day := calendarDate(req.Date)
	exists, err := s.repo.ExistsOnDate(ctx, classID, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check session date")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a session already exists for this class on this date")
	}

	max, err := s.repo.MaxLessonNumber(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to number lesson")
	}

	session := &models.AttendanceSession{
		ClassID:      classID,
		Date:         day,
		Description:  req.Description,
		LessonNumber: max + 1,
	}
	if session.Description == "" {
		session.Description = fmt.Sprintf("Aula %02d", session.LessonNumber)
	}

	logs := buildLogs(req.Logs)
	if err := s.repo.CreateWithLogs(ctx, session, logs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}

	s.invalidateStudents(ctx, logs)
	return s.detail(ctx, session.ID)
}

// Update overwrites date and description and replaces the full log
// list. Students omitted from the payload lose their entry.
func (s *AttendanceService) Update(ctx context.Context, userID, classID, sessionID string, req SessionRequest) (*models.SessionDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	session, err := s.getOwnedSession(ctx, userID, classID, sessionID)
	if err != nil {
		return nil, err
	}

	day := calendarDate(req.Date)
	if !calendarDate(session.Date).Equal(day) {
		exists, err := s.repo.ExistsOnDate(ctx, classID, day)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check session date")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "a session already exists for this class on this date")
		}
	}

	previous, err := s.repo.FindDetail(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session logs")
	}

	session.Date = day
	if req.Description != "" {
		session.Description = req.Description
	}

	logs := buildLogs(req.Logs)
	if err := s.repo.UpdateWithLogs(ctx, session, logs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update session")
	}

	for _, log := range previous.Logs {
		_ = s.cache.Invalidate(ctx, studentStatsCacheKey+log.StudentID)
	}
	s.invalidateStudents(ctx, logs)
	return s.detail(ctx, sessionID)
}

// Delete removes the session and its logs.
func (s *AttendanceService) Delete(ctx context.Context, userID, classID, sessionID string) error {
	if _, err := s.getOwnedSession(ctx, userID, classID, sessionID); err != nil {
		return err
	}

	detail, err := s.repo.FindDetail(ctx, sessionID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session logs")
	}

	affected, err := s.repo.Delete(ctx, sessionID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete session")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}

	for _, log := range detail.Logs {
		_ = s.cache.Invalidate(ctx, studentStatsCacheKey+log.StudentID)
	}
	return nil
}

// Get returns a session with its logs after the ownership check.
func (s *AttendanceService) Get(ctx context.Context, userID, sessionID string) (*models.SessionDetail, error) {
	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.classes.Get(ctx, userID, session.ClassID); err != nil {
		return nil, err
	}
	return s.detail(ctx, sessionID)
}

// ListByClass returns the class's sessions ordered by lesson number.
func (s *AttendanceService) ListByClass(ctx context.Context, userID, classID string) ([]models.AttendanceSession, error) {
	if _, err := s.classes.Get(ctx, userID, classID); err != nil {
		return nil, err
	}
	sessions, err := s.repo.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	return sessions, nil
}

func (s *AttendanceService) getOwnedSession(ctx context.Context, userID, classID, sessionID string) (*models.AttendanceSession, error) {
	if _, err := s.classes.Get(ctx, userID, classID); err != nil {
		return nil, err
	}
	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.ClassID != classID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	return session, nil
}

func (s *AttendanceService) findSession(ctx context.Context, sessionID string) (*models.AttendanceSession, error) {
	session, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

func (s *AttendanceService) detail(ctx context.Context, sessionID string) (*models.SessionDetail, error) {
	detail, err := s.repo.FindDetail(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return detail, nil
}

func (s *AttendanceService) invalidateStudents(ctx context.Context, logs []models.AttendanceLog) {
	for _, log := range logs {
		_ = s.cache.Invalidate(ctx, studentStatsCacheKey+log.StudentID)
	}
}

// calendarDate strips the clock and zone so the session date matches
// the DATE column regardless of how the client serialized it.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func buildLogs(requests []AttendanceLogRequest) []models.AttendanceLog {
	logs := make([]models.AttendanceLog, 0, len(requests))
	for _, req := range requests {
		logs = append(logs, models.AttendanceLog{
			StudentID:      req.StudentID,
			Status:         req.Status,
			EssayDelivered: req.EssayDelivered,
			Grade:          req.Grade,
			Observation:    req.Observation,
		})
	}
	return logs
}
