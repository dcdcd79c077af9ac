package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/tutoria-app/tutoria-api/internal/models"
	appErrors "github.com/tutoria-app/tutoria-api/pkg/errors"
)

type enrollmentRepository interface {
	Find(ctx context.Context, studentID, classID string) (*models.Enrollment, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Delete(ctx context.Context, studentID, classID string) (int64, error)
}

type classStudentReader interface {
	ListByClass(ctx context.Context, classID string) ([]models.Student, error)
}

// EnrollmentService links students to classes. Both sides must belong
// to the same owner.
type EnrollmentService struct {
	repo     enrollmentRepository
	students *StudentService
	classes  *ClassService
	roster   classStudentReader
	logger   *zap.Logger
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(repo enrollmentRepository, students *StudentService, classes *ClassService, roster classStudentReader, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, students: students, classes: classes, roster: roster, logger: logger}
}

// Enroll links the student to the class. Enrolling an already enrolled
// student returns the existing link unchanged.
func (s *EnrollmentService) Enroll(ctx context.Context, userID, classID, studentID string) (*models.Enrollment, error) {
	if _, err := s.classes.Get(ctx, userID, classID); err != nil {
		return nil, err
	}
	if _, err := s.students.Get(ctx, userID, studentID); err != nil {
		return nil, err
	}

	existing, err := s.repo.Find(ctx, studentID, classID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}

	enrollment := &models.Enrollment{StudentID: studentID, ClassID: classID}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll student")
	}
	return enrollment, nil
}

// Unenroll removes the student-class link. Like Enroll it is
// idempotent: an absent link is a no-op, not an error.
func (s *EnrollmentService) Unenroll(ctx context.Context, userID, classID, studentID string) error {
	if _, err := s.classes.Get(ctx, userID, classID); err != nil {
		return err
	}
	if _, err := s.students.Get(ctx, userID, studentID); err != nil {
		return err
	}

	if _, err := s.repo.Delete(ctx, studentID, classID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unenroll student")
	}
	return nil
}

// ListStudents returns the class roster.
func (s *EnrollmentService) ListStudents(ctx context.Context, userID, classID string) ([]models.Student, error) {
	if _, err := s.classes.Get(ctx, userID, classID); err != nil {
		return nil, err
	}
	students, err := s.roster.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class students")
	}
	return students, nil
}
