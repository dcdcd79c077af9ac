package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tutoria-app/tutoria-api/internal/models"
)

// EnrollmentRepository handles persistence of student-class links.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Find returns the enrollment for the (student, class) pair.
func (r *EnrollmentRepository) Find(ctx context.Context, studentID, classID string) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, class_id, created_at FROM enrollments
        WHERE student_id = $1 AND class_id = $2`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, studentID, classID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Create persists a new enrollment record.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO enrollments (id, student_id, class_id, created_at)
        VALUES (:id, :student_id, :class_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Delete removes the (student, class) link. Absent rows are a no-op.
func (r *EnrollmentRepository) Delete(ctx context.Context, studentID, classID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM enrollments WHERE student_id = $1 AND class_id = $2`, studentID, classID)
	if err != nil {
		return 0, fmt.Errorf("delete enrollment: %w", err)
	}
	return res.RowsAffected()
}
