package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tutoria-app/tutoria-api/internal/models"
)

// AttendanceRepository manages sessions and their per-student logs.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// MaxLessonNumber returns the highest lesson number recorded for the
// class, zero when the class has no sessions yet.
func (r *AttendanceRepository) MaxLessonNumber(ctx context.Context, classID string) (int, error) {
	var max int
	const query = `SELECT COALESCE(MAX(lesson_number), 0) FROM attendance_sessions WHERE class_id = $1`
	if err := r.db.GetContext(ctx, &max, query, classID); err != nil {
		return 0, fmt.Errorf("max lesson number: %w", err)
	}
	return max, nil
}

// ExistsOnDate reports whether the class already has a session on the date.
func (r *AttendanceRepository) ExistsOnDate(ctx context.Context, classID string, date time.Time) (bool, error) {
	const query = `SELECT 1 FROM attendance_sessions WHERE class_id = $1 AND date = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, classID, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check session date: %w", err)
	}
	return true, nil
}

// CreateWithLogs inserts the session and its logs in one transaction.
func (r *AttendanceRepository) CreateWithLogs(ctx context.Context, session *models.AttendanceSession, logs []models.AttendanceLog) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create session: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const sessionQuery = `INSERT INTO attendance_sessions (id, class_id, date, description, lesson_number)
        VALUES (:id, :class_id, :date, :description, :lesson_number)`
	if _, err := tx.NamedExecContext(ctx, sessionQuery, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	if err := insertLogs(ctx, tx, session.ID, logs); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateWithLogs overwrites the session row and replaces every log in
// one transaction. Logs for students omitted from the new list are gone
// afterwards.
func (r *AttendanceRepository) UpdateWithLogs(ctx context.Context, session *models.AttendanceSession, logs []models.AttendanceLog) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update session: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const sessionQuery = `UPDATE attendance_sessions SET date = :date, description = :description WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, sessionQuery, session); err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM attendance_logs WHERE session_id = $1`, session.ID); err != nil {
		return fmt.Errorf("clear session logs: %w", err)
	}

	if err := insertLogs(ctx, tx, session.ID, logs); err != nil {
		return err
	}

	return tx.Commit()
}

func insertLogs(ctx context.Context, tx *sqlx.Tx, sessionID string, logs []models.AttendanceLog) error {
	const logQuery = `INSERT INTO attendance_logs (id, session_id, student_id, status, essay_delivered, grade, observation)
        VALUES (:id, :session_id, :student_id, :status, :essay_delivered, :grade, :observation)`
	for i := range logs {
		if logs[i].ID == "" {
			logs[i].ID = uuid.NewString()
		}
		logs[i].SessionID = sessionID
		if _, err := tx.NamedExecContext(ctx, logQuery, logs[i]); err != nil {
			return fmt.Errorf("create session log: %w", err)
		}
	}
	return nil
}

// FindByID fetches a session without its logs.
func (r *AttendanceRepository) FindByID(ctx context.Context, id string) (*models.AttendanceSession, error) {
	const query = `SELECT id, class_id, date, description, lesson_number FROM attendance_sessions WHERE id = $1`
	var session models.AttendanceSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// FindDetail fetches a session with its logs and student names.
func (r *AttendanceRepository) FindDetail(ctx context.Context, id string) (*models.SessionDetail, error) {
	session, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	const logQuery = `SELECT l.id, l.session_id, l.student_id, l.status, l.essay_delivered, l.grade, l.observation,
        s.name AS student_name, a.date AS session_date, a.description AS session_description
        FROM attendance_logs l
        JOIN students s ON s.id = l.student_id
        JOIN attendance_sessions a ON a.id = l.session_id
        WHERE l.session_id = $1 ORDER BY s.name`
	var logs []models.AttendanceLogView
	if err := r.db.SelectContext(ctx, &logs, logQuery, id); err != nil {
		return nil, fmt.Errorf("load session logs: %w", err)
	}

	return &models.SessionDetail{AttendanceSession: *session, Logs: logs}, nil
}

// ListByClass returns all sessions for the class ordered by lesson number.
func (r *AttendanceRepository) ListByClass(ctx context.Context, classID string) ([]models.AttendanceSession, error) {
	const query = `SELECT id, class_id, date, description, lesson_number
        FROM attendance_sessions WHERE class_id = $1 ORDER BY lesson_number`
	var sessions []models.AttendanceSession
	if err := r.db.SelectContext(ctx, &sessions, query, classID); err != nil {
		return nil, fmt.Errorf("list class sessions: %w", err)
	}
	return sessions, nil
}

// Delete removes the session. Logs cascade in the schema.
func (r *AttendanceRepository) Delete(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attendance_sessions WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete session: %w", err)
	}
	return res.RowsAffected()
}

// ListLogsByStudent returns a student's full log history with session
// context, ordered chronologically.
func (r *AttendanceRepository) ListLogsByStudent(ctx context.Context, studentID string) ([]models.AttendanceLogView, error) {
	const query = `SELECT l.id, l.session_id, l.student_id, l.status, l.essay_delivered, l.grade, l.observation,
        s.name AS student_name, a.date AS session_date, a.description AS session_description
        FROM attendance_logs l
        JOIN students s ON s.id = l.student_id
        JOIN attendance_sessions a ON a.id = l.session_id
        WHERE l.student_id = $1 ORDER BY a.date`
	var logs []models.AttendanceLogView
	if err := r.db.SelectContext(ctx, &logs, query, studentID); err != nil {
		return nil, fmt.Errorf("list student logs: %w", err)
	}
	return logs, nil
}

// Evolution returns the (date, grade, status) series for charting.
func (r *AttendanceRepository) Evolution(ctx context.Context, studentID string) ([]models.EvolutionPoint, error) {
	const query = `SELECT a.date, l.grade, l.status
        FROM attendance_logs l
        JOIN attendance_sessions a ON a.id = l.session_id
        WHERE l.student_id = $1 ORDER BY a.date`
	var points []models.EvolutionPoint
	if err := r.db.SelectContext(ctx, &points, query, studentID); err != nil {
		return nil, fmt.Errorf("student evolution: %w", err)
	}
	return points, nil
}
