package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Cascade policy is declared once, here, for every child relation:
// deleting a user removes its students and classes, deleting a student
// removes its enrollments, attendance logs and payments, deleting a
// class removes its enrollments and sessions, deleting a session
// removes its logs.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
        id TEXT PRIMARY KEY,
        email TEXT NOT NULL UNIQUE,
        password_hash TEXT NOT NULL,
        is_admin BOOLEAN NOT NULL DEFAULT FALSE,
        created_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS students (
        id TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        phone TEXT,
        parent_name TEXT,
        parent_phone TEXT,
        parent_email TEXT,
        school_year TEXT,
        class_type TEXT,
        active BOOLEAN NOT NULL DEFAULT TRUE,
        owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        created_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS classes (
        id TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        schedule TEXT NOT NULL,
        owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        created_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS enrollments (
        id TEXT PRIMARY KEY,
        student_id TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
        class_id TEXT NOT NULL REFERENCES classes(id) ON DELETE CASCADE,
        created_at TIMESTAMPTZ NOT NULL,
        UNIQUE (student_id, class_id)
    )`,
	`CREATE TABLE IF NOT EXISTS attendance_sessions (
        id TEXT PRIMARY KEY,
        class_id TEXT NOT NULL REFERENCES classes(id) ON DELETE CASCADE,
        date DATE NOT NULL,
        description TEXT NOT NULL,
        lesson_number INTEGER NOT NULL DEFAULT 1,
        UNIQUE (class_id, date)
    )`,
	`CREATE TABLE IF NOT EXISTS attendance_logs (
        id TEXT PRIMARY KEY,
        session_id TEXT NOT NULL REFERENCES attendance_sessions(id) ON DELETE CASCADE,
        student_id TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
        status TEXT NOT NULL,
        essay_delivered BOOLEAN NOT NULL DEFAULT FALSE,
        grade DOUBLE PRECISION,
        observation TEXT
    )`,
	`CREATE TABLE IF NOT EXISTS payments (
        id TEXT PRIMARY KEY,
        student_id TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
        month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
        year INTEGER NOT NULL,
        status TEXT NOT NULL DEFAULT 'PENDING',
        amount DOUBLE PRECISION NOT NULL DEFAULT 0,
        paid_at DATE
    )`,
	`CREATE INDEX IF NOT EXISTS idx_students_owner ON students(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_classes_owner ON classes(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_logs_student ON attendance_logs(student_id)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_student ON payments(student_id)`,
}

// Migrate applies the schema, creating missing tables and indexes.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
