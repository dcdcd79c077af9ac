package models

import "time"

// Enrollment links a student to a class. The (student_id, class_id)
// pair is unique; enrolling twice returns the existing row.
type Enrollment struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
