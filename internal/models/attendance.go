package models

import "time"

// Attendance log statuses. Present and absent are the common pair; late
// and justified are accepted for imported histories.
const (
	StatusPresent   = "present"
	StatusAbsent    = "absent"
	StatusLate      = "late"
	StatusJustified = "justified"
)

// AttendanceSession is one dated occurrence of a class. The
// (class_id, date) pair is unique and lesson_number counts sessions
// within the class.
type AttendanceSession struct {
	ID           string    `db:"id" json:"id"`
	ClassID      string    `db:"class_id" json:"class_id"`
	Date         time.Time `db:"date" json:"date"`
	Description  string    `db:"description" json:"description"`
	LessonNumber int       `db:"lesson_number" json:"lesson_number"`
}

// SessionDetail is a session with its logs eagerly loaded.
type SessionDetail struct {
	AttendanceSession
	Logs []AttendanceLogView `json:"logs"`
}

// AttendanceLog records one student's presence in one session.
type AttendanceLog struct {
	ID             string   `db:"id" json:"id"`
	SessionID      string   `db:"session_id" json:"session_id"`
	StudentID      string   `db:"student_id" json:"student_id"`
	Status         string   `db:"status" json:"status"`
	EssayDelivered bool     `db:"essay_delivered" json:"essay_delivered"`
	Grade          *float64 `db:"grade" json:"grade"`
	Observation    *string  `db:"observation" json:"observation"`
}

// AttendanceLogView joins a log with its student name and the parent
// session's date and description, the shape report rendering needs.
type AttendanceLogView struct {
	AttendanceLog
	StudentName        string    `db:"student_name" json:"student_name"`
	SessionDate        time.Time `db:"session_date" json:"session_date"`
	SessionDescription string    `db:"session_description" json:"session_description"`
}
