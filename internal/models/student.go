package models

import "time"

// Student is a learner owned by exactly one user account.
type Student struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Phone       *string   `db:"phone" json:"phone,omitempty"`
	ParentName  *string   `db:"parent_name" json:"parent_name,omitempty"`
	ParentPhone *string   `db:"parent_phone" json:"parent_phone,omitempty"`
	ParentEmail *string   `db:"parent_email" json:"parent_email,omitempty"`
	SchoolYear  *string   `db:"school_year" json:"school_year,omitempty"`
	ClassType   *string   `db:"class_type" json:"class_type,omitempty"`
	Active      bool      `db:"active" json:"active"`
	OwnerID     string    `db:"owner_id" json:"owner_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates search parameters for listing students.
// Search matches case-insensitively against name or parent name.
type StudentFilter struct {
	OwnerID  string
	Search   string
	Page     int
	PageSize int
}

// StudentStatistics aggregates a student's attendance history.
type StudentStatistics struct {
	Student        Student             `json:"student"`
	TotalClasses   int                 `json:"total_classes"`
	Present        int                 `json:"present"`
	AttendanceRate float64             `json:"attendance_rate"`
	AvgGrade       float64             `json:"avg_grade"`
	Logs           []AttendanceLogView `json:"logs"`
}

// EvolutionPoint is one charting data point in a student's history.
type EvolutionPoint struct {
	Date   time.Time `db:"date" json:"date"`
	Grade  *float64  `db:"grade" json:"grade"`
	Status string    `db:"status" json:"status"`
}
