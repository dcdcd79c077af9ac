package models

import "time"

// PaymentStatus enumerates the billing states of a monthly charge.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentLate    PaymentStatus = "LATE"
)

// Payment is a monthly charge against a student.
type Payment struct {
	ID        string        `db:"id" json:"id"`
	StudentID string        `db:"student_id" json:"student_id"`
	Month     int           `db:"month" json:"month"`
	Year      int           `db:"year" json:"year"`
	Status    PaymentStatus `db:"status" json:"status"`
	Amount    float64       `db:"amount" json:"amount"`
	PaidAt    *time.Time    `db:"paid_at" json:"paid_at"`
}

// PaymentDetail carries the owning student's name for list responses
// and the monthly roll-up report.
type PaymentDetail struct {
	Payment
	StudentName string `db:"student_name" json:"student_name"`
}

// PaymentFilter restricts payment listings. OwnerID scopes results to
// students owned by the requesting user.
type PaymentFilter struct {
	OwnerID   string
	StudentID string
	Year      int
	Month     int
	Search    string
	Page      int
	PageSize  int
}
