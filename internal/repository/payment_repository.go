package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tutoria-app/tutoria-api/internal/models"
)

// PaymentRepository manages persistence for monthly charges.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// List returns payments scoped to the owner through the student join.
func (r *PaymentRepository) List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, int, error) {
	base := "FROM payments p JOIN students s ON s.id = p.student_id"
	conditions := []string{"s.owner_id = $1"}
	args := []interface{}{filter.OwnerID}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("p.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Year != 0 {
		conditions = append(conditions, fmt.Sprintf("p.year = $%d", len(args)+1))
		args = append(args, filter.Year)
	}
	if filter.Month != 0 {
		conditions = append(conditions, fmt.Sprintf("p.month = $%d", len(args)+1))
		args = append(args, filter.Month)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(s.name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT p.id, p.student_id, p.month, p.year, p.status, p.amount, p.paid_at,
        s.name AS student_name
        %s ORDER BY p.year DESC, p.month DESC, s.name LIMIT %d OFFSET %d`, base, size, offset)

	var payments []models.PaymentDetail
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}
	return payments, total, nil
}

// FindByID fetches a payment with the owning student's name.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.PaymentDetail, error) {
	const query = `SELECT p.id, p.student_id, p.month, p.year, p.status, p.amount, p.paid_at,
        s.name AS student_name
        FROM payments p JOIN students s ON s.id = p.student_id WHERE p.id = $1`
	var payment models.PaymentDetail
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		return nil, err
	}
	return &payment, nil
}

// OwnerID resolves the owner of the student a payment belongs to.
func (r *PaymentRepository) OwnerID(ctx context.Context, paymentID string) (string, error) {
	const query = `SELECT s.owner_id FROM payments p JOIN students s ON s.id = p.student_id WHERE p.id = $1`
	var ownerID string
	if err := r.db.GetContext(ctx, &ownerID, query, paymentID); err != nil {
		return "", err
	}
	return ownerID, nil
}

// Create inserts a new payment record.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.Status == "" {
		payment.Status = models.PaymentPending
	}
	const query = `INSERT INTO payments (id, student_id, month, year, status, amount, paid_at)
        VALUES (:id, :student_id, :month, :year, :status, :amount, :paid_at)`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// Update overwrites status, amount and paid_at only.
func (r *PaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	const query = `UPDATE payments SET status = :status, amount = :amount, paid_at = :paid_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	return nil
}

// UpdateStatus overwrites the status alone. Legacy path.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, status models.PaymentStatus) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE payments SET status = $2 WHERE id = $1`, id, status); err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	return nil
}

// ListByOwnerAndMonth returns every payment of the owner's students for
// the month, the monthly roll-up input.
func (r *PaymentRepository) ListByOwnerAndMonth(ctx context.Context, ownerID string, month, year int) ([]models.PaymentDetail, error) {
	const query = `SELECT p.id, p.student_id, p.month, p.year, p.status, p.amount, p.paid_at,
        s.name AS student_name
        FROM payments p JOIN students s ON s.id = p.student_id
        WHERE s.owner_id = $1 AND p.month = $2 AND p.year = $3 ORDER BY s.name`
	var payments []models.PaymentDetail
	if err := r.db.SelectContext(ctx, &payments, query, ownerID, month, year); err != nil {
		return nil, fmt.Errorf("list monthly payments: %w", err)
	}
	return payments, nil
}
