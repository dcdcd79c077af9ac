package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tutoria-app/tutoria-api/internal/models"
	appErrors "github.com/tutoria-app/tutoria-api/pkg/errors"
)

type paymentRepository interface {
	List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.PaymentDetail, error)
	OwnerID(ctx context.Context, paymentID string) (string, error)
	Create(ctx context.Context, payment *models.Payment) error
	Update(ctx context.Context, payment *models.Payment) error
	UpdateStatus(ctx context.Context, id string, status models.PaymentStatus) error
	ListByOwnerAndMonth(ctx context.Context, ownerID string, month, year int) ([]models.PaymentDetail, error)
}

// CreatePaymentRequest holds payload for creating payments. Status and
// paid date are optional; an omitted status means PENDING.
type CreatePaymentRequest struct {
	StudentID string               `json:"student_id" validate:"required"`
	Month     int                  `json:"month" validate:"required,min=1,max=12"`
	Year      int                  `json:"year" validate:"required,min=2000"`
	Amount    float64              `json:"amount" validate:"gte=0"`
	Status    models.PaymentStatus `json:"status" validate:"omitempty,oneof=PENDING PAID LATE"`
	PaidAt    *time.Time           `json:"paid_at"`
}

// UpdatePaymentRequest mutates status, amount and paid date.
type UpdatePaymentRequest struct {
	Status models.PaymentStatus `json:"status" validate:"required,oneof=PENDING PAID LATE"`
	Amount float64              `json:"amount" validate:"gte=0"`
	PaidAt *time.Time           `json:"paid_at"`
}

// PaymentService handles monthly charge use-cases.
type PaymentService struct {
	repo      paymentRepository
	students  *StudentService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPaymentService constructs the payment service.
func NewPaymentService(repo paymentRepository, students *StudentService, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{repo: repo, students: students, validator: validate, logger: logger}
}

// List returns payments of the owner's students with pagination metadata.
func (s *PaymentService) List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, *models.Pagination, error) {
	payments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return payments, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Create records a new charge. The student must belong to the caller.
func (s *PaymentService) Create(ctx context.Context, userID string, req CreatePaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	if _, err := s.students.Get(ctx, userID, req.StudentID); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.PaymentPending
	}
	payment := &models.Payment{
		StudentID: req.StudentID,
		Month:     req.Month,
		Year:      req.Year,
		Status:    status,
		Amount:    req.Amount,
		PaidAt:    req.PaidAt,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create payment")
	}
	return payment, nil
}

// Get returns a payment after resolving ownership through the student.
func (s *PaymentService) Get(ctx context.Context, userID, id string) (*models.PaymentDetail, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	ownerID, err := s.repo.OwnerID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve payment owner")
	}
	if err := ensureOwner(userID, ownerID); err != nil {
		return nil, err
	}
	return payment, nil
}

// Update overwrites status, amount and paid date. Marking a payment
// PAID without a paid date stamps the current time; leaving PAID clears
// it unless one is supplied.
func (s *PaymentService) Update(ctx context.Context, userID, id string, req UpdatePaymentRequest) (*models.PaymentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	payment, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	payment.Status = req.Status
	payment.Amount = req.Amount
	payment.PaidAt = req.PaidAt
	if payment.Status == models.PaymentPaid && payment.PaidAt == nil {
		now := time.Now().UTC()
		payment.PaidAt = &now
	}
	if payment.Status != models.PaymentPaid && req.PaidAt == nil {
		payment.PaidAt = nil
	}

	if err := s.repo.Update(ctx, &payment.Payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update payment")
	}
	return payment, nil
}

// UpdateStatus flips only the status. Kept for clients that predate the
// full update endpoint.
func (s *PaymentService) UpdateStatus(ctx context.Context, userID, id string, status models.PaymentStatus) (*models.PaymentDetail, error) {
	switch status {
	case models.PaymentPending, models.PaymentPaid, models.PaymentLate:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid payment status")
	}
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update payment status")
	}
	return s.Get(ctx, userID, id)
}

// MonthlySummary aggregates the owner's payments for one month.
type MonthlySummary struct {
	Month    int                    `json:"month"`
	Year     int                    `json:"year"`
	Payments []models.PaymentDetail `json:"payments"`
	Total    float64                `json:"total"`
	Received float64                `json:"received"`
	Pending  float64                `json:"pending"`
}

// Monthly returns the roll-up used by the monthly payment report.
func (s *PaymentService) Monthly(ctx context.Context, userID string, month, year int) (*MonthlySummary, error) {
	if month < 1 || month > 12 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month must be between 1 and 12")
	}
	payments, err := s.repo.ListByOwnerAndMonth(ctx, userID, month, year)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load monthly payments")
	}

	summary := &MonthlySummary{Month: month, Year: year, Payments: payments}
	for _, p := range payments {
		summary.Total += p.Amount
		if p.Status == models.PaymentPaid {
			summary.Received += p.Amount
		} else {
			summary.Pending += p.Amount
		}
	}
	summary.Total = round2(summary.Total)
	summary.Received = round2(summary.Received)
	summary.Pending = round2(summary.Pending)
	return summary, nil
}
