package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutoria-app/tutoria-api/internal/models"
)

func paymentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "student_id", "month", "year", "status", "amount", "paid_at", "student_name"}).
		AddRow("p1", "s1", 3, 2025, string(models.PaymentPending), 250.0, nil, "Ana Silva")
}

func TestPaymentListScopesByOwner(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectQuery("FROM payments p JOIN students s").
		WithArgs("u1").
		WillReturnRows(paymentRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	payments, total, err := repo.List(context.Background(), models.PaymentFilter{OwnerID: "u1"})
	require.NoError(t, err)
	assert.Len(t, payments, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Ana Silva", payments[0].StudentName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentListAppliesMonthAndYear(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectQuery("FROM payments p JOIN students s").
		WithArgs("u1", 2025, 3).
		WillReturnRows(paymentRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("u1", 2025, 3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, _, err := repo.List(context.Background(), models.PaymentFilter{OwnerID: "u1", Year: 2025, Month: 3})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentCreateDefaultsPending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectExec("INSERT INTO payments").WillReturnResult(sqlmock.NewResult(1, 1))

	payment := &models.Payment{StudentID: "s1", Month: 3, Year: 2025, Amount: 250}
	err := repo.Create(context.Background(), payment)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, payment.Status)
	assert.NotEmpty(t, payment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentOwnerID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectQuery("SELECT s.owner_id FROM payments p").
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow("u1"))

	ownerID, err := repo.OwnerID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "u1", ownerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
