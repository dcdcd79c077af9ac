package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutoria-app/tutoria-api/internal/models"
	"github.com/tutoria-app/tutoria-api/pkg/report"
)

func newReportFixture() (*ReportService, *mockLogReader, *mockPaymentRepo) {
	studentRepo := &mockStudentRepo{students: map[string]*models.Student{
		"s1": {ID: "s1", Name: "Ana Silva", OwnerID: "u1", Active: true},
	}}
	logs := &mockLogReader{logs: map[string][]models.AttendanceLogView{}}
	students := NewStudentService(studentRepo, logs, nil, validator.New(), zap.NewNop())

	classRepo := &mockClassRepo{classes: map[string]*models.Class{"c1": {ID: "c1", Name: "Turma A", OwnerID: "u1"}}}
	classes := NewClassService(classRepo, validator.New(), zap.NewNop())
	attendanceRepo := &mockAttendanceRepo{names: map[string]string{"s1": "Ana Silva"}}
	sessions := NewAttendanceService(attendanceRepo, classes, nil, validator.New(), zap.NewNop())

	paymentRepo := &mockPaymentRepo{
		payments: map[string]*models.Payment{},
		owners:   map[string]string{},
		names:    map[string]string{"s1": "Ana Silva"},
	}
	payments := NewPaymentService(paymentRepo, students, validator.New(), zap.NewNop())

	svc := NewReportService(report.NewRenderer(), students, sessions, payments, zap.NewNop())
	return svc, logs, paymentRepo
}

func TestStudentReportRendersPDF(t *testing.T) {
	svc, logs, _ := newReportFixture()
	now := time.Now()
	logs.logs["s1"] = []models.AttendanceLogView{
		{AttendanceLog: models.AttendanceLog{Status: models.StatusPresent, Grade: ptr(90)}, StudentName: "Ana Silva", SessionDate: now, SessionDescription: "Aula 01"},
		{AttendanceLog: models.AttendanceLog{Status: models.StatusAbsent}, StudentName: "Ana Silva", SessionDate: now, SessionDescription: "Aula 02"},
	}

	payload, filename, err := svc.StudentReport(context.Background(), "u1", "s1", "")
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(payload[:4]))
	assert.Equal(t, "relatorio_ana_silva.pdf", filename)
}

func TestStudentReportForeignOwnerFails(t *testing.T) {
	svc, _, _ := newReportFixture()

	_, _, err := svc.StudentReport(context.Background(), "u2", "s1", "")
	require.Error(t, err)
}

func TestMonthlyPaymentReportRendersPDF(t *testing.T) {
	svc, _, paymentRepo := newReportFixture()
	now := time.Now()
	paymentRepo.seed("u1", models.Payment{ID: "p1", StudentID: "s1", Month: 3, Year: 2025, Status: models.PaymentPaid, Amount: 250, PaidAt: &now})

	payload, filename, err := svc.MonthlyPaymentReport(context.Background(), "u1", 3, 2025)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(payload[:4]))
	assert.Equal(t, "pagamentos_2025_03.pdf", filename)
}
