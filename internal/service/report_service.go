package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tutoria-app/tutoria-api/internal/models"
	appErrors "github.com/tutoria-app/tutoria-api/pkg/errors"
	"github.com/tutoria-app/tutoria-api/pkg/report"
)

const reportDateLayout = "02/01/2006"

// ReportService turns aggregated data into downloadable documents.
type ReportService struct {
	renderer *report.Renderer
	students *StudentService
	sessions *AttendanceService
	payments *PaymentService
	logger   *zap.Logger
}

// NewReportService constructs the report service.
func NewReportService(renderer *report.Renderer, students *StudentService, sessions *AttendanceService, payments *PaymentService, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{renderer: renderer, students: students, sessions: sessions, payments: payments, logger: logger}
}

// StudentReport renders the student's history document. chartImage is
// an optional base64 canvas export embedded between summary and detail.
func (s *ReportService) StudentReport(ctx context.Context, userID, studentID, chartImage string) ([]byte, string, error) {
	stats, err := s.students.Statistics(ctx, userID, studentID)
	if err != nil {
		return nil, "", err
	}

	info := []string{fmt.Sprintf("Aluno: %s", stats.Student.Name)}
	if stats.Student.SchoolYear != nil && *stats.Student.SchoolYear != "" {
		info = append(info, fmt.Sprintf("Ano escolar: %s", *stats.Student.SchoolYear))
	}
	info = append(info, fmt.Sprintf("Emitido em: %s", time.Now().Format(reportDateLayout)))

	summary := &report.Table{
		Headers: []string{"Aulas", "Presencas", "Frequencia", "Media"},
		Rows: []map[string]string{{
			"Aulas":      fmt.Sprintf("%d", stats.TotalClasses),
			"Presencas":  fmt.Sprintf("%d", stats.Present),
			"Frequencia": fmt.Sprintf("%.2f%%", stats.AttendanceRate),
			"Media":      fmt.Sprintf("%.2f", stats.AvgGrade),
		}},
	}

	detail := report.Table{Headers: []string{"Data", "Aula", "Status", "Redacao", "Nota", "Observacao"}}
	for _, log := range stats.Logs {
		detail.Rows = append(detail.Rows, map[string]string{
			"Data":       log.SessionDate.Format(reportDateLayout),
			"Aula":       log.SessionDescription,
			"Status":     statusLabel(log.Status),
			"Redacao":    boolLabel(log.EssayDelivered),
			"Nota":       gradeLabel(log.Grade),
			"Observacao": textLabel(log.Observation),
		})
	}

	payload, err := s.renderer.Render(report.Document{
		Title:      "Relatorio do Aluno",
		Info:       info,
		Summary:    summary,
		DetailName: "Historico de aulas",
		Detail:     detail,
		ChartImage: chartImage,
	})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render student report")
	}

	filename := fmt.Sprintf("relatorio_%s.pdf", slugify(stats.Student.Name))
	return payload, filename, nil
}

// SessionReport renders one session's roll call document.
func (s *ReportService) SessionReport(ctx context.Context, userID, sessionID string) ([]byte, string, error) {
	detail, err := s.sessions.Get(ctx, userID, sessionID)
	if err != nil {
		return nil, "", err
	}

	table := report.Table{Headers: []string{"Aluno", "Status", "Redacao", "Nota", "Observacao"}}
	for _, log := range detail.Logs {
		table.Rows = append(table.Rows, map[string]string{
			"Aluno":      log.StudentName,
			"Status":     statusLabel(log.Status),
			"Redacao":    boolLabel(log.EssayDelivered),
			"Nota":       gradeLabel(log.Grade),
			"Observacao": textLabel(log.Observation),
		})
	}

	payload, err := s.renderer.Render(report.Document{
		Title: detail.Description,
		Info: []string{
			fmt.Sprintf("Data: %s", detail.Date.Format(reportDateLayout)),
			fmt.Sprintf("Aula numero: %d", detail.LessonNumber),
		},
		DetailName: "Chamada",
		Detail:     table,
	})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render session report")
	}

	filename := fmt.Sprintf("chamada_%s.pdf", detail.Date.Format("2006-01-02"))
	return payload, filename, nil
}

// MonthlyPaymentReport renders the owner's payment roll-up for a month.
func (s *ReportService) MonthlyPaymentReport(ctx context.Context, userID string, month, year int) ([]byte, string, error) {
	summary, err := s.payments.Monthly(ctx, userID, month, year)
	if err != nil {
		return nil, "", err
	}

	totals := &report.Table{
		Headers: []string{"Total", "Recebido", "Pendente"},
		Rows: []map[string]string{{
			"Total":    fmt.Sprintf("R$ %.2f", summary.Total),
			"Recebido": fmt.Sprintf("R$ %.2f", summary.Received),
			"Pendente": fmt.Sprintf("R$ %.2f", summary.Pending),
		}},
	}

	detail := report.Table{Headers: []string{"Aluno", "Valor", "Status", "Pago em"}}
	for _, p := range summary.Payments {
		paidAt := "-"
		if p.PaidAt != nil {
			paidAt = p.PaidAt.Format(reportDateLayout)
		}
		detail.Rows = append(detail.Rows, map[string]string{
			"Aluno":   p.StudentName,
			"Valor":   fmt.Sprintf("R$ %.2f", p.Amount),
			"Status":  paymentLabel(p.Status),
			"Pago em": paidAt,
		})
	}

	payload, err := s.renderer.Render(report.Document{
		Title:      fmt.Sprintf("Pagamentos %02d/%d", month, year),
		Summary:    totals,
		DetailName: "Mensalidades",
		Detail:     detail,
	})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render payment report")
	}

	filename := fmt.Sprintf("pagamentos_%04d_%02d.pdf", year, month)
	return payload, filename, nil
}

func statusLabel(status string) string {
	switch status {
	case models.StatusPresent:
		return "Presente"
	case models.StatusAbsent:
		return "Ausente"
	case models.StatusLate:
		return "Atrasado"
	case models.StatusJustified:
		return "Justificado"
	}
	return status
}

func paymentLabel(status models.PaymentStatus) string {
	switch status {
	case models.PaymentPaid:
		return "Pago"
	case models.PaymentLate:
		return "Atrasado"
	case models.PaymentPending:
		return "Pendente"
	}
	return string(status)
}

func boolLabel(v bool) string {
	if v {
		return "Sim"
	}
	return "Nao"
}

func gradeLabel(grade *float64) string {
	if grade == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *grade)
}

func textLabel(text *string) string {
	if text == nil {
		return ""
	}
	return *text
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "_")
	return slug
}
