package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutoria-app/tutoria-api/internal/service"
	appErrors "github.com/tutoria-app/tutoria-api/pkg/errors"
	"github.com/tutoria-app/tutoria-api/pkg/report"
	"github.com/tutoria-app/tutoria-api/pkg/response"
)

// AttendanceHandler exposes session lookups outside the class scope.
type AttendanceHandler struct {
	attendance *service.AttendanceService
	reports    *service.ReportService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService, reports *service.ReportService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, reports: reports}
}

// Get returns a session with its logs.
func (h *AttendanceHandler) Get(c *gin.Context) {
	user := userFromContext(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	session, err := h.attendance.Get(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Report renders the session's roll call PDF.
func (h *AttendanceHandler) Report(c *gin.Context) {
	user := userFromContext(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	doc, filename, err := h.reports.SessionReport(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Document(c, filename, report.ContentTypePDF, doc)
}
