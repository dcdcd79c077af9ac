package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutoria-app/tutoria-api/internal/models"
	appErrors "github.com/tutoria-app/tutoria-api/pkg/errors"
)

type mockAttendanceRepo struct {
	sessions map[string]*models.AttendanceSession
	logs     map[string][]models.AttendanceLog
	names    map[string]string
}

func (m *mockAttendanceRepo) MaxLessonNumber(ctx context.Context, classID string) (int, error) {
	max := 0
	for _, s := range m.sessions {
		if s.ClassID == classID && s.LessonNumber > max {
			max = s.LessonNumber
		}
	}
	return max, nil
}

func (m *mockAttendanceRepo) ExistsOnDate(ctx context.Context, classID string, date time.Time) (bool, error) {
	for _, s := range m.sessions {
		if s.ClassID == classID && s.Date.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAttendanceRepo) CreateWithLogs(ctx context.Context, session *models.AttendanceSession, logs []models.AttendanceLog) error {
	if m.sessions == nil {
		m.sessions = make(map[string]*models.AttendanceSession)
	}
	if m.logs == nil {
		m.logs = make(map[string][]models.AttendanceLog)
	}
	if session.ID == "" {
		session.ID = fmt.Sprintf("sess-%d", len(m.sessions)+1)
	}
	copied := *session
	m.sessions[session.ID] = &copied
	m.logs[session.ID] = logs
	return nil
}

func (m *mockAttendanceRepo) UpdateWithLogs(ctx context.Context, session *models.AttendanceSession, logs []models.AttendanceLog) error {
	copied := *session
	m.sessions[session.ID] = &copied
	m.logs[session.ID] = logs
	return nil
}

func (m *mockAttendanceRepo) FindByID(ctx context.Context, id string) (*models.AttendanceSession, error) {
	if s, ok := m.sessions[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAttendanceRepo) FindDetail(ctx context.Context, id string) (*models.SessionDetail, error) {
	session, err := m.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &models.SessionDetail{AttendanceSession: *session}
	for _, log := range m.logs[id] {
		detail.Logs = append(detail.Logs, models.AttendanceLogView{
			AttendanceLog:      log,
			StudentName:        m.names[log.StudentID],
			SessionDate:        session.Date,
			SessionDescription: session.Description,
		})
	}
	return detail, nil
}

func (m *mockAttendanceRepo) ListByClass(ctx context.Context, classID string) ([]models.AttendanceSession, error) {
	var list []models.AttendanceSession
	for _, s := range m.sessions {
		if s.ClassID == classID {
			list = append(list, *s)
		}
	}
	return list, nil
}

func (m *mockAttendanceRepo) Delete(ctx context.Context, id string) (int64, error) {
	if _, ok := m.sessions[id]; !ok {
		return 0, nil
	}
	delete(m.sessions, id)
	delete(m.logs, id)
	return 1, nil
}

func newAttendanceFixture() (*AttendanceService, *mockAttendanceRepo) {
	classRepo := &mockClassRepo{classes: map[string]*models.Class{
		"c1": {ID: "c1", Name: "Turma A", OwnerID: "u1"},
	}}
	classes := NewClassService(classRepo, validator.New(), zap.NewNop())
	repo := &mockAttendanceRepo{names: map[string]string{"s1": "Ana Silva", "s2": "Bruno Costa"}}
	svc := NewAttendanceService(repo, classes, nil, validator.New(), zap.NewNop())
	return svc, repo
}

func TestSessionCreateNumbersLessons(t *testing.T) {
	svc, _ := newAttendanceFixture()

	first, err := svc.Create(context.Background(), "u1", "c1", SessionRequest{
		Date: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first.LessonNumber)
	assert.Equal(t, "Aula 01", first.Description)

	second, err := svc.Create(context.Background(), "u1", "c1", SessionRequest{
		Date: time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second.LessonNumber)
	assert.Equal(t, "Aula 02", second.Description)
}

func TestSessionCreateKeepsExplicitDescription(t *testing.T) {
	svc, _ := newAttendanceFixture()

	session, err := svc.Create(context.Background(), "u1", "c1", SessionRequest{
		Date:        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Description: "Revisao de redacao",
	})
	require.NoError(t, err)
	assert.Equal(t, "Revisao de redacao", session.Description)
}

func TestSessionCreateDuplicateDateConflicts(t *testing.T) {
	svc, _ := newAttendanceFixture()
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	_, err := svc.Create(context.Background(), "u1", "c1", SessionRequest{Date: date})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "u1", "c1", SessionRequest{Date: date})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Status, appErrors.FromError(err).Status)
}

func TestSessionCreateNormalizesClockTime(t *testing.T) {
	svc, repo := newAttendanceFixture()
	saoPaulo := time.FixedZone("BRT", -3*60*60)

	created, err := svc.Create(context.Background(), "u1", "c1", SessionRequest{
		Date: time.Date(2025, 3, 10, 13, 45, 0, 0, saoPaulo),
	})
	require.NoError(t, err)
	assert.True(t, created.Date.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)))

	// Same calendar day serialized differently still conflicts.
	_, err = svc.Create(context.Background(), "u1", "c1", SessionRequest{
		Date: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Status, appErrors.FromError(err).Status)
	assert.Len(t, repo.sessions, 1)
}

func TestSessionUpdateSameDayDifferentClockNoConflict(t *testing.T) {
	svc, _ := newAttendanceFixture()

	created, err := svc.Create(context.Background(), "u1", "c1", SessionRequest{
		Date: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	saoPaulo := time.FixedZone("BRT", -3*60*60)
	updated, err := svc.Update(context.Background(), "u1", "c1", created.ID, SessionRequest{
		Date: time.Date(2025, 3, 10, 19, 30, 0, 0, saoPaulo),
	})
	require.NoError(t, err)
	assert.True(t, updated.Date.Equal(created.Date))
}

func TestSessionUpdateReplacesLogs(t *testing.T) {
	svc, repo := newAttendanceFixture()
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	created, err := svc.Create(context.Background(), "u1", "c1", SessionRequest{
		Date: date,
		Logs: []AttendanceLogRequest{
			{StudentID: "s1", Status: models.StatusPresent},
			{StudentID: "s2", Status: models.StatusAbsent},
		},
	})
	require.NoError(t, err)
	require.Len(t, created.Logs, 2)

	updated, err := svc.Update(context.Background(), "u1", "c1", created.ID, SessionRequest{
		Date: date,
		Logs: []AttendanceLogRequest{
			{StudentID: "s1", Status: models.StatusPresent, Grade: ptr(95)},
		},
	})
	require.NoError(t, err)
	require.Len(t, updated.Logs, 1)
	assert.Equal(t, "s1", updated.Logs[0].StudentID)
	assert.Len(t, repo.logs[created.ID], 1)
}

func TestSessionUpdateKeepsLessonNumber(t *testing.T) {
	svc, _ := newAttendanceFixture()

	created, err := svc.Create(context.Background(), "u1", "c1", SessionRequest{
		Date: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), "u1", "c1", created.ID, SessionRequest{
		Date: time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, created.LessonNumber, updated.LessonNumber)
}

func TestSessionUpdateWrongClassNotFound(t *testing.T) {
	svc, repo := newAttendanceFixture()

	created, err := svc.Create(context.Background(), "u1", "c1", SessionRequest{
		Date: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	repo.sessions[created.ID].ClassID = "other"
	_, err = svc.Update(context.Background(), "u1", "c1", created.ID, SessionRequest{
		Date: time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)
}

func TestSessionDelete(t *testing.T) {
	svc, repo := newAttendanceFixture()

	created, err := svc.Create(context.Background(), "u1", "c1", SessionRequest{
		Date: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Logs: []AttendanceLogRequest{{StudentID: "s1", Status: models.StatusPresent}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "u1", "c1", created.ID))
	assert.Empty(t, repo.sessions)
}
