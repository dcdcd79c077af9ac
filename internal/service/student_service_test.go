package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutoria-app/tutoria-api/internal/models"
	appErrors "github.com/tutoria-app/tutoria-api/pkg/errors"
)

type mockStudentRepo struct {
	students map[string]*models.Student
	deleted  []string
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	var list []models.Student
	for _, s := range m.students {
		if s.OwnerID == filter.OwnerID {
			list = append(list, *s)
		}
	}
	return list, len(list), nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if m.students == nil {
		m.students = make(map[string]*models.Student)
	}
	if student.ID == "" {
		student.ID = "new-student"
	}
	m.students[student.ID] = student
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	m.students[student.ID] = student
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) (int64, error) {
	if _, ok := m.students[id]; !ok {
		return 0, nil
	}
	delete(m.students, id)
	m.deleted = append(m.deleted, id)
	return 1, nil
}

type mockLogReader struct {
	logs map[string][]models.AttendanceLogView
}

func (m *mockLogReader) ListLogsByStudent(ctx context.Context, studentID string) ([]models.AttendanceLogView, error) {
	return m.logs[studentID], nil
}

func (m *mockLogReader) Evolution(ctx context.Context, studentID string) ([]models.EvolutionPoint, error) {
	var points []models.EvolutionPoint
	for _, log := range m.logs[studentID] {
		points = append(points, models.EvolutionPoint{Date: log.SessionDate, Grade: log.Grade, Status: log.Status})
	}
	return points, nil
}

func ptr(v float64) *float64 { return &v }

func newStudentFixture() (*StudentService, *mockStudentRepo, *mockLogReader) {
	repo := &mockStudentRepo{students: map[string]*models.Student{
		"s1": {ID: "s1", Name: "Ana Silva", OwnerID: "u1", Active: true},
	}}
	logs := &mockLogReader{logs: map[string][]models.AttendanceLogView{}}
	svc := NewStudentService(repo, logs, nil, validator.New(), zap.NewNop())
	return svc, repo, logs
}

func TestStudentStatisticsAggregation(t *testing.T) {
	svc, _, logs := newStudentFixture()
	now := time.Now()
	logs.logs["s1"] = []models.AttendanceLogView{
		{AttendanceLog: models.AttendanceLog{Status: models.StatusPresent, Grade: ptr(90)}, SessionDate: now},
		{AttendanceLog: models.AttendanceLog{Status: models.StatusAbsent}, SessionDate: now},
		{AttendanceLog: models.AttendanceLog{Status: models.StatusPresent, Grade: ptr(80)}, SessionDate: now},
	}

	stats, err := svc.Statistics(context.Background(), "u1", "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalClasses)
	assert.Equal(t, 2, stats.Present)
	assert.InDelta(t, 66.67, stats.AttendanceRate, 0.001)
	assert.InDelta(t, 85.0, stats.AvgGrade, 0.001)
}

func TestStudentStatisticsNoLogs(t *testing.T) {
	svc, _, _ := newStudentFixture()

	stats, err := svc.Statistics(context.Background(), "u1", "s1")
	require.NoError(t, err)
	assert.Zero(t, stats.TotalClasses)
	assert.Zero(t, stats.AttendanceRate)
	assert.Zero(t, stats.AvgGrade)
}

func TestStudentGetForeignOwnerForbidden(t *testing.T) {
	svc, _, _ := newStudentFixture()

	_, err := svc.Get(context.Background(), "u2", "s1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Status, appErrors.FromError(err).Status)
}

func TestStudentGetMissingNotFound(t *testing.T) {
	svc, _, _ := newStudentFixture()

	_, err := svc.Get(context.Background(), "u1", "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)
}

func TestStudentCreateSetsOwnerAndActive(t *testing.T) {
	svc, repo, _ := newStudentFixture()

	student, err := svc.Create(context.Background(), "u1", CreateStudentRequest{Name: "Bruno Costa"})
	require.NoError(t, err)
	assert.Equal(t, "u1", student.OwnerID)
	assert.True(t, student.Active)
	assert.Contains(t, repo.students, student.ID)
}

func TestStudentUpdateKeepsOwner(t *testing.T) {
	svc, repo, _ := newStudentFixture()

	updated, err := svc.Update(context.Background(), "u1", "s1", UpdateStudentRequest{Name: "Ana S.", Active: false})
	require.NoError(t, err)
	assert.Equal(t, "u1", updated.OwnerID)
	assert.Equal(t, "Ana S.", updated.Name)
	assert.False(t, updated.Active)
	assert.Equal(t, "Ana S.", repo.students["s1"].Name)
}

func TestStudentDelete(t *testing.T) {
	svc, repo, _ := newStudentFixture()

	err := svc.Delete(context.Background(), "u1", "s1")
	require.NoError(t, err)
	assert.Contains(t, repo.deleted, "s1")
}
