package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutoria-app/tutoria-api/internal/models"
	appErrors "github.com/tutoria-app/tutoria-api/pkg/errors"
)

type mockEnrollmentRepo struct {
	links   map[string]*models.Enrollment
	created int
}

func enrollKey(studentID, classID string) string { return studentID + "|" + classID }

func (m *mockEnrollmentRepo) Find(ctx context.Context, studentID, classID string) (*models.Enrollment, error) {
	if e, ok := m.links[enrollKey(studentID, classID)]; ok {
		return e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if m.links == nil {
		m.links = make(map[string]*models.Enrollment)
	}
	if enrollment.ID == "" {
		enrollment.ID = "new-enroll"
	}
	m.links[enrollKey(enrollment.StudentID, enrollment.ClassID)] = enrollment
	m.created++
	return nil
}

func (m *mockEnrollmentRepo) Delete(ctx context.Context, studentID, classID string) (int64, error) {
	key := enrollKey(studentID, classID)
	if _, ok := m.links[key]; !ok {
		return 0, nil
	}
	delete(m.links, key)
	return 1, nil
}

type mockClassRepo struct {
	classes map[string]*models.Class
}

func (m *mockClassRepo) List(ctx context.Context, ownerID string, page, size int) ([]models.Class, int, error) {
	var list []models.Class
	for _, c := range m.classes {
		if c.OwnerID == ownerID {
			list = append(list, *c)
		}
	}
	return list, len(list), nil
}

func (m *mockClassRepo) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if c, ok := m.classes[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockClassRepo) Create(ctx context.Context, class *models.Class) error {
	if m.classes == nil {
		m.classes = make(map[string]*models.Class)
	}
	if class.ID == "" {
		class.ID = "new-class"
	}
	m.classes[class.ID] = class
	return nil
}

func (m *mockClassRepo) Update(ctx context.Context, class *models.Class) error {
	m.classes[class.ID] = class
	return nil
}

func (m *mockClassRepo) Delete(ctx context.Context, id string) (int64, error) {
	if _, ok := m.classes[id]; !ok {
		return 0, nil
	}
	delete(m.classes, id)
	return 1, nil
}

type mockRoster struct {
	byClass map[string][]models.Student
}

func (m *mockRoster) ListByClass(ctx context.Context, classID string) ([]models.Student, error) {
	return m.byClass[classID], nil
}

func newEnrollmentFixture() (*EnrollmentService, *mockEnrollmentRepo) {
	studentRepo := &mockStudentRepo{students: map[string]*models.Student{
		"s1": {ID: "s1", Name: "Ana Silva", OwnerID: "u1", Active: true},
		"s2": {ID: "s2", Name: "Bruno Costa", OwnerID: "u2", Active: true},
	}}
	classRepo := &mockClassRepo{classes: map[string]*models.Class{
		"c1": {ID: "c1", Name: "Turma A", OwnerID: "u1"},
	}}
	students := NewStudentService(studentRepo, &mockLogReader{}, nil, validator.New(), zap.NewNop())
	classes := NewClassService(classRepo, validator.New(), zap.NewNop())
	repo := &mockEnrollmentRepo{}
	svc := NewEnrollmentService(repo, students, classes, &mockRoster{}, zap.NewNop())
	return svc, repo
}

func TestEnrollCreatesLink(t *testing.T) {
	svc, repo := newEnrollmentFixture()

	enrollment, err := svc.Enroll(context.Background(), "u1", "c1", "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", enrollment.StudentID)
	assert.Equal(t, "c1", enrollment.ClassID)
	assert.Equal(t, 1, repo.created)
}

func TestEnrollIsIdempotent(t *testing.T) {
	svc, repo := newEnrollmentFixture()

	first, err := svc.Enroll(context.Background(), "u1", "c1", "s1")
	require.NoError(t, err)
	second, err := svc.Enroll(context.Background(), "u1", "c1", "s1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, repo.created)
}

func TestEnrollForeignStudentForbidden(t *testing.T) {
	svc, repo := newEnrollmentFixture()

	_, err := svc.Enroll(context.Background(), "u1", "c1", "s2")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Status, appErrors.FromError(err).Status)
	assert.Zero(t, repo.created)
}

func TestUnenrollMissingLinkIsNoOp(t *testing.T) {
	svc, repo := newEnrollmentFixture()

	require.NoError(t, svc.Unenroll(context.Background(), "u1", "c1", "s1"))
	assert.Empty(t, repo.links)
}

func TestUnenrollRemovesLink(t *testing.T) {
	svc, repo := newEnrollmentFixture()

	_, err := svc.Enroll(context.Background(), "u1", "c1", "s1")
	require.NoError(t, err)
	require.NoError(t, svc.Unenroll(context.Background(), "u1", "c1", "s1"))
	assert.Empty(t, repo.links)
}
