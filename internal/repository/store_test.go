package repository

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exampro/internal/apperr"
	"exampro/internal/db"
	"exampro/internal/model"
)

func openTestDB(t *testing.T) *pgxpool.Pool {
	url := os.Getenv("EXAMPRO_TEST_DB")
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		t.Skip("EXAMPRO_TEST_DB or DATABASE_URL not set")
		return nil
	}
	pool, err := db.NewPool(context.Background(), url)
	if err != nil {
		t.Skipf("db unavailable: %v", err)
		return nil
	}
	if err := db.ApplySchema(context.Background(), pool); err != nil {
		pool.Close()
		t.Fatalf("schema error: %v", err)
	}
	return pool
}

func TestStoreGradeUpsert(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}
	defer pool.Close()

	store := NewStore(pool)
	ctx := context.Background()
	suffix := uuid.NewString()[:8]

	filiere, err := store.CreateFiliere(ctx, model.Filiere{Name: "Test " + suffix, Code: "T" + suffix, Duration: 2})
	require.NoError(t, err)
	module, err := store.CreateModule(ctx, model.Module{Name: "Mod " + suffix, Code: "M" + suffix, FiliereID: filiere.ID, Coefficient: 1, Semester: 1})
	require.NoError(t, err)
	student, err := store.CreateStudent(ctx, NewStudent{Name: "Student " + suffix, Email: suffix + "@etudiant.com", PasswordHash: "h", FiliereID: filiere.ID})
	require.NoError(t, err)
	assert.Equal(t, StudentNumber(student.EnrollmentDate.Year(), student.UserID), student.StudentNumber)
	defer func() { _ = store.DeleteUser(ctx, student.UserID) }()

	first, err := store.UpsertGrade(ctx, student.ID, module.ID, 12, model.GradeAdmitted)
	require.NoError(t, err)
	second, err := store.UpsertGrade(ctx, student.ID, module.ID, 8, model.GradeNotAdmitted)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	grades, err := store.ListGradesForStudent(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.Equal(t, 8.0, grades[0].Score)
	assert.Equal(t, model.GradeNotAdmitted, grades[0].Status)

	_, err = store.UpsertGrade(ctx, student.ID, module.ID, 15, model.GradeNotAdmitted)
	assert.True(t, apperr.Is(err, apperr.KindValidation), "status must match score")

	_, err = store.UpsertGrade(ctx, student.ID, module.ID+100000, 15, model.GradeAdmitted)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = store.CreateUser(ctx, model.User{Email: suffix + "@etudiant.com", PasswordHash: "h", Role: model.RoleStudent, Name: "Dup"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestStoreTeacherCreatedWithUser(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}
	defer pool.Close()

	store := NewStore(pool)
	ctx := context.Background()
	email := uuid.NewString()[:8] + "@prof.com"

	user, err := store.CreateUser(ctx, model.User{Email: email, PasswordHash: "h", Role: model.RoleTeacher, Name: "Prof"})
	require.NoError(t, err)
	defer func() { _ = store.DeleteUser(ctx, user.ID) }()

	teachers, err := store.ListTeachers(ctx)
	require.NoError(t, err)
	found := false
	for _, teacher := range teachers {
		if teacher.UserID == user.ID {
			found = true
		}
	}
	assert.True(t, found)
}
