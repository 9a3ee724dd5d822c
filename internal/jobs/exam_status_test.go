package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exampro/internal/config"
	"exampro/internal/logging"
	"exampro/internal/model"
	"exampro/internal/repository"
)

type countingRecorder struct {
	mu     sync.Mutex
	closed int64
}

func (r *countingRecorder) ExamsClosed(n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed += n
}

func (r *countingRecorder) total() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

type failingCloser struct{}

func (failingCloser) MarkPastExamsFinished(context.Context, time.Time) (int64, error) {
	return 0, errors.New("db down")
}

func seedExams(t *testing.T, store *repository.Memory, dates ...string) {
	t.Helper()
	ctx := context.Background()
	filiere, err := store.CreateFiliere(ctx, model.Filiere{Name: "Informatique", Code: "INFO", Duration: 3})
	require.NoError(t, err)
	module, err := store.CreateModule(ctx, model.Module{Name: "Algo", Code: "ALGO", FiliereID: filiere.ID, Coefficient: 1, Semester: 1})
	require.NoError(t, err)
	for _, d := range dates {
		date, err := time.Parse("2006-01-02", d)
		require.NoError(t, err)
		_, err = store.CreateExam(ctx, model.Exam{ModuleID: module.ID, ExamDate: date, ExamTime: "09:00", Room: "A1", DurationMinutes: 120})
		require.NoError(t, err)
	}
}

func TestRunOnceClosesPastExams(t *testing.T) {
	store := repository.NewMemory()
	seedExams(t, store, "2026-01-10", "2026-01-19", "2026-01-20", "2026-02-01")
	recorder := &countingRecorder{}
	now := time.Date(2026, 1, 20, 15, 30, 0, 0, time.UTC)
	job := NewExamStatusJob(store, recorder, logging.Discard()).WithClock(func() time.Time { return now })

	closed, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), closed)
	assert.Equal(t, int64(2), recorder.total())

	exams, err := store.ListExams(context.Background())
	require.NoError(t, err)
	statuses := map[string]model.ExamStatus{}
	for _, exam := range exams {
		statuses[exam.ExamDate.Format("2006-01-02")] = exam.Status
	}
	assert.Equal(t, model.ExamFinished, statuses["2026-01-10"])
	assert.Equal(t, model.ExamFinished, statuses["2026-01-19"])
	assert.Equal(t, model.ExamUpcoming, statuses["2026-01-20"])
	assert.Equal(t, model.ExamUpcoming, statuses["2026-02-01"])

	closed, err = job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, closed)
	assert.Equal(t, int64(2), recorder.total())
}

func TestRunOnceError(t *testing.T) {
	recorder := &countingRecorder{}
	job := NewExamStatusJob(failingCloser{}, recorder, logging.Discard())
	_, err := job.RunOnce(context.Background())
	assert.Error(t, err)
	assert.Zero(t, recorder.total())
}

func TestStartExamStatusJobTicks(t *testing.T) {
	store := repository.NewMemory()
	seedExams(t, store, "2020-05-01")
	recorder := &countingRecorder{}
	job := NewExamStatusJob(store, recorder, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartExamStatusJob(ctx, config.Config{ExamStatusJobEnabled: true, ExamStatusJobInterval: 10 * time.Millisecond}, job)

	assert.Eventually(t, func() bool { return recorder.total() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestStartExamStatusJobDisabled(t *testing.T) {
	store := repository.NewMemory()
	seedExams(t, store, "2020-05-01")
	recorder := &countingRecorder{}
	job := NewExamStatusJob(store, recorder, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartExamStatusJob(ctx, config.Config{ExamStatusJobInterval: 10 * time.Millisecond}, job)

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, recorder.total())
}

func TestStartOfDay(t *testing.T) {
	paris := time.FixedZone("CET", 3600)
	got := startOfDay(time.Date(2026, 3, 2, 0, 30, 0, 0, paris))
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), got)
}
