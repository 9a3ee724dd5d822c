package grades

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"exampro/internal/model"
)

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		score float64
		want  model.GradeStatus
	}{
		{0, model.GradePending},
		{0.25, model.GradeNotAdmitted},
		{8, model.GradeNotAdmitted},
		{9.99, model.GradeNotAdmitted},
		{10, model.GradeAdmitted},
		{12, model.GradeAdmitted},
		{20, model.GradeAdmitted},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DeriveStatus(tc.score), "score %v", tc.score)
	}
}

func TestValidScore(t *testing.T) {
	assert.True(t, ValidScore(0))
	assert.True(t, ValidScore(20))
	assert.False(t, ValidScore(-0.5))
	assert.False(t, ValidScore(20.5))
}

func graded(moduleID int64, score float64) model.Grade {
	return model.Grade{ModuleID: moduleID, Score: score, Status: DeriveStatus(score)}
}

func TestAverageSkipsPending(t *testing.T) {
	list := []model.Grade{graded(1, 12), graded(2, 8), graded(3, 0)}

	avg, ok := Average(list)
	assert.True(t, ok)
	assert.InDelta(t, 10.0, avg, 1e-9)

	_, ok = Average([]model.Grade{graded(1, 0)})
	assert.False(t, ok)
}

func TestWeightedAverage(t *testing.T) {
	list := []model.Grade{graded(1, 16), graded(2, 10), graded(3, 0)}
	avg, ok := WeightedAverage(list, map[int64]float64{1: 3, 2: 1, 3: 5})
	assert.True(t, ok)
	assert.InDelta(t, 14.5, avg, 1e-9)

	avg, ok = WeightedAverage(list, nil)
	assert.True(t, ok)
	assert.InDelta(t, 13.0, avg, 1e-9)
}

func TestModuleAverageAndCount(t *testing.T) {
	list := []model.Grade{graded(1, 14), graded(1, 6), graded(2, 18), graded(1, 0)}

	avg, ok := ModuleAverage(list, 1)
	assert.True(t, ok)
	assert.InDelta(t, 10.0, avg, 1e-9)

	_, ok = ModuleAverage(list, 9)
	assert.False(t, ok)

	counts := Count(list)
	assert.Equal(t, 2, counts[model.GradeAdmitted])
	assert.Equal(t, 1, counts[model.GradeNotAdmitted])
	assert.Equal(t, 1, counts[model.GradePending])
}
