package grades

import (
	"exampro/internal/model"
)

const (
	MinScore     = 0.0
	MaxScore     = 20.0
	PassingScore = 10.0
)

// DeriveStatus maps a score to its status. A score of exactly zero is read as
// "not graded yet" rather than a failing mark.
func DeriveStatus(score float64) model.GradeStatus {
	switch {
	case score == 0:
		return model.GradePending
	case score >= PassingScore:
		return model.GradeAdmitted
	default:
		return model.GradeNotAdmitted
	}
}

func ValidScore(score float64) bool {
	return score >= MinScore && score <= MaxScore
}

// Average is the mean score over graded entries. Pending grades are skipped;
// ok is false when nothing has been graded.
func Average(list []model.Grade) (float64, bool) {
	var sum float64
	var count int
	for _, grade := range list {
		if grade.Status == model.GradePending {
			continue
		}
		sum += grade.Score
		count++
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// WeightedAverage weighs graded entries by their module coefficient.
// Modules missing from coefficients count with weight 1.
func WeightedAverage(list []model.Grade, coefficients map[int64]float64) (float64, bool) {
	var sum, weights float64
	for _, grade := range list {
		if grade.Status == model.GradePending {
			continue
		}
		weight, ok := coefficients[grade.ModuleID]
		if !ok || weight <= 0 {
			weight = 1
		}
		sum += grade.Score * weight
		weights += weight
	}
	if weights == 0 {
		return 0, false
	}
	return sum / weights, true
}

// ModuleAverage averages the graded entries of one module.
func ModuleAverage(list []model.Grade, moduleID int64) (float64, bool) {
	filtered := make([]model.Grade, 0, len(list))
	for _, grade := range list {
		if grade.ModuleID == moduleID {
			filtered = append(filtered, grade)
		}
	}
	return Average(filtered)
}

// Count returns how many entries carry each status.
func Count(list []model.Grade) map[model.GradeStatus]int {
	counts := map[model.GradeStatus]int{
		model.GradeAdmitted:    0,
		model.GradeNotAdmitted: 0,
		model.GradePending:     0,
	}
	for _, grade := range list {
		counts[grade.Status]++
	}
	return counts
}
