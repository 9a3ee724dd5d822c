package grades

import (
	"context"
	"errors"

	"exampro/internal/apperr"
	"exampro/internal/auth"
	"exampro/internal/model"
)

// Store is the persistence the ledger needs. UpsertGrade must be a single
// atomic insert-or-update keyed on (student, module).
type Store interface {
	UpsertGrade(ctx context.Context, studentID, moduleID int64, score float64, status model.GradeStatus) (model.Grade, error)
	ListGrades(ctx context.Context) ([]model.Grade, error)
	ListGradesForUser(ctx context.Context, userID int64) ([]model.Grade, error)
}

// Recorder observes successful writes.
type Recorder interface {
	GradeUpserted(status model.GradeStatus)
}

type Ledger struct {
	store    Store
	recorder Recorder
}

func NewLedger(store Store, recorder Recorder) *Ledger {
	return &Ledger{store: store, recorder: recorder}
}

// Upsert records a score for a student in a module, replacing any earlier one.
func (l *Ledger) Upsert(ctx context.Context, caller *auth.Claims, studentID, moduleID int64, score float64) (model.Grade, error) {
	if err := authorize(caller, auth.Graders); err != nil {
		return model.Grade{}, err
	}
	if studentID <= 0 {
		return model.Grade{}, apperr.ValidationField("studentId", "must be a positive id")
	}
	if moduleID <= 0 {
		return model.Grade{}, apperr.ValidationField("moduleId", "must be a positive id")
	}
	if !ValidScore(score) {
		return model.Grade{}, apperr.ValidationField("score", "must be between 0 and 20")
	}

	status := DeriveStatus(score)
	grade, err := l.store.UpsertGrade(ctx, studentID, moduleID, score, status)
	if err != nil {
		return model.Grade{}, apperr.MapDBError(err)
	}
	if l.recorder != nil {
		l.recorder.GradeUpserted(status)
	}
	return grade, nil
}

// List returns every grade, or only the caller's own when the caller is a student.
func (l *Ledger) List(ctx context.Context, caller *auth.Claims) ([]model.Grade, error) {
	if err := authorize(caller, auth.Everyone); err != nil {
		return nil, err
	}
	var (
		list []model.Grade
		err  error
	)
	if auth.IsStudent(caller) {
		list, err = l.store.ListGradesForUser(ctx, caller.UserID)
	} else {
		list, err = l.store.ListGrades(ctx)
	}
	if err != nil {
		return nil, apperr.MapDBError(err)
	}
	return list, nil
}

func authorize(caller *auth.Claims, allowed auth.RoleSet) error {
	err := auth.Authorize(caller, allowed)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, auth.ErrForbidden):
		return apperr.Wrap(apperr.KindAuthorization, err.Error(), err)
	default:
		return apperr.Wrap(apperr.KindAuthentication, err.Error(), err)
	}
}
