package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapDBError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"no rows", pgx.ErrNoRows, KindNotFound},
		{"wrapped no rows", fmt.Errorf("get user: %w", pgx.ErrNoRows), KindNotFound},
		{"unique", &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"}, KindConflict},
		{"foreign key", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, KindNotFound},
		{"check", &pgconn.PgError{Code: pgerrcode.CheckViolation, ConstraintName: "grades_status_matches_score"}, KindValidation},
		{"not null", &pgconn.PgError{Code: pgerrcode.NotNullViolation}, KindValidation},
		{"connection", &pgconn.PgError{Code: pgerrcode.ConnectionFailure}, KindTransientIO},
		{"deadline", context.DeadlineExceeded, KindTransientIO},
		{"syntax", &pgconn.PgError{Code: pgerrcode.SyntaxError}, KindInternal},
		{"plain", errors.New("boom"), KindInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mapped := MapDBError(tc.err)
			require.Error(t, mapped)
			assert.Equal(t, tc.want, KindOf(mapped))
			assert.ErrorIs(t, mapped, tc.err)
		})
	}
}

func TestMapDBErrorPassesThrough(t *testing.T) {
	assert.NoError(t, MapDBError(nil))

	original := Conflict("email_taken")
	assert.Same(t, original, MapDBError(original))
}

func TestValidationField(t *testing.T) {
	err := ValidationField("score", "must be between 0 and 20")
	assert.True(t, Is(err, KindValidation))
	assert.Equal(t, "must be between 0 and 20", err.Fields["score"])
	assert.Equal(t, KindInternal, KindOf(errors.New("x")))
}
