package apperr

import (
	"context"
	"errors"
	"net"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MapDBError converts pgx and postgres errors into application errors.
// Errors that are already *Error pass through untouched.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return Wrap(KindNotFound, "not_found", err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Wrap(KindTransientIO, "service_unavailable", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return &Error{Kind: KindConflict, Code: "already_exists", Message: pgErr.ConstraintName, Cause: err}
		case pgerrcode.ForeignKeyViolation:
			return &Error{Kind: KindNotFound, Code: "reference_not_found", Message: pgErr.ConstraintName, Cause: err}
		case pgerrcode.CheckViolation, pgerrcode.NotNullViolation, pgerrcode.InvalidTextRepresentation,
			pgerrcode.NumericValueOutOfRange:
			return &Error{Kind: KindValidation, Code: "validation_failed", Message: pgErr.ConstraintName, Cause: err}
		}
		if pgerrcode.IsConnectionException(pgErr.Code) || pgerrcode.IsInsufficientResources(pgErr.Code) ||
			pgErr.Code == pgerrcode.AdminShutdown || pgErr.Code == pgerrcode.CannotConnectNow {
			return Wrap(KindTransientIO, "service_unavailable", err)
		}
		return Internal(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) || pgconn.SafeToRetry(err) {
		return Wrap(KindTransientIO, "service_unavailable", err)
	}
	return Internal(err)
}
