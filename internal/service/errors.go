package service

import (
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/debtbook/internal/auth"
	"github.com/mmynk/debtbook/internal/models"
)

// errInternal is the only thing callers learn about unexpected failures.
var errInternal = errors.New("internal error")

// toConnectError maps domain errors to connect codes. Business rejections
// keep their message; anything unexpected is logged and made opaque.
func toConnectError(logger *slog.Logger, procedure string, err error) error {
	var ce *connect.Error
	if errors.As(err, &ce) {
		return ce
	}

	switch {
	case errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrMissingUsername):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, models.ErrNotFound):
		// Missing and not-yours look the same.
		return connect.NewError(connect.CodeNotFound, models.ErrNotFound)
	case errors.Is(err, models.ErrDuplicateName),
		errors.Is(err, auth.ErrUsernameTaken):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, models.ErrNoOpenDebts),
		errors.Is(err, models.ErrOutstandingBalance),
		errors.Is(err, models.ErrHasPayments):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return connect.NewError(connect.CodeUnauthenticated, err)
	}

	logger.Error("internal error", "procedure", procedure, "error", err)
	return connect.NewError(connect.CodeInternal, errInternal)
}
