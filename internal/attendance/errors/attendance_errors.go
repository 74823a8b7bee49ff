package attendanceerrors

import (
	"net/http"

	"go-workdesk/internal/shared/apperror"
)

var (
	ErrAlreadyCheckedIn = apperror.New(
		apperror.CodeConflict,
		"already checked in for this date",
		http.StatusConflict,
	)
	ErrNotCheckedIn = apperror.New(
		apperror.CodeNotFound,
		"no check-in found for this date",
		http.StatusNotFound,
	)
	ErrAlreadyCheckedOut = apperror.New(
		apperror.CodeInvalidState,
		"already checked out for this date",
		http.StatusBadRequest,
	)
	ErrRecordNotFound = apperror.New(
		apperror.CodeNotFound,
		"attendance record not found",
		http.StatusNotFound,
	)
	ErrNotRegularizable = apperror.New(
		apperror.CodeInvalidState,
		"only late or absent records can be regularized",
		http.StatusBadRequest,
	)
	ErrRegularizationExists = apperror.New(
		apperror.CodeConflict,
		"regularization already requested",
		http.StatusConflict,
	)
	ErrRegularizationNotPending = apperror.New(
		apperror.CodeInvalidState,
		"regularization is not pending",
		http.StatusBadRequest,
	)
	ErrNotOwner = apperror.New(
		apperror.CodeForbidden,
		"only the employee may act on their own attendance",
		http.StatusForbidden,
	)
	ErrReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"reason is required for regularization",
		http.StatusBadRequest,
	)
)
