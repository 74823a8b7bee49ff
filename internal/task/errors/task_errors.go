package taskerrors

import (
	"net/http"

	"go-workdesk/internal/shared/apperror"
)

var (
	ErrTaskNotFound = apperror.New(
		apperror.CodeNotFound,
		"task not found",
		http.StatusNotFound,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid task status transition",
		http.StatusBadRequest,
	)
	ErrTaskDeleted = apperror.New(
		apperror.CodeInvalidState,
		"task is soft-deleted; restore it first",
		http.StatusBadRequest,
	)
	ErrTaskNotDeleted = apperror.New(
		apperror.CodeInvalidState,
		"task is not soft-deleted",
		http.StatusBadRequest,
	)
	ErrContentRequired = apperror.New(
		apperror.CodeInvalidInput,
		"follow-up content is required",
		http.StatusBadRequest,
	)
)
