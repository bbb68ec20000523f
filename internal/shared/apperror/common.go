package apperror

import "net/http"

var (
	ErrNotFound = New(
		CodeNotFound,
		"Resource not found",
		http.StatusNotFound,
	)

	ErrInternal = New(
		CodeInternalError,
		"An unexpected error occurred",
		http.StatusInternalServerError,
	)

	ErrInvalidInput = New(
		CodeInvalidInput,
		"The provided input is invalid",
		http.StatusBadRequest,
	)

	ErrSyncInProgress = New(
		CodeConflict,
		"A sync is already in progress",
		http.StatusConflict,
	)

	ErrDeviceUnreachable = New(
		CodeDeviceUnreachable,
		"Attendance terminal is unreachable",
		http.StatusBadGateway,
	)

	ErrStoreUnavailable = New(
		CodeStoreUnavailable,
		"Attendance store is unavailable",
		http.StatusServiceUnavailable,
	)
)
