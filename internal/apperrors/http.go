package apperrors

import (
	"errors"
	"net/http"
)

// ToHTTPStatus maps an error code to the status the HTTP layer responds with.
func ToHTTPStatus(code string) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists:
		return http.StatusConflict
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeUpstreamError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// StatusOf resolves any error to an HTTP status, treating non-AppErrors as 500s.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return ToHTTPStatus(appErr.Code)
	}
	return http.StatusInternalServerError
}
