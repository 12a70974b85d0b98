package common

import (
	"errors"
	"net/http"
)

// 도메인 에러
var (
	ErrForbidden          = errors.New("forbidden")
	ErrProductNotFound    = errors.New("product not found")
	ErrListingNotFound    = errors.New("listing not found")
	ErrSessionClosed      = errors.New("chat session closed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrMissingFields      = errors.New("all fields are required")
)

var errorStatus = map[error]int{
	ErrForbidden:          http.StatusForbidden,
	ErrProductNotFound:    http.StatusNotFound,
	ErrListingNotFound:    http.StatusNotFound,
	ErrSessionClosed:      http.StatusConflict,
	ErrInvalidCredentials: http.StatusBadRequest,
	ErrUserAlreadyExists:  http.StatusBadRequest,
	ErrMissingFields:      http.StatusBadRequest,
}

// StatusOf maps a (possibly wrapped) domain error to its HTTP status, 500 for anything else
func StatusOf(err error) int {
	for target, status := range errorStatus {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
