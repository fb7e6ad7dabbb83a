// Copyright (C) 2024 Movielab.
// See LICENSE for copying information.

package searchapi

// ErrorResponse is a struct for error responses that also implements the
// error interface.
type ErrorResponse struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

var (
	// ErrNotFound is returned when the requested movie is not found.
	ErrNotFound = &ErrorResponse{StatusCode: 404, Message: "not found"}

	// ErrInvalidQuery is returned when a query parameter fails validation.
	ErrInvalidQuery = &ErrorResponse{StatusCode: 422, Message: "invalid query parameters"}

	// ErrInternalError is returned when the search backend fails.
	ErrInternalError = &ErrorResponse{StatusCode: 500, Message: "internal error"}
)
