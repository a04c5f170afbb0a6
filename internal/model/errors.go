package model

import (
	"errors"
	"fmt"
)

var ErrNoRecord = errors.New("no record")
var ErrTooManyOccurrences = errors.New("recurring rule exceeds the occurrence limit")

// APIError carries the backend's error envelope through the client
// untouched. The coordinator never interprets the body, it only decides
// whether to report or rethrow.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend request failed with status %d", e.StatusCode)
}
