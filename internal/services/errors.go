package services

import "errors"

var (
	// ErrDuplicateSubscriber is returned when an email is already subscribed to the newsletter
	ErrDuplicateSubscriber = errors.New("email already subscribed")
	// ErrReferenceUnavailable is returned when no unused reference number could be generated
	ErrReferenceUnavailable = errors.New("no unused reference number available")
)

// ValidationError reports user input that was rejected, with a message per field
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}
