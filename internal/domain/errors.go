package domain

import "errors"

var (
	// ErrInvalidMode is returned when a record names an unknown play mode.
	ErrInvalidMode = errors.New("invalid mode")
	// ErrInvalidDifficulty is returned when a record names an unknown difficulty tier.
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	// ErrInvalidScore indicates a score that is negative or not allowed for the mode.
	ErrInvalidScore = errors.New("invalid score")
	// ErrInvalidLimit indicates a history bound that could not be parsed.
	ErrInvalidLimit = errors.New("invalid limit")
	// ErrRecordNotSaved wraps persistence failures while storing a finished game.
	ErrRecordNotSaved = errors.New("could not save game")
	// ErrHistoryUnavailable wraps persistence failures while reading history.
	ErrHistoryUnavailable = errors.New("history unavailable")
)

// ValidationError names the offending field of a rejected record.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}
