package session

import "errors"

var (
	ErrEmptyName          = errors.New("display name is required")
	ErrRegistrationFailed = errors.New("registration failed")
	ErrSessionNotFound    = errors.New("session not found")
	ErrInvalidState       = errors.New("operation not allowed in current state")
	ErrInvalidSelector    = errors.New("level, week and day must all be selected")
	ErrNoQuestions        = errors.New("no questions available for the selected week and day")
	ErrInvalidQuestion    = errors.New("question number out of range")
)
