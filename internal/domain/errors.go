package domain

import "errors"

var (
	// ErrNoQuestions is returned when no question matches a topic filter.
	ErrNoQuestions = errors.New("no questions for this topic")
	// ErrNoAttempts is returned when a user has not answered anything yet.
	ErrNoAttempts = errors.New("no attempts recorded")
	// ErrInvalidSelection indicates an out-of-range or malformed topic selector.
	ErrInvalidSelection = errors.New("invalid topic selection")
	// ErrNoActiveSession indicates a submission arrived with no question outstanding.
	ErrNoActiveSession = errors.New("no active session")
	// ErrUnauthorized indicates a non-administrator invoking admin operations.
	ErrUnauthorized = errors.New("not an administrator")
)
