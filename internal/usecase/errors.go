package usecase

import "github.com/cockroachdb/errors"

// Sentinels every service error is marked with. Domain errors keep their own
// identity and gain one of these via errors.Mark.
var (
	// ErrInvalidInput covers missing fields, bad names and unknown leaderboard categories.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound covers unknown players and matches.
	ErrNotFound = errors.New("resource not found")
	// ErrConflict covers a player reported against themselves.
	ErrConflict              = errors.New("conflict")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
