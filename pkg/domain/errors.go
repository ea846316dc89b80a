package domain

import "errors"

// ErrRunNotFound is returned when a run ID cannot be found in the store.
var ErrRunNotFound = errors.New("run not found")

// ErrJourneyNotFound is returned when a journey ID cannot be resolved by a loader.
var ErrJourneyNotFound = errors.New("journey not found")

// ErrRunClosed is returned when an event is handed to a run that has
// already terminated and released its mailbox.
var ErrRunClosed = errors.New("run closed")
