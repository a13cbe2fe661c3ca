package services

import "errors"

var (
	// ErrInvalidExperiment rejects malformed configurations at creation time
	ErrInvalidExperiment = errors.New("invalid experiment configuration")

	// ErrUnassignedParticipant is returned when an interaction is recorded
	// for a participant that was never assigned a variant
	ErrUnassignedParticipant = errors.New("participant has no variant assignment")

	// ErrExperimentClosed is returned when an interaction arrives after the
	// experiment completed. Completed experiments are immutable evidence.
	ErrExperimentClosed = errors.New("experiment already completed")
)
