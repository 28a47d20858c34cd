package api

import "errors"

var (
	// ErrRunnerRequired is returned when no pipeline runner is provided.
	ErrRunnerRequired = errors.New("analysis runner is required")

	// ErrBriefingRepositoryRequired is returned when no briefing repository is provided.
	ErrBriefingRepositoryRequired = errors.New("briefing repository is required")
)
