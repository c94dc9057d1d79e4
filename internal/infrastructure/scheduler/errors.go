package scheduler

import "errors"

var (
	// ErrImportInProgress is returned when a run is requested while one is active
	ErrImportInProgress = errors.New("order import already in progress")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
