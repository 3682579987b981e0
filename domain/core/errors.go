package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Configuration errors are fatal and reported before any generation work.
	ErrConfiguration = errors.New("invalid report configuration")
	ErrUnknownColumn = fmt.Errorf("%w: unknown column", ErrConfiguration)
	ErrInvalidPctile = fmt.Errorf("%w: invalid percentile list", ErrConfiguration)

	// Estimation errors are scoped to one analysis block and one subgroup.
	ErrEstimation     = errors.New("estimation failed")
	ErrEmptySubset    = fmt.Errorf("%w: empty subset", ErrEstimation)
	ErrRankDeficient  = fmt.Errorf("%w: design matrix is rank deficient", ErrEstimation)
	ErrMissingColumn  = fmt.Errorf("%w: column absent from subset", ErrEstimation)
	ErrSingularCov    = fmt.Errorf("%w: singular covariance", ErrEstimation)
	ErrTooFewClusters = fmt.Errorf("%w: fewer than two clusters", ErrEstimation)

	// Heuristic outcomes, never fatal.
	ErrNoObservations = errors.New("no non-missing observations")
	ErrEmptySubgroup  = errors.New("subgroup has no rows")
)

// Error constructors with context
func NewUnknownColumnError(role, column string) error {
	return fmt.Errorf("%w %q referenced as %s", ErrUnknownColumn, column, role)
}

func NewPctileError(variable string, reason string) error {
	return fmt.Errorf("%w for %s: %s", ErrInvalidPctile, variable, reason)
}

func NewEstimationError(cause error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", cause, fmt.Sprintf(format, args...))
}

// Error checking helpers
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func IsEstimationError(err error) bool {
	return errors.Is(err, ErrEstimation)
}
