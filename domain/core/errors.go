package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// ErrDataFormat means the input could not be parsed as tabular data.
	ErrDataFormat = errors.New("data format error")
	// ErrInvalidTask means the training task keyword is not recognized.
	ErrInvalidTask = errors.New("invalid task type")
	// ErrModelNotFound means no artifact exists for the requested model id.
	ErrModelNotFound = errors.New("model not found")
	// ErrSchemaMismatch means inference input columns are incompatible with
	// the schema the model was trained on.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrNotFitted means a transform or estimator was used before fitting.
	ErrNotFitted = errors.New("not fitted")
	// ErrEmptyDataset means the dataset contains no usable rows.
	ErrEmptyDataset = errors.New("empty dataset")
)

// Error constructors with context
func NewDataFormatError(cause error) error {
	return fmt.Errorf("%w: %v", ErrDataFormat, cause)
}

func NewInvalidTaskError(task string) error {
	return fmt.Errorf("%w: %q (choose \"classification\" or \"regression\")", ErrInvalidTask, task)
}

func NewModelNotFoundError(modelID string) error {
	return fmt.Errorf("%w: %s", ErrModelNotFound, modelID)
}

func NewSchemaMismatchError(detail string) error {
	return fmt.Errorf("%w: %s", ErrSchemaMismatch, detail)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrModelNotFound)
}

// IsClientError reports whether the error is a caller mistake rather than an
// internal failure. Used by the API layer to pick a status code.
func IsClientError(err error) bool {
	return errors.Is(err, ErrDataFormat) ||
		errors.Is(err, ErrInvalidTask) ||
		errors.Is(err, ErrSchemaMismatch) ||
		errors.Is(err, ErrEmptyDataset)
}
