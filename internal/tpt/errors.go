package tpt

import (
	"errors"
	"fmt"
	"strings"
)

// The calculator surfaces every failure as one of these categories. The
// HTTP layer renders them as {"error": message}; nothing here should ever
// escape as a panic.
var (
	// ErrUnsupportedFileType is returned when the file type is neither
	// "csv" nor "excel".
	ErrUnsupportedFileType = errors.New("unsupported file type provided, please upload .csv or .xlsx")

	// ErrFileNotFound is returned when the input path does not resolve.
	ErrFileNotFound = errors.New("uploaded file not found")

	// ErrEmptyAfterCleaning is returned when zero rows survive numeric
	// coercion. The message deliberately tells the user what to fix.
	ErrEmptyAfterCleaning = errors.New("No valid data found after cleaning. Make sure columns have numbers and there are rows")
)

// MissingColumnsError reports which required canonical columns could not
// be resolved, along with every column that was available, so the user
// can build a manual column map.
type MissingColumnsError struct {
	Missing   []CanonicalField
	Available []string
}

func (e *MissingColumnsError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return fmt.Sprintf("missing required columns after normalization: [%s]; available: [%s]",
		strings.Join(names, ", "), strings.Join(e.Available, ", "))
}

// UnexpectedError wraps any failure that does not fit the taxonomy above.
type UnexpectedError struct {
	Cause error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("unexpected error in TPT calculation: %v", e.Cause)
}

func (e *UnexpectedError) Unwrap() error { return e.Cause }
