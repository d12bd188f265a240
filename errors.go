package ekidata2sql

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInput is wrapped by every error about the input files: missing categories, unreadable
// or unparsable CSV, unknown columns and values that do not fit the column type. These are
// all reported before the destination store is touched.
var ErrInput = errors.New("invalid input")

// ErrConstraint is wrapped when the destination store rejects an insert, for example a
// duplicate primary key or a null in a NOT NULL column.
var ErrConstraint = errors.New("constraint violation")

// MissingInputsError lists every category for which no input file was found.
type MissingInputsError struct {
	Dir        string
	Categories []string
	Found      Inputs
}

func (e *MissingInputsError) Error() string {
	return fmt.Sprintf("missing input files in %s: %s", e.Dir, strings.Join(e.Categories, ", "))
}

func (e *MissingInputsError) Unwrap() error {
	return ErrInput
}

func inputErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInput, fmt.Sprintf(format, args...))
}
