package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoProblem is returned when the catalog query matches nothing.
var ErrNoProblem = errors.New("no matching problem found in catalog")

// IncompleteProblemError is returned when a catalog record is missing
// required fields. Partial records are rejected, never patched up.
type IncompleteProblemError struct {
	Missing []string
}

func (e *IncompleteProblemError) Error() string {
	return fmt.Sprintf("malformed catalog record, missing fields: %s", strings.Join(e.Missing, ", "))
}
