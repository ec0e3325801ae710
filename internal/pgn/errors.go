package pgn

import "fmt"

// MissingRequiredFieldError is returned when a record lacks one of the
// seven required tag values. Absent is a formatting error; an explicitly
// empty string is not.
type MissingRequiredFieldError struct {
	Tag string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("pgn: missing required field %s", e.Tag)
}
