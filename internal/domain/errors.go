package domain

import "fmt"

// RecordSchemaError marks a dataset row that does not match the expected
// schema: a required field is missing or a value has the wrong type.
type RecordSchemaError struct {
	Shard  string
	Row    int
	Field  string
	Reason string
}

func (e *RecordSchemaError) Error() string {
	return fmt.Sprintf("record schema: shard=%s row=%d field=%s: %s", e.Shard, e.Row, e.Field, e.Reason)
}
