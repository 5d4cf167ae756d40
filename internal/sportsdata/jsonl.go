package sportsdata

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SerializationError reports the first record that could not be encoded.
type SerializationError struct {
	Index int
	Err   error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialize record %d: %v", e.Index, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// ToLineDelimited encodes each record as one JSON line, preserving input
// order. If any record fails to encode, the whole batch yields an empty
// string; there is no partial output.
func ToLineDelimited(records []Record) (string, error) {
	var b strings.Builder
	for i, rec := range records {
		line, err := json.Marshal(rec)
		if err != nil {
			return "", &SerializationError{Index: i, Err: err}
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.Write(line)
	}
	return b.String(), nil
}
