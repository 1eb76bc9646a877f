package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is an entity identifier as the backend serializes it. The API is not
// consistent about numeric vs string identifiers, so an ID accepts either
// form on the wire and normalizes to a string.
type ID string

// UnmarshalJSON accepts both `"5"` and `5`.
func (id *ID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty id value")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id is neither string nor number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON always emits the string form.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

// String returns the identifier as a plain string.
func (id ID) String() string { return string(id) }

// Int returns the numeric value of the identifier, or 0 if it is not numeric.
func (id ID) Int() int64 {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
