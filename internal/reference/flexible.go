package reference

import (
	"fmt"
	"strconv"

	"github.com/segmentio/encoding/json"
)

// FlexibleString can unmarshal from either string or number JSON values.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	// Handle null
	if string(data) == "null" {
		*f = ""
		return nil
	}

	// Try string first
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleString(s)
		return nil
	}

	// Try number
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleString(n.String())
		return nil
	}

	// Try int directly
	var i int
	if err := json.Unmarshal(data, &i); err == nil {
		*f = FlexibleString(strconv.Itoa(i))
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into FlexibleString", string(data))
}

func (f FlexibleString) String() string {
	return string(f)
}

// AbstractText holds the abstract sections of an article. Records store it
// as a missing field, an empty string, a single string or a list of strings;
// missing and empty values decode to nil.
type AbstractText []string

func (a *AbstractText) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*a = nil
		} else {
			*a = AbstractText{s}
		}
		return nil
	}

	var sections []string
	if err := json.Unmarshal(data, &sections); err != nil {
		return fmt.Errorf("cannot unmarshal %s into AbstractText", string(data))
	}
	if len(sections) == 0 {
		*a = nil
		return nil
	}
	*a = sections
	return nil
}
