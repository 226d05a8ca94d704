package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Nutrient is an optional amount. An untracked nutrient is different from a
// nutrient tracked as zero: it renders as "not tracked" and encodes as null.
type Nutrient struct {
	value   float64
	tracked bool
}

// Track returns a tracked nutrient holding v.
func Track(v float64) Nutrient {
	return Nutrient{value: v, tracked: true}
}

// Untracked is the zero Nutrient.
var Untracked = Nutrient{}

func (n Nutrient) Get() (float64, bool) {
	return n.value, n.tracked
}

func (n Nutrient) Tracked() bool {
	return n.tracked
}

// Or returns the tracked value or def when untracked.
func (n Nutrient) Or(def float64) float64 {
	if !n.tracked {
		return def
	}
	return n.value
}

func (n Nutrient) String() string {
	if !n.tracked {
		return "-"
	}
	return strconv.FormatFloat(n.value, 'f', -1, 64)
}

func (n Nutrient) MarshalJSON() ([]byte, error) {
	if !n.tracked {
		return []byte("null"), nil
	}
	return json.Marshal(n.value)
}

func (n *Nutrient) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || len(data) == 0 {
		*n = Untracked
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		// some payloads carry decimals as strings
		var s string
		if serr := json.Unmarshal(data, &s); serr != nil {
			return fmt.Errorf("decode nutrient %s: %w", string(data), err)
		}
		parsed, perr := strconv.ParseFloat(s, 64)
		if perr != nil {
			return fmt.Errorf("decode nutrient %q: %w", s, perr)
		}
		v = parsed
	}
	*n = Track(v)
	return nil
}
