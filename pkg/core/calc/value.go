package calc

import (
	"encoding/json"
	"math"
)

// Value is a number that may be "not computable".
// An invalid Value marshals to JSON null so consumers render it as such.
type Value struct {
	V     float64
	Valid bool
}

// Valid wraps a computed number. Non-finite inputs are demoted to invalid.
func Valid(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}
	}
	return Value{V: v, Valid: true}
}

// Invalid is the explicit "not computable" sentinel.
func Invalid() Value {
	return Value{}
}

// Map applies fn when valid and keeps the sentinel otherwise.
func (v Value) Map(fn func(float64) float64) Value {
	if !v.Valid {
		return v
	}
	return Valid(fn(v.V))
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.V)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Valid(f)
	return nil
}
