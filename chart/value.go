package chart

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// ValueKind tags which payload a Value carries.
type ValueKind int

const (
	// ValueNone marks a missing or non-numeric value.
	ValueNone ValueKind = iota
	// ValueScalar is a single number, used by simple charts.
	ValueScalar
	// ValueStacked is an ordered sequence of segment values.
	ValueStacked
)

func (k ValueKind) String() string {
	switch k {
	case ValueScalar:
		return "scalar"
	case ValueStacked:
		return "stacked"
	default:
		return "none"
	}
}

// Value is the numeric payload of a bar: either a scalar or a stacked
// sequence. Stacked entries that were not numbers in the source document
// are kept in place as NaN so segment indexes stay aligned with
// SegmentColors.
type Value struct {
	kind    ValueKind
	scalar  float64
	entries []float64
}

// Scalar returns a scalar Value.
func Scalar(v float64) Value {
	return Value{kind: ValueScalar, scalar: v}
}

// Stacked returns a stacked Value holding a copy of vs.
func Stacked(vs ...float64) Value {
	entries := make([]float64, len(vs))
	copy(entries, vs)
	return Value{kind: ValueStacked, entries: entries}
}

// Kind reports which variant v holds.
func (v Value) Kind() ValueKind {
	return v.kind
}

// Float returns the number a simple chart plots for v. A stacked value
// collapses to the sum of its numeric entries.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case ValueScalar:
		return v.scalar, true
	case ValueStacked:
		return v.Sum(), true
	default:
		return 0, false
	}
}

// Entries returns the segment sequence of v. A scalar is coerced to a
// one-element sequence; non-numeric entries are NaN.
func (v Value) Entries() []float64 {
	switch v.kind {
	case ValueScalar:
		return []float64{v.scalar}
	case ValueStacked:
		out := make([]float64, len(v.entries))
		copy(out, v.entries)
		return out
	default:
		return nil
	}
}

// Sum adds the numeric entries of v.
func (v Value) Sum() float64 {
	switch v.kind {
	case ValueScalar:
		return v.scalar
	case ValueStacked:
		var total float64
		for _, e := range v.entries {
			if !math.IsNaN(e) {
				total += e
			}
		}
		return total
	default:
		return 0
	}
}

// HasNumericEntry reports whether at least one segment is a number.
func (v Value) HasNumericEntry() bool {
	switch v.kind {
	case ValueScalar:
		return true
	case ValueStacked:
		for _, e := range v.entries {
			if !math.IsNaN(e) {
				return true
			}
		}
	}
	return false
}

// UnmarshalJSON accepts a number, an array of numbers, or anything else
// (which yields ValueNone).
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*v = Value{}
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
		entries := make([]float64, len(raw))
		for i, r := range raw {
			entries[i] = parseNumber(r)
		}
		*v = Value{kind: ValueStacked, entries: entries}
	case 'n', '"', '{', 't', 'f':
		// null, strings, objects and booleans are not numbers.
	default:
		if f := parseNumber(data); !math.IsNaN(f) {
			*v = Scalar(f)
		}
	}
	return nil
}

// MarshalJSON writes the variant back in the shape it was read.
// Non-numeric stacked entries are written as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ValueScalar:
		return []byte(formatNumber(v.scalar)), nil
	case ValueStacked:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, e := range v.entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			if math.IsNaN(e) {
				buf.WriteString("null")
			} else {
				buf.WriteString(formatNumber(e))
			}
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	default:
		return []byte("null"), nil
	}
}

// IsZero lets encoders omit a missing value.
func (v Value) IsZero() bool {
	return v.kind == ValueNone
}

func parseNumber(raw []byte) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '"' || raw[0] == 'n' || raw[0] == 't' || raw[0] == 'f' {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil || math.IsInf(f, 0) {
		return math.NaN()
	}
	return f
}

func formatNumber(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "null"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
