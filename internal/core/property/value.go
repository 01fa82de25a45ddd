package property

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind identifies the concrete type behind a Value.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindNull
	KindRaw
)

// String returns the string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	case KindRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// Value is a scalar property value. The set of implementations is closed:
// String, Number, Bool, Null and Raw.
type Value interface {
	Kind() Kind
	String() string
	propertyValue()
}

// String is a text value.
type String string

// Number is a numeric value. Literal keeps the source spelling when there
// is one, so "8080" and "1e3" render the way they were written.
type Number struct {
	Float   float64
	Literal string
}

// Bool is a boolean value.
type Bool bool

// Null is an explicit null.
type Null struct{}

// Raw carries a value the loaders could not map onto the other kinds
// (timestamps, binary blobs). Type names the origin type, Text its
// rendering.
type Raw struct {
	Type string
	Text string
}

func (String) propertyValue() {}
func (Number) propertyValue() {}
func (Bool) propertyValue()   {}
func (Null) propertyValue()   {}
func (Raw) propertyValue()    {}

func (String) Kind() Kind { return KindString }
func (Number) Kind() Kind { return KindNumber }
func (Bool) Kind() Kind   { return KindBool }
func (Null) Kind() Kind   { return KindNull }
func (Raw) Kind() Kind    { return KindRaw }

func (s String) String() string { return string(s) }

func (n Number) String() string {
	if n.Literal != "" {
		return n.Literal
	}
	return strconv.FormatFloat(n.Float, 'f', -1, 64)
}

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

func (Null) String() string { return "null" }

func (r Raw) String() string { return r.Text }

// Int returns a Number holding i.
func Int(i int64) Number {
	return Number{Float: float64(i), Literal: strconv.FormatInt(i, 10)}
}

// Float returns a Number holding f.
func Float(f float64) Number {
	return Number{Float: f}
}

// ParseNumber parses a numeric literal, keeping its spelling.
func ParseNumber(literal string) (Number, error) {
	f, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return Number{}, fmt.Errorf("parse number %q: %w", literal, err)
	}
	return Number{Float: f, Literal: literal}, nil
}

// IsInteger reports whether n has no fractional part.
func (n Number) IsInteger() bool {
	return !math.IsInf(n.Float, 0) && n.Float == math.Trunc(n.Float)
}

// ValueOf maps a decoded Go value onto the closed Value set. Containers
// are not scalars and map to Raw; callers flatten them first.
func ValueOf(x any) Value {
	switch v := x.(type) {
	case nil:
		return Null{}
	case Value:
		return v
	case string:
		return String(v)
	case bool:
		return Bool(v)
	case int:
		return Int(int64(v))
	case int8:
		return Int(int64(v))
	case int16:
		return Int(int64(v))
	case int32:
		return Int(int64(v))
	case int64:
		return Int(v)
	case uint:
		return Number{Float: float64(v), Literal: strconv.FormatUint(uint64(v), 10)}
	case uint8:
		return Int(int64(v))
	case uint16:
		return Int(int64(v))
	case uint32:
		return Int(int64(v))
	case uint64:
		return Number{Float: float64(v), Literal: strconv.FormatUint(v, 10)}
	case float32:
		return Float(float64(v))
	case float64:
		return Float(v)
	case json.Number:
		if n, err := ParseNumber(string(v)); err == nil {
			return n
		}
		return String(string(v))
	case time.Time:
		return Raw{Type: "timestamp", Text: v.Format(time.RFC3339Nano)}
	case time.Duration:
		return Raw{Type: "duration", Text: v.String()}
	case []byte:
		return Raw{Type: "bytes", Text: string(v)}
	case fmt.Stringer:
		return Raw{Type: fmt.Sprintf("%T", x), Text: v.String()}
	default:
		return Raw{Type: fmt.Sprintf("%T", x), Text: fmt.Sprint(x)}
	}
}

// Native returns the plain Go form of v: string, float64 or int64, bool or nil.
func Native(v Value) any {
	switch t := v.(type) {
	case String:
		return string(t)
	case Number:
		if t.IsInteger() && math.Abs(t.Float) < 1<<53 {
			return int64(t.Float)
		}
		return t.Float
	case Bool:
		return bool(t)
	case Null, nil:
		return nil
	case Raw:
		return t.Text
	default:
		return v.String()
	}
}
