package property

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var errNotConvertible = errors.New("incompatible kind")

// AsString renders any value as text. Null renders as the empty string.
func AsString(v Value) string {
	switch t := v.(type) {
	case String:
		return string(t)
	case Number:
		return t.String()
	case Bool:
		return t.String()
	case Null:
		return ""
	case Raw:
		return t.Text
	default:
		return ""
	}
}

// AsInt reads v as a whole number.
func AsInt(v Value) (int64, error) {
	switch t := v.(type) {
	case Number:
		if t.Literal != "" {
			if i, err := strconv.ParseInt(t.Literal, 10, 64); err == nil {
				return i, nil
			}
		}
		if !t.IsInteger() || math.Abs(t.Float) > math.MaxInt64 {
			return 0, fmt.Errorf("%s is not a whole number", t.String())
		}
		return int64(t.Float), nil
	case String:
		return strconv.ParseInt(strings.TrimSpace(string(t)), 10, 64)
	case Raw:
		return strconv.ParseInt(strings.TrimSpace(t.Text), 10, 64)
	case Bool, Null:
		return 0, errNotConvertible
	default:
		return 0, errNotConvertible
	}
}

// AsFloat reads v as a floating point number.
func AsFloat(v Value) (float64, error) {
	switch t := v.(type) {
	case Number:
		return t.Float, nil
	case String:
		return strconv.ParseFloat(strings.TrimSpace(string(t)), 64)
	case Raw:
		return strconv.ParseFloat(strings.TrimSpace(t.Text), 64)
	case Bool, Null:
		return 0, errNotConvertible
	default:
		return 0, errNotConvertible
	}
}

// AsBool reads v as a boolean. Strings accept the strconv.ParseBool forms.
func AsBool(v Value) (bool, error) {
	switch t := v.(type) {
	case Bool:
		return bool(t), nil
	case String:
		return strconv.ParseBool(strings.TrimSpace(string(t)))
	case Raw:
		return strconv.ParseBool(strings.TrimSpace(t.Text))
	case Number, Null:
		return false, errNotConvertible
	default:
		return false, errNotConvertible
	}
}

// AsDuration reads v as a duration. Strings use time.ParseDuration; plain
// numbers, and strings holding only digits, are milliseconds.
func AsDuration(v Value) (time.Duration, error) {
	switch t := v.(type) {
	case Number:
		ms, err := AsInt(t)
		if err != nil {
			return 0, err
		}
		return time.Duration(ms) * time.Millisecond, nil
	case String, Raw:
		s := strings.TrimSpace(AsString(t))
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.Duration(ms) * time.Millisecond, nil
		}
		return time.ParseDuration(s)
	case Bool, Null:
		return 0, errNotConvertible
	default:
		return 0, errNotConvertible
	}
}

// GetString returns the text of key, or def when key is absent.
func (m FlatMap) GetString(key, def string) string {
	v, ok := m.Get(key)
	if !ok {
		return def
	}
	return AsString(v)
}

// GetInt returns key as an integer, or def when absent or unreadable.
func (m FlatMap) GetInt(key string, def int64) int64 {
	i, err := m.RequireInt(key)
	if err != nil {
		return def
	}
	return i
}

// GetFloat returns key as a float, or def when absent or unreadable.
func (m FlatMap) GetFloat(key string, def float64) float64 {
	f, err := m.RequireFloat(key)
	if err != nil {
		return def
	}
	return f
}

// GetBool returns key as a boolean, or def when absent or unreadable.
func (m FlatMap) GetBool(key string, def bool) bool {
	b, err := m.RequireBool(key)
	if err != nil {
		return def
	}
	return b
}

// GetDuration returns key as a duration, or def when absent or unreadable.
func (m FlatMap) GetDuration(key string, def time.Duration) time.Duration {
	d, err := m.RequireDuration(key)
	if err != nil {
		return def
	}
	return d
}

// GetStringSlice collects key[0], key[1], ... up to the first gap. When
// none exist it falls back to splitting a scalar key on commas, and
// finally to def.
func (m FlatMap) GetStringSlice(key string, def []string) []string {
	out, ok := m.stringSlice(key)
	if !ok {
		return def
	}
	return out
}

// RequireString returns the text of key or a *MissingRequiredPropertyError.
func (m FlatMap) RequireString(key string) (string, error) {
	v, err := m.Required(key)
	if err != nil {
		return "", err
	}
	return AsString(v), nil
}

// RequireInt returns key as an integer.
func (m FlatMap) RequireInt(key string) (int64, error) {
	v, err := m.Required(key)
	if err != nil {
		return 0, err
	}
	i, err := AsInt(v)
	if err != nil {
		return 0, conversionError(key, "int", v, err)
	}
	return i, nil
}

// RequireFloat returns key as a float.
func (m FlatMap) RequireFloat(key string) (float64, error) {
	v, err := m.Required(key)
	if err != nil {
		return 0, err
	}
	f, err := AsFloat(v)
	if err != nil {
		return 0, conversionError(key, "float", v, err)
	}
	return f, nil
}

// RequireBool returns key as a boolean.
func (m FlatMap) RequireBool(key string) (bool, error) {
	v, err := m.Required(key)
	if err != nil {
		return false, err
	}
	b, err := AsBool(v)
	if err != nil {
		return false, conversionError(key, "bool", v, err)
	}
	return b, nil
}

// RequireDuration returns key as a duration.
func (m FlatMap) RequireDuration(key string) (time.Duration, error) {
	v, err := m.Required(key)
	if err != nil {
		return 0, err
	}
	d, err := AsDuration(v)
	if err != nil {
		return 0, conversionError(key, "duration", v, err)
	}
	return d, nil
}

// RequireStringSlice is GetStringSlice that fails when nothing is found.
func (m FlatMap) RequireStringSlice(key string) ([]string, error) {
	out, ok := m.stringSlice(key)
	if !ok {
		return nil, &MissingRequiredPropertyError{Key: key}
	}
	return out, nil
}

func (m FlatMap) stringSlice(key string) ([]string, bool) {
	var out []string
	for i := 0; ; i++ {
		v, ok := m.Get(key + "[" + strconv.Itoa(i) + "]")
		if !ok {
			break
		}
		out = append(out, AsString(v))
	}
	if out != nil {
		return out, true
	}

	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	s := AsString(v)
	if s == "" {
		return []string{}, true
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, true
}

func conversionError(key, target string, v Value, err error) error {
	if errors.Is(err, errNotConvertible) {
		err = nil
	}
	return &ConversionError{Key: key, Target: target, Value: v, Err: err}
}
