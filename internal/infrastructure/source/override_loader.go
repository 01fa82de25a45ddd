package source

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"pcfg.dev/cli/internal/application/ports"
	"pcfg.dev/cli/internal/core/property"
)

// ErrInvalidOverride is returned for a command-line override that is not key=value
var ErrInvalidOverride = errors.New("invalid override")

var numberLiteral = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// OverrideLoader turns key=value pairs from the command line into the
// highest-precedence source.
type OverrideLoader struct{}

func NewOverrideLoader() *OverrideLoader { return &OverrideLoader{} }

func (l *OverrideLoader) Name() string { return "overrides" }

func (l *OverrideLoader) Load(ctx context.Context, req ports.SourceRequest) ([]property.Source, error) {
	if len(req.Overrides) == 0 {
		return nil, nil
	}
	b := property.NewFlatMapBuilder(len(req.Overrides))
	for _, pair := range req.Overrides {
		key, value, err := ParseOverride(pair)
		if err != nil {
			return nil, err
		}
		b.Set(key, value)
	}
	return []property.Source{{Name: l.Name(), Properties: b.Freeze()}}, nil
}

// ParseOverride splits key=value and infers the value's kind.
func ParseOverride(pair string) (string, property.Value, error) {
	key, raw, ok := strings.Cut(pair, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", nil, fmt.Errorf("%w: %q: expected key=value", ErrInvalidOverride, pair)
	}
	return key, InferValue(raw), nil
}

// InferValue reads true/false as Bool, null as Null and plain decimal
// literals as Number. Everything else is a String.
func InferValue(s string) property.Value {
	switch s {
	case "true":
		return property.Bool(true)
	case "false":
		return property.Bool(false)
	case "null":
		return property.Null{}
	}
	if numberLiteral.MatchString(s) {
		if n, err := property.ParseNumber(s); err == nil {
			return n
		}
	}
	return property.String(s)
}

var _ ports.SourceLoader = (*OverrideLoader)(nil)
