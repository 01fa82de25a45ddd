package render

import (
	"errors"
	"fmt"
	"sort"

	"pcfg.dev/cli/internal/application/ports"
)

// ErrUnsupportedFormat is returned for an output format with no renderer
var ErrUnsupportedFormat = errors.New("unsupported output format")

var renderers = map[string]func() ports.Renderer{
	"flat":       func() ports.Renderer { return Flat{} },
	"properties": func() ports.Renderer { return Properties{} },
	"json":       func() ports.Renderer { return JSON{} },
	"yaml":       func() ports.Renderer { return YAML{} },
	"toml":       func() ports.Renderer { return TOML{} },
	"cbor":       func() ports.Renderer { return CBOR{} },
}

// New returns the renderer registered for format.
func New(format string) (ports.Renderer, error) {
	mk, ok := renderers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q (want one of %v)", ErrUnsupportedFormat, format, Formats())
	}
	return mk(), nil
}

// Formats lists the registered format names.
func Formats() []string {
	out := make([]string, 0, len(renderers))
	for name := range renderers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
