package render

import (
	"fmt"
	"io"

	"pcfg.dev/cli/internal/core/domain"
	"pcfg.dev/cli/internal/core/property"
)

// Flat writes one aligned "key = value" line per property.
type Flat struct{}

func (Flat) Format() string { return "flat" }

func (Flat) Render(w io.Writer, res *domain.Resolution) error {
	width := 0
	res.Properties.Range(func(key string, _ property.Value) bool {
		width = max(width, len(key))
		return true
	})

	var err error
	res.Properties.Range(func(key string, value property.Value) bool {
		_, err = fmt.Fprintf(w, "%-*s = %s\n", width, key, value.String())
		return err == nil
	})
	return err
}
