package render

import (
	"fmt"
	"io"

	"github.com/magiconair/properties"

	"pcfg.dev/cli/internal/core/domain"
	"pcfg.dev/cli/internal/core/property"
)

// Properties writes a Java properties file in ISO-8859-1, escaping
// characters outside it as \uXXXX. Null values are written empty.
type Properties struct{}

func (Properties) Format() string { return "properties" }

func (Properties) Render(w io.Writer, res *domain.Resolution) error {
	p := properties.NewProperties()
	p.DisableExpansion = true

	var err error
	res.Properties.Range(func(key string, value property.Value) bool {
		_, _, err = p.Set(key, property.AsString(value))
		return err == nil
	})
	if err != nil {
		return fmt.Errorf("properties: %w", err)
	}
	if _, err := p.Write(w, properties.ISO_8859_1); err != nil {
		return fmt.Errorf("properties: %w", err)
	}
	return nil
}
