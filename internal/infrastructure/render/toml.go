package render

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"

	"pcfg.dev/cli/internal/core/domain"
)

// TOML writes the tree as a TOML document. TOML has no null, so null
// members are left out of tables and become empty strings in arrays.
type TOML struct{}

func (TOML) Format() string { return "toml" }

func (TOML) Render(w io.Writer, res *domain.Resolution) error {
	doc := withoutNulls(res.Tree.ToNative()).(map[string]any)
	if err := toml.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("toml: %w", err)
	}
	return nil
}

func withoutNulls(x any) any {
	switch v := x.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, child := range v {
			if child != nil {
				out[k] = withoutNulls(child)
			}
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, child := range v {
			if child == nil {
				out[i] = ""
				continue
			}
			out[i] = withoutNulls(child)
		}
		return out
	default:
		return x
	}
}
