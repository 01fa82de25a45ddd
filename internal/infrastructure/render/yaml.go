package render

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"pcfg.dev/cli/internal/core/domain"
	"pcfg.dev/cli/internal/core/property"
)

// YAML writes the tree as a YAML document, keeping object key order.
type YAML struct{}

func (YAML) Format() string { return "yaml" }

func (YAML) Render(w io.Writer, res *domain.Resolution) error {
	return WriteNode(w, res.Tree.Root())
}

// WriteNode writes one subtree as YAML.
func WriteNode(w io.Writer, n property.Node) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(yamlNode(n)); err != nil {
		return fmt.Errorf("yaml: %w", err)
	}
	return enc.Close()
}

func yamlNode(n property.Node) *yaml.Node {
	switch v := n.(type) {
	case *property.Object:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		v.Range(func(key string, child property.Node) bool {
			out.Content = append(out.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
				yamlNode(child))
			return true
		})
		return out
	case *property.Array:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i := 0; i < v.Len(); i++ {
			child, _ := v.At(i)
			out.Content = append(out.Content, yamlNode(child))
		}
		return out
	case property.Scalar:
		return yamlScalar(v.Value)
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

func yamlScalar(value property.Value) *yaml.Node {
	switch value.(type) {
	case property.Number, property.Bool:
		// plain, so the encoder resolves the tag from the text
		return &yaml.Node{Kind: yaml.ScalarNode, Value: value.String()}
	case property.Null:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value.String()}
	}
}
