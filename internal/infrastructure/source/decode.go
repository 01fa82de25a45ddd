package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/magiconair/properties"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"pcfg.dev/cli/internal/core/property"
)

// ErrUnsupportedFormat is returned for files whose extension has no decoder
var ErrUnsupportedFormat = errors.New("unsupported source format")

// DecodeFunc parses a file into its documents, each already flattened.
type DecodeFunc func(data []byte) ([]property.FlatMap, error)

var decoders = map[string]DecodeFunc{
	".yml":        decodeYAML,
	".yaml":       decodeYAML,
	".json":       decodeJSON,
	".jsonc":      decodeJSON,
	".toml":       decodeTOML,
	".properties": decodeProperties,
}

// Extensions lists the recognised file extensions in lookup order.
func Extensions() []string {
	return []string{".properties", ".yml", ".yaml", ".json", ".jsonc", ".toml"}
}

// Decode parses data according to the file extension ext.
func Decode(ext string, data []byte) ([]property.FlatMap, error) {
	decode, ok := decoders[strings.ToLower(ext)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return decode(data)
}

func decodeYAML(data []byte) ([]property.FlatMap, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var docs []property.FlatMap
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("yaml document %d: %w", len(docs)+1, err)
		}
		f := newFlattener()
		if err := f.yamlDocument(&node); err != nil {
			return nil, fmt.Errorf("yaml document %d: %w", len(docs)+1, err)
		}
		docs = append(docs, f.freeze())
	}
}

func (f *flattener) yamlDocument(n *yaml.Node) error {
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return nil
		}
		n = n.Content[0]
	}
	for n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	switch {
	case n.Kind == yaml.MappingNode:
		return f.yamlNode("", n)
	case n.Kind == yaml.ScalarNode && n.Tag == "!!null":
		return nil
	default:
		return fmt.Errorf("line %d: top-level value must be a mapping", n.Line)
	}
}

func (f *flattener) yamlNode(prefix string, n *yaml.Node) error {
	switch n.Kind {
	case yaml.AliasNode:
		return f.yamlNode(prefix, n.Alias)
	case yaml.MappingNode:
		// merged members first so the mapping's own keys win
		for i := 0; i+1 < len(n.Content); i += 2 {
			if isMergeKey(n.Content[i]) {
				if err := f.yamlMerge(prefix, n.Content[i+1]); err != nil {
					return err
				}
			}
		}
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if isMergeKey(k) {
				continue
			}
			if k.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
			}
			if err := f.yamlNode(joinKey(prefix, k.Value), v); err != nil {
				return err
			}
		}
	case yaml.SequenceNode:
		for i, item := range n.Content {
			if err := f.yamlNode(indexKey(prefix, i), item); err != nil {
				return err
			}
		}
	case yaml.ScalarNode:
		var x any
		if err := n.Decode(&x); err != nil {
			return fmt.Errorf("line %d: key %q: %w", n.Line, prefix, err)
		}
		f.set(prefix, property.ValueOf(x))
	}
	return nil
}

func isMergeKey(k *yaml.Node) bool {
	return k.Kind == yaml.ScalarNode && k.Tag == "!!merge"
}

func (f *flattener) yamlMerge(prefix string, v *yaml.Node) error {
	for v.Kind == yaml.AliasNode {
		v = v.Alias
	}
	switch v.Kind {
	case yaml.MappingNode:
		return f.yamlNode(prefix, v)
	case yaml.SequenceNode:
		for _, item := range v.Content {
			if err := f.yamlMerge(prefix, item); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("line %d: merge value must be a mapping", v.Line)
	}
}

// decodeJSON accepts JSON with comments and trailing commas. Members are
// read token by token so document order survives.
func decodeJSON(data []byte) ([]property.FlatMap, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()

	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("json: top-level value must be an object")
	}

	f := newFlattener()
	if err := f.jsonObject(dec, ""); err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("json: unexpected data after top-level object at offset %d", dec.InputOffset())
	}
	return []property.FlatMap{f.freeze()}, nil
}

// jsonObject reads members up to and including the closing brace.
func (f *flattener) jsonObject(dec *json.Decoder, prefix string) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v at offset %d", tok, dec.InputOffset())
		}
		if err := f.jsonValue(dec, joinKey(prefix, name)); err != nil {
			return err
		}
	}
	_, err := dec.Token()
	return err
}

func (f *flattener) jsonValue(dec *json.Decoder, prefix string) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	d, ok := tok.(json.Delim)
	if !ok {
		f.set(prefix, property.ValueOf(tok))
		return nil
	}
	switch d {
	case '{':
		return f.jsonObject(dec, prefix)
	case '[':
		for i := 0; dec.More(); i++ {
			if err := f.jsonValue(dec, indexKey(prefix, i)); err != nil {
				return err
			}
		}
		_, err := dec.Token()
		return err
	default:
		return fmt.Errorf("unexpected delimiter %v at offset %d", d, dec.InputOffset())
	}
}

func decodeTOML(data []byte) ([]property.FlatMap, error) {
	var doc map[string]any
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, fmt.Errorf("toml: %w", err)
	}
	keys := make([][]string, 0, len(md.Keys()))
	for _, k := range md.Keys() {
		keys = append(keys, []string(k))
	}
	f := newFlattener()
	f.value("", nil, doc, positionOrder(keys))
	return []property.FlatMap{f.freeze()}, nil
}

// decodeProperties reads a Java-style properties file. Values stay text
// and ${...} references are kept literally.
func decodeProperties(data []byte) ([]property.FlatMap, error) {
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := loader.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("properties: %w", err)
	}
	f := newFlattener()
	for _, key := range p.Keys() {
		v, _ := p.Get(key)
		f.set(key, property.String(v))
	}
	return []property.FlatMap{f.freeze()}, nil
}
