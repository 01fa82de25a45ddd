package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"pcfg.dev/cli/internal/core/domain"
	"pcfg.dev/cli/internal/core/property"
)

// JSON writes the tree as indented JSON, keeping object key order.
type JSON struct{}

func (JSON) Format() string { return "json" }

func (JSON) Render(w io.Writer, res *domain.Resolution) error {
	var compact bytes.Buffer
	if err := writeJSON(&compact, res.Tree.Root()); err != nil {
		return fmt.Errorf("json: %w", err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return fmt.Errorf("json: %w", err)
	}
	out.WriteByte('\n')
	_, err := out.WriteTo(w)
	return err
}

func writeJSON(buf *bytes.Buffer, n property.Node) error {
	switch v := n.(type) {
	case *property.Object:
		buf.WriteByte('{')
		var err error
		first := true
		v.Range(func(key string, child property.Node) bool {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			if err = writeJSONString(buf, key); err != nil {
				return false
			}
			buf.WriteByte(':')
			err = writeJSON(buf, child)
			return err == nil
		})
		if err != nil {
			return err
		}
		buf.WriteByte('}')
	case *property.Array:
		buf.WriteByte('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				buf.WriteByte(',')
			}
			child, _ := v.At(i)
			if err := writeJSON(buf, child); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case property.Scalar:
		return writeJSONScalar(buf, v.Value)
	default:
		buf.WriteString("null")
	}
	return nil
}

func writeJSONScalar(buf *bytes.Buffer, value property.Value) error {
	switch v := value.(type) {
	case property.Number:
		if math.IsInf(v.Float, 0) || math.IsNaN(v.Float) {
			return writeJSONString(buf, v.String())
		}
		if json.Valid([]byte(v.Literal)) {
			buf.WriteString(v.Literal)
		} else {
			buf.WriteString(strconv.FormatFloat(v.Float, 'g', -1, 64))
		}
	case property.Bool:
		buf.WriteString(v.String())
	case property.Null:
		buf.WriteString("null")
	default:
		return writeJSONString(buf, value.String())
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}
