package render

import (
	"fmt"
	"io"

	"pcfg.dev/cli/internal/core/domain"
	"pcfg.dev/cli/internal/infrastructure/codec"
)

// CBOR writes the tree in deterministic CBOR.
type CBOR struct{}

func (CBOR) Format() string { return "cbor" }

func (CBOR) Render(w io.Writer, res *domain.Resolution) error {
	data, err := codec.Marshal(res.Tree.ToNative())
	if err != nil {
		return fmt.Errorf("cbor: %w", err)
	}
	_, err = w.Write(data)
	return err
}
