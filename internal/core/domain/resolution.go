package domain

import (
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"pcfg.dev/cli/internal/core/profile"
	"pcfg.dev/cli/internal/core/property"
)

// Resolution is the outcome of one configuration-resolution request: the
// combined flat properties, their nested form and what produced them.
type Resolution struct {
	ID         string
	Profiles   []string
	Sources    []string
	Properties property.FlatMap
	Tree       *property.Tree
	Digest     string
	ResolvedAt time.Time
}

// NewResolution builds the tree for flat and stamps the result with a
// fresh ID and a content digest.
func NewResolution(profiles, sources []string, flat property.FlatMap, now time.Time) (*Resolution, error) {
	tree, err := property.Build(flat)
	if err != nil {
		return nil, err
	}
	return &Resolution{
		ID:         uuid.NewString(),
		Profiles:   profiles,
		Sources:    sources,
		Properties: flat,
		Tree:       tree,
		Digest:     Digest(flat),
		ResolvedAt: now,
	}, nil
}

// ProfilesString returns the active profiles comma-joined.
func (r *Resolution) ProfilesString() string {
	return profile.String(r.Profiles)
}

// Digest hashes the ordered key/kind/value triples of m with BLAKE3. Two
// maps with the same content in the same order share a digest.
func Digest(m property.FlatMap) string {
	h := blake3.New()
	m.Range(func(key string, value property.Value) bool {
		h.Write([]byte(key))
		h.Write([]byte{0})
		h.Write([]byte(value.Kind().String()))
		h.Write([]byte{0})
		h.Write([]byte(value.String()))
		h.Write([]byte{'\n'})
		return true
	})
	return hex.EncodeToString(h.Sum(nil))
}
