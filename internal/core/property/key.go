package property

import (
	"strconv"
	"strings"
)

// MaxIndex caps array indices. The limit is on memory, not syntax: a
// well-formed key such as "a[70000]" is still rejected because the builder
// would fill every lower slot.
const MaxIndex = 1 << 16

// Segment is one dot-separated part of a key: a map key optionally
// followed by array indices. Offset is where Name starts in the key.
type Segment struct {
	Name    string
	Indices []int
	Offset  int
}

// Path is a parsed key.
type Path struct {
	Key      string
	Segments []Segment
}

// String rebuilds the key text from the segments.
func (p Path) String() string {
	var sb strings.Builder
	for i, seg := range p.Segments {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(seg.Name)
		for _, idx := range seg.Indices {
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(idx))
			sb.WriteByte(']')
		}
	}
	return sb.String()
}

// Remainder returns the literal key text from segment i onwards.
func (p Path) Remainder(i int) string {
	return p.Key[p.Segments[i].Offset:]
}

// navState is what the navigator expects the next token to be.
type navState int

const (
	stateMap navState = iota
	stateArray
	stateLeaf
)

// navigator walks a key left to right. pos is the offset of the
// delimiter that ended the previous token, -1 before the first one.
type navigator struct {
	key   string
	pos   int
	state navState
}

func newNavigator(key string) *navigator {
	return &navigator{key: key, pos: -1, state: stateMap}
}

// name consumes a map key and records what follows it.
func (n *navigator) name() (string, int, error) {
	start := n.pos + 1
	end := len(n.key)
	n.state = stateLeaf
	for i := start; i < len(n.key); i++ {
		c := n.key[i]
		if c == '.' {
			n.state = stateMap
			end = i
			break
		}
		if c == '[' {
			n.state = stateArray
			end = i
			break
		}
		if c == ']' {
			return "", start, invalidKey(n.key, i, "unmatched ']'")
		}
	}
	if end == start {
		return "", start, invalidKey(n.key, start, "empty segment")
	}
	n.pos = end
	return n.key[start:end], start, nil
}

// index consumes "digits]" after a '[' and records what follows the ']'.
func (n *navigator) index() (int, error) {
	start := n.pos + 1
	end := -1
	for i := start; i < len(n.key); i++ {
		c := n.key[i]
		if c == ']' {
			end = i
			break
		}
		if c < '0' || c > '9' {
			return 0, invalidKey(n.key, i, "non-digit character in index")
		}
	}
	if end < 0 {
		return 0, invalidKey(n.key, len(n.key), "unterminated '['")
	}
	if end == start {
		return 0, invalidKey(n.key, start, "empty index")
	}
	idx, err := strconv.Atoi(n.key[start:end])
	if err != nil || idx > MaxIndex {
		return 0, invalidKey(n.key, start, "index exceeds limit of "+strconv.Itoa(MaxIndex))
	}

	n.pos = end + 1
	if n.pos == len(n.key) {
		n.state = stateLeaf
		return idx, nil
	}
	switch n.key[n.pos] {
	case '.':
		n.state = stateMap
	case '[':
		n.state = stateArray
	default:
		return 0, invalidKey(n.key, n.pos, "expected '.', '[' or end of key after ']'")
	}
	return idx, nil
}

// ParseKey parses a flat key such as "server.ports[0]" or "a.b[1][2].c".
// It returns an *InvalidKeyError for unmatched, unterminated, empty or
// non-numeric brackets and for empty segments.
func ParseKey(key string) (Path, error) {
	path := Path{Key: key}
	if key == "" {
		return path, invalidKey(key, 0, "empty key")
	}

	nav := newNavigator(key)
	for {
		name, offset, err := nav.name()
		if err != nil {
			return Path{Key: key}, err
		}
		seg := Segment{Name: name, Offset: offset}
		for nav.state == stateArray {
			idx, err := nav.index()
			if err != nil {
				return Path{Key: key}, err
			}
			seg.Indices = append(seg.Indices, idx)
		}
		path.Segments = append(path.Segments, seg)
		if nav.state == stateLeaf {
			return path, nil
		}
	}
}

// arrayBase returns the part of key before its first '[' and whether
// the key has one.
func arrayBase(key string) (string, bool) {
	i := strings.IndexByte(key, '[')
	if i < 0 {
		return "", false
	}
	return key[:i], true
}
