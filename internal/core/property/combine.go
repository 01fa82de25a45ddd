package property

// Source is one configuration origin's flat properties. Sources are
// combined in ascending precedence: later sources win.
type Source struct {
	Name       string
	Properties FlatMap
}

// DefaultReservedKeys are profile bookkeeping keys that never reach the
// combined output.
var DefaultReservedKeys = []string{"spring.profiles", "pcfg.profiles"}

// Combiner merges ordered sources into one FlatMap.
//
// Scalar keys resolve per key, highest precedence wins. Keys with an
// index (anything containing '[') are grouped by the text before the
// first '[', and a source that defines any key of a group replaces the
// whole group. A shorter list from a later source therefore never keeps
// trailing elements of an earlier, longer one.
type Combiner struct {
	reserved map[string]struct{}
}

// CombinerOption configures a Combiner.
type CombinerOption func(*Combiner)

// WithReservedKeys replaces the reserved key block-list. A reserved key
// also removes its indexed forms ("spring.profiles[0]").
func WithReservedKeys(keys ...string) CombinerOption {
	return func(c *Combiner) {
		c.reserved = make(map[string]struct{}, len(keys))
		for _, k := range keys {
			c.reserved[k] = struct{}{}
		}
	}
}

// NewCombiner returns a Combiner using DefaultReservedKeys unless an
// option says otherwise.
func NewCombiner(opts ...CombinerOption) *Combiner {
	c := &Combiner{}
	WithReservedKeys(DefaultReservedKeys...)(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Combine merges sources with the default Combiner.
func Combine(sources ...Source) FlatMap {
	return NewCombiner().Combine(sources)
}

// arrayGroups keeps each base's winning entries in first-discovery order.
type arrayGroups struct {
	order   []string
	entries map[string][]Entry
}

func (g *arrayGroups) replace(base string, entries []Entry) {
	if _, ok := g.entries[base]; !ok {
		g.order = append(g.order, base)
	}
	g.entries[base] = entries
}

// Combine never fails. Sources with tied precedence resolve by their
// position in the slice; callers are expected to pass a total order.
func (c *Combiner) Combine(sources []Source) FlatMap {
	result := NewFlatMapBuilder(0)
	groups := &arrayGroups{entries: make(map[string][]Entry)}

	for _, src := range sources {
		bySource := make(map[string][]Entry)
		var seen []string
		src.Properties.Range(func(key string, value Value) bool {
			base, indexed := arrayBase(key)
			if !indexed {
				result.Set(key, value)
				return true
			}
			if _, ok := bySource[base]; !ok {
				seen = append(seen, base)
			}
			bySource[base] = append(bySource[base], Entry{Key: key, Value: value})
			return true
		})
		for _, base := range seen {
			groups.replace(base, bySource[base])
		}
	}

	for _, base := range groups.order {
		for _, e := range groups.entries[base] {
			result.Set(e.Key, e.Value)
		}
	}

	c.dropReserved(result)
	return result.Freeze()
}

func (c *Combiner) dropReserved(b *FlatMapBuilder) {
	if len(c.reserved) == 0 {
		return
	}
	var drop []string
	for _, k := range b.keys {
		name := k
		if base, indexed := arrayBase(k); indexed {
			name = base
		}
		if _, ok := c.reserved[name]; ok {
			drop = append(drop, k)
		}
	}
	for _, k := range drop {
		b.Delete(k)
	}
}
