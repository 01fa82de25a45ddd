package profile

import "strings"

// Parse splits a comma-separated profile list, trimming blanks and
// dropping empty entries.
func Parse(spec string) []string {
	if strings.TrimSpace(spec) == "" {
		return []string{}
	}
	parts := strings.Split(spec, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Merge concatenates profile lists, keeping the first occurrence of each name.
func Merge(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, list := range lists {
		for _, p := range list {
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

// Scope is a container that can declare profiles, such as a folder or a
// job. Parent is nil at the top.
type Scope struct {
	Name     string
	Profiles string
	Parent   *Scope
}

// NewScope returns a child of parent.
func NewScope(name, profiles string, parent *Scope) *Scope {
	return &Scope{Name: name, Profiles: profiles, Parent: parent}
}

// Chain returns the scopes from the outermost ancestor down to s.
func (s *Scope) Chain() []*Scope {
	var chain []*Scope
	for cur := s; cur != nil; cur = cur.Parent {
		chain = append(chain, cur)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Path joins the scope names from the top, separated by '/'.
func (s *Scope) Path() string {
	chain := s.Chain()
	names := make([]string, 0, len(chain))
	for _, sc := range chain {
		if sc.Name != "" {
			names = append(names, sc.Name)
		}
	}
	return strings.Join(names, "/")
}

// Aggregate collects the profiles declared along the scope chain, outermost
// first, without duplicates. A nil scope yields no profiles.
func Aggregate(leaf *Scope) []string {
	if leaf == nil {
		return []string{}
	}
	chain := leaf.Chain()
	lists := make([][]string, 0, len(chain))
	for _, sc := range chain {
		lists = append(lists, Parse(sc.Profiles))
	}
	return Merge(lists...)
}

// Resolve combines the profiles inherited from scope with explicitly
// requested ones. Explicit profiles come last, so they outrank inherited
// ones when sources are ordered by profile.
func Resolve(scope *Scope, explicit ...string) []string {
	return Merge(Aggregate(scope), explicit)
}

// String joins profiles the way they are displayed and recorded.
func String(profiles []string) string {
	return strings.Join(profiles, ",")
}
