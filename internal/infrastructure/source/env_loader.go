package source

import (
	"context"
	"os"
	"regexp"
	"sort"
	"strings"

	"pcfg.dev/cli/internal/application/ports"
	"pcfg.dev/cli/internal/core/property"
)

// DefaultEnvPrefix marks environment variables that carry properties.
const DefaultEnvPrefix = "PCFG_"

var envIndex = regexp.MustCompile(`__([0-9]+)__`)

// EnvLoader turns prefixed environment variables into one source.
// PCFG_SERVER_PORT becomes server.port and PCFG_HOSTS__0__ becomes hosts[0].
type EnvLoader struct {
	prefix   string
	environ  func() []string
	excluded map[string]struct{}
}

// EnvLoaderOption configures an EnvLoader
type EnvLoaderOption func(*EnvLoader)

// WithPrefix sets the variable prefix.
func WithPrefix(prefix string) EnvLoaderOption {
	return func(l *EnvLoader) { l.prefix = prefix }
}

// WithEnviron replaces os.Environ as the variable supplier.
func WithEnviron(environ func() []string) EnvLoaderOption {
	return func(l *EnvLoader) { l.environ = environ }
}

// WithExcluded skips the named variables, such as the tool's own settings.
func WithExcluded(names ...string) EnvLoaderOption {
	return func(l *EnvLoader) {
		for _, n := range names {
			l.excluded[n] = struct{}{}
		}
	}
}

func NewEnvLoader(opts ...EnvLoaderOption) *EnvLoader {
	l := &EnvLoader{
		prefix:   DefaultEnvPrefix,
		environ:  os.Environ,
		excluded: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *EnvLoader) Name() string { return "env" }

// Load implements SourceLoader. It contributes nothing unless the request
// asks for the environment.
func (l *EnvLoader) Load(ctx context.Context, req ports.SourceRequest) ([]property.Source, error) {
	if !req.IncludeEnv {
		return nil, nil
	}
	m := l.LoadEnv()
	if m.Len() == 0 {
		return nil, nil
	}
	return []property.Source{{Name: l.Name(), Properties: m}}, nil
}

// LoadEnv builds the flat map from the current environment, sorted by key.
func (l *EnvLoader) LoadEnv() property.FlatMap {
	type pair struct{ key, value string }
	var pairs []pair
	for _, kv := range l.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		if _, skip := l.excluded[name]; skip {
			continue
		}
		key := EnvKey(strings.TrimPrefix(name, l.prefix))
		if key == "" {
			continue
		}
		pairs = append(pairs, pair{key, value})
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })

	b := property.NewFlatMapBuilder(len(pairs))
	for _, p := range pairs {
		b.Set(p.key, property.String(p.value))
	}
	return b.Freeze()
}

// EnvKey maps an environment variable name, prefix already removed, to a
// property key.
func EnvKey(name string) string {
	key := envIndex.ReplaceAllString(strings.ToLower(name), "[$1]")
	return strings.ReplaceAll(key, "_", ".")
}

var _ ports.SourceLoader = (*EnvLoader)(nil)
