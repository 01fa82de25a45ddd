package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"pcfg.dev/cli/internal/application/ports"
	"pcfg.dev/cli/internal/core/profile"
	"pcfg.dev/cli/internal/core/property"
)

// ErrSourceNotFound is returned when a required location does not exist
var ErrSourceNotFound = errors.New("source not found")

// DefaultConfigName is the file stem searched for in directory locations.
const DefaultConfigName = "application"

const optionalPrefix = "optional:"

// FileLoader discovers property files from a comma-separated location
// list. Directory entries are searched for the config name and its
// profile variants; other entries name a single file.
type FileLoader struct {
	configName     string
	activationKeys []string
	logger         ports.LoggingGateway
}

// FileLoaderOption configures a FileLoader
type FileLoaderOption func(*FileLoader)

// WithConfigName sets the file stem searched for in directories.
func WithConfigName(name string) FileLoaderOption {
	return func(l *FileLoader) { l.configName = name }
}

// WithActivationKeys sets the keys that restrict a document to profiles.
func WithActivationKeys(keys ...string) FileLoaderOption {
	return func(l *FileLoader) { l.activationKeys = keys }
}

// WithLogger routes skipped-file and skipped-document messages to logger.
func WithLogger(logger ports.LoggingGateway) FileLoaderOption {
	return func(l *FileLoader) { l.logger = logger }
}

func NewFileLoader(opts ...FileLoaderOption) *FileLoader {
	l := &FileLoader{
		configName:     DefaultConfigName,
		activationKeys: property.DefaultReservedKeys,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *FileLoader) Name() string { return "file" }

type location struct {
	path     string
	dir      bool
	optional bool
}

func parseLocations(baseDir, spec string) []location {
	if strings.TrimSpace(spec) == "" {
		return []location{{path: baseDir, dir: true, optional: true}}
	}
	var locs []location
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		loc := location{}
		if strings.HasPrefix(entry, optionalPrefix) {
			loc.optional = true
			entry = strings.TrimSpace(strings.TrimPrefix(entry, optionalPrefix))
		}
		if entry == "" {
			continue
		}
		loc.dir = strings.HasSuffix(entry, "/") || strings.HasSuffix(entry, `\`)
		loc.path = filepath.Clean(entry)
		if !filepath.IsAbs(loc.path) && baseDir != "" {
			loc.path = filepath.Join(baseDir, loc.path)
		}
		locs = append(locs, loc)
	}
	return locs
}

// Load returns, lowest precedence first, the unconditional documents of
// every base file, then base documents activated by a profile, then the
// profile-specific files in profile order.
func (l *FileLoader) Load(ctx context.Context, req ports.SourceRequest) ([]property.Source, error) {
	locs := parseLocations(req.BaseDir, req.Location)

	var base, activated, profiled []property.Source
	for _, loc := range locs {
		files, err := l.baseFiles(loc)
		if err != nil {
			return nil, err
		}
		for _, path := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			sources, conditional, err := l.readFile(path, req.Profiles)
			if err != nil {
				return nil, err
			}
			base = append(base, sources...)
			activated = append(activated, conditional...)
		}
	}

	for _, p := range req.Profiles {
		for _, loc := range locs {
			for _, path := range l.profileFiles(loc, p) {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				sources, conditional, err := l.readFile(path, req.Profiles)
				if err != nil {
					return nil, err
				}
				profiled = append(profiled, sources...)
				profiled = append(profiled, conditional...)
			}
		}
	}

	out := make([]property.Source, 0, len(base)+len(activated)+len(profiled))
	out = append(out, base...)
	out = append(out, activated...)
	return append(out, profiled...), nil
}

func (l *FileLoader) baseFiles(loc location) ([]string, error) {
	info, err := os.Stat(loc.path)
	if errors.Is(err, fs.ErrNotExist) {
		if loc.optional {
			l.debug("location not found, skipping", map[string]interface{}{"path": loc.path})
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, loc.path)
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", loc.path, err)
	}

	if !loc.dir && !info.IsDir() {
		return []string{loc.path}, nil
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("location %s is not a directory", loc.path)
	}
	return existing(loc.path, l.configName), nil
}

func (l *FileLoader) profileFiles(loc location, p string) []string {
	if loc.dir {
		return existing(loc.path, l.configName+"-"+p)
	}
	ext := filepath.Ext(loc.path)
	candidate := strings.TrimSuffix(loc.path, ext) + "-" + p + ext
	if _, err := os.Stat(candidate); err != nil {
		return nil
	}
	return []string{candidate}
}

// existing returns dir/stem.ext for every known extension that exists.
func existing(dir, stem string) []string {
	var files []string
	for _, ext := range Extensions() {
		path := filepath.Join(dir, stem+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			files = append(files, path)
		}
	}
	return files
}

// readFile splits the documents of path into unconditional ones and ones
// restricted to profiles that are active. Inactive documents are dropped.
func (l *FileLoader) readFile(path string, active []string) (plain, conditional []property.Source, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	docs, err := Decode(filepath.Ext(path), data)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}

	for i, doc := range docs {
		src := property.Source{Name: documentName(path, i, len(docs)), Properties: doc}
		spec, restricted := l.activation(doc)
		switch {
		case !restricted:
			plain = append(plain, src)
		case Matches(spec, active):
			conditional = append(conditional, src)
		default:
			l.debug("document not active, skipping", map[string]interface{}{
				"source":   src.Name,
				"profiles": profile.String(spec),
			})
		}
	}
	return plain, conditional, nil
}

func (l *FileLoader) activation(doc property.FlatMap) ([]string, bool) {
	for _, key := range l.activationKeys {
		if list := doc.GetStringSlice(key, nil); list != nil {
			return list, true
		}
	}
	return nil, false
}

// Matches reports whether a document restricted to spec applies. Any
// listed profile that is active matches, and "!name" matches while name
// is inactive.
func Matches(spec, active []string) bool {
	on := make(map[string]bool, len(active))
	for _, p := range active {
		on[p] = true
	}
	for _, s := range spec {
		s = strings.TrimSpace(s)
		if neg, ok := strings.CutPrefix(s, "!"); ok {
			if !on[neg] {
				return true
			}
			continue
		}
		if on[s] {
			return true
		}
	}
	return false
}

func documentName(path string, i, n int) string {
	if n <= 1 {
		return path
	}
	return fmt.Sprintf("%s#%d", path, i+1)
}

func (l *FileLoader) debug(msg string, fields map[string]interface{}) {
	if l.logger != nil {
		l.logger.Log(ports.LogLevelDebug, msg, fields)
	}
}

var _ ports.SourceLoader = (*FileLoader)(nil)
