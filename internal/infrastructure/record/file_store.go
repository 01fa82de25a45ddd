package record

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"pcfg.dev/cli/internal/application/ports"
	"pcfg.dev/cli/internal/core/domain"
	"pcfg.dev/cli/internal/infrastructure/codec"
)

// ErrInvalidRunID is returned for run IDs that cannot name a file
var ErrInvalidRunID = errors.New("invalid run id")

// Format selects the on-disk encoding of records
type Format string

const (
	FormatYAML Format = "yaml"
	FormatCBOR Format = "cbor"
)

// ParseFormat maps a format name onto a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatYAML, "yml", "":
		return FormatYAML, nil
	case FormatCBOR:
		return FormatCBOR, nil
	default:
		return "", fmt.Errorf("unknown record format %q (want yaml or cbor)", s)
	}
}

func (f Format) ext() string { return "." + string(f) }

func (f Format) marshal(rec *domain.Record) ([]byte, error) {
	if f == FormatCBOR {
		return codec.Marshal(rec)
	}
	return yaml.Marshal(rec)
}

func (f Format) unmarshal(data []byte, rec *domain.Record) error {
	if f == FormatCBOR {
		return codec.Unmarshal(data, rec)
	}
	return yaml.Unmarshal(data, rec)
}

// FileStore keeps one file per run under a directory.
type FileStore struct {
	dir    string
	format Format
	now    func() time.Time
	mu     sync.Mutex
}

// FileStoreOption configures a FileStore
type FileStoreOption func(*FileStore)

// WithClock replaces time.Now for UpdatedAt stamps.
func WithClock(now func() time.Time) FileStoreOption {
	return func(s *FileStore) { s.now = now }
}

func NewFileStore(dir string, format Format, opts ...FileStoreOption) *FileStore {
	s := &FileStore{dir: dir, format: format, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func validRunID(runID string) error {
	if runID == "" || runID == "." || runID == ".." || strings.ContainsAny(runID, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidRunID, runID)
	}
	return nil
}

func (s *FileStore) path(runID string) string {
	return filepath.Join(s.dir, runID+s.format.ext())
}

// Append adds entry to the run's record, creating it on first use.
func (s *FileStore) Append(ctx context.Context, runID string, entry domain.RecordEntry) (*domain.Record, error) {
	if err := validRunID(runID); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read(runID)
	if errors.Is(err, ports.ErrRecordNotFound) {
		rec = &domain.Record{RunID: runID}
	} else if err != nil {
		return nil, err
	}

	rec.Entries = append(rec.Entries, entry)
	rec.UpdatedAt = s.now().UTC()

	data, err := s.format.marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding record %s: %w", runID, err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating records directory: %w", err)
	}
	if err := writeAtomic(s.path(runID), data); err != nil {
		return nil, err
	}
	return rec, nil
}

// Load reads the run's record.
func (s *FileStore) Load(ctx context.Context, runID string) (*domain.Record, error) {
	if err := validRunID(runID); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(runID)
}

// List summarises every record in the store's format, newest first.
func (s *FileStore) List(ctx context.Context) ([]domain.RecordSummary, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading records directory: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var summaries []domain.RecordSummary
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		runID, ok := strings.CutSuffix(e.Name(), s.format.ext())
		if e.IsDir() || !ok || validRunID(runID) != nil {
			continue
		}
		rec, err := s.read(runID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, rec.Summary())
	}

	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].UpdatedAt.Equal(summaries[j].UpdatedAt) {
			return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
		}
		return summaries[i].RunID < summaries[j].RunID
	})
	return summaries, nil
}

func (s *FileStore) read(runID string) (*domain.Record, error) {
	data, err := os.ReadFile(s.path(runID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ports.ErrRecordNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("reading record %s: %w", runID, err)
	}
	var rec domain.Record
	if err := s.format.unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding record %s: %w", runID, err)
	}
	return &rec, nil
}

// writeAtomic replaces path so readers see either the old or the new
// content, never a partial write.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary record file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temporary record file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing temporary record file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temporary record file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming record file into place: %w", err)
	}
	return nil
}

var _ ports.RecordStore = (*FileStore)(nil)
