package services

import (
	"context"
	"fmt"
	"time"

	"pcfg.dev/cli/internal/application/ports"
	"pcfg.dev/cli/internal/core/domain"
	"pcfg.dev/cli/internal/core/profile"
	"pcfg.dev/cli/internal/core/property"
)

// ResolveRequest describes one resolution
type ResolveRequest struct {
	Location   string
	BaseDir    string
	Profiles   []string
	Scope      *profile.Scope
	Overrides  []string
	IncludeEnv bool

	// RunID names the record the result is appended to. Empty or Hide
	// skips recording.
	RunID string
	Hide  bool
}

// ResolutionService loads, combines and builds configuration
type ResolutionService struct {
	loaders  []ports.SourceLoader
	combiner *property.Combiner
	records  ports.RecordStore
	logger   ports.LoggingGateway
	now      func() time.Time
}

// NewResolutionService creates a resolution service. Loaders run in order
// and their sources are concatenated, lowest precedence first. records may
// be nil when recording is not wanted.
func NewResolutionService(loaders []ports.SourceLoader, combiner *property.Combiner, records ports.RecordStore, logger ports.LoggingGateway) *ResolutionService {
	if combiner == nil {
		combiner = property.NewCombiner()
	}
	return &ResolutionService{
		loaders:  loaders,
		combiner: combiner,
		records:  records,
		logger:   logger,
		now:      time.Now,
	}
}

// Resolve runs the full pipeline for req
func (s *ResolutionService) Resolve(ctx context.Context, req ResolveRequest) (*domain.Resolution, error) {
	profiles := profile.Resolve(req.Scope, req.Profiles...)
	sourceReq := ports.SourceRequest{
		BaseDir:    req.BaseDir,
		Location:   req.Location,
		Profiles:   profiles,
		Overrides:  req.Overrides,
		IncludeEnv: req.IncludeEnv,
	}

	var sources []property.Source
	for _, loader := range s.loaders {
		loaded, err := loader.Load(ctx, sourceReq)
		if err != nil {
			s.logger.LogError(err, "Failed to load sources", map[string]interface{}{
				"loader":   loader.Name(),
				"location": req.Location,
			})
			return nil, fmt.Errorf("loading %s sources: %w", loader.Name(), err)
		}
		for _, src := range loaded {
			s.logger.Log(ports.LogLevelDebug, "Loaded source", map[string]interface{}{
				"loader":     loader.Name(),
				"source":     src.Name,
				"properties": src.Properties.Len(),
			})
		}
		sources = append(sources, loaded...)
	}

	names := make([]string, len(sources))
	for i, src := range sources {
		names[i] = src.Name
	}

	combined := s.combiner.Combine(sources)
	res, err := domain.NewResolution(profiles, names, combined, s.now().UTC())
	if err != nil {
		s.logger.LogError(err, "Failed to build property tree", nil)
		return nil, fmt.Errorf("building property tree: %w", err)
	}
	s.logger.LogResolution(res, "Resolved configuration")

	if req.RunID != "" && !req.Hide && s.records != nil {
		if _, err := s.records.Append(ctx, req.RunID, domain.NewRecordEntry(res)); err != nil {
			s.logger.LogError(err, "Failed to record resolution", map[string]interface{}{"run": req.RunID})
			return nil, fmt.Errorf("recording resolution: %w", err)
		}
		s.logger.Log(ports.LogLevelDebug, "Recorded resolution", map[string]interface{}{
			"run":        req.RunID,
			"resolution": res.ID,
		})
	}

	return res, nil
}

// Record returns the stored record of runID
func (s *ResolutionService) Record(ctx context.Context, runID string) (*domain.Record, error) {
	if s.records == nil {
		return nil, fmt.Errorf("%w: recording is disabled", ports.ErrRecordNotFound)
	}
	return s.records.Load(ctx, runID)
}

// Records lists the stored records, newest first
func (s *ResolutionService) Records(ctx context.Context) ([]domain.RecordSummary, error) {
	if s.records == nil {
		return nil, nil
	}
	return s.records.List(ctx)
}
