package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pcfg.dev/cli/internal/application/ports"
	"pcfg.dev/cli/internal/core/domain"
	"pcfg.dev/cli/internal/core/profile"
	"pcfg.dev/cli/internal/core/property"
)

// staticLoader returns fixed sources and remembers the last request
type staticLoader struct {
	name    string
	sources []property.Source
	err     error
	got     ports.SourceRequest
}

func (l *staticLoader) Name() string { return l.name }

func (l *staticLoader) Load(ctx context.Context, req ports.SourceRequest) ([]property.Source, error) {
	l.got = req
	return l.sources, l.err
}

type MockRecordStore struct {
	mock.Mock
}

func (m *MockRecordStore) Append(ctx context.Context, runID string, entry domain.RecordEntry) (*domain.Record, error) {
	args := m.Called(ctx, runID, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Record), args.Error(1)
}

func (m *MockRecordStore) Load(ctx context.Context, runID string) (*domain.Record, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Record), args.Error(1)
}

func (m *MockRecordStore) List(ctx context.Context) ([]domain.RecordSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.RecordSummary), args.Error(1)
}

// recordingLogger keeps messages for assertions
type recordingLogger struct {
	messages []string
	errors   []error
	level    ports.LogLevel
}

func (l *recordingLogger) Log(level ports.LogLevel, message string, fields map[string]interface{}) {
	l.messages = append(l.messages, message)
}

func (l *recordingLogger) LogError(err error, message string, fields map[string]interface{}) {
	l.errors = append(l.errors, err)
	l.messages = append(l.messages, message)
}

func (l *recordingLogger) LogResolution(res *domain.Resolution, message string) {
	l.messages = append(l.messages, message)
}

func (l *recordingLogger) SetLogLevel(level ports.LogLevel) { l.level = level }

func (l *recordingLogger) GetLogLevel() ports.LogLevel { return l.level }

func (l *recordingLogger) ConfigureLogging(config *ports.LoggingConfig) error { return nil }

func src(name string, pairs ...string) property.Source {
	b := property.NewFlatMapBuilder(len(pairs) / 2)
	for i := 0; i+1 < len(pairs); i += 2 {
		b.Set(pairs[i], property.String(pairs[i+1]))
	}
	return property.Source{Name: name, Properties: b.Freeze()}
}

func TestResolutionService_Resolve(t *testing.T) {
	files := &staticLoader{name: "file", sources: []property.Source{
		src("application.yml", "app.name", "base", "app.hosts[0]", "a", "app.hosts[1]", "b", "spring.profiles", "x"),
		src("application-dev.yml", "app.hosts[0]", "z"),
	}}
	overrides := &staticLoader{name: "overrides", sources: []property.Source{src("overrides", "app.name", "cli")}}
	logger := &recordingLogger{}
	svc := NewResolutionService([]ports.SourceLoader{files, overrides}, nil, nil, logger)

	scope := profile.NewScope("job", "dev", profile.NewScope("folder", "cloud", nil))
	res, err := svc.Resolve(context.Background(), ResolveRequest{
		BaseDir:    "/cfg",
		Location:   "conf/",
		Profiles:   []string{"local"},
		Scope:      scope,
		Overrides:  []string{"app.name=cli"},
		IncludeEnv: true,
	})
	require.NoError(t, err)

	assert.Equal(t, ports.SourceRequest{
		BaseDir:    "/cfg",
		Location:   "conf/",
		Profiles:   []string{"cloud", "dev", "local"},
		Overrides:  []string{"app.name=cli"},
		IncludeEnv: true,
	}, files.got)

	assert.Equal(t, []string{"cloud", "dev", "local"}, res.Profiles)
	assert.Equal(t, []string{"application.yml", "application-dev.yml", "overrides"}, res.Sources)
	assert.Equal(t, []string{"app.name", "app.hosts[0]"}, res.Properties.Keys())
	assert.Equal(t, "cli", res.Properties.GetString("app.name", ""))
	assert.Equal(t, domain.Digest(res.Properties), res.Digest)

	node, ok := res.Tree.Lookup("app.hosts[0]")
	require.True(t, ok)
	assert.Equal(t, property.Scalar{Value: property.String("z")}, node)
	assert.Contains(t, logger.messages, "Resolved configuration")
}

func TestResolutionService_LoaderError(t *testing.T) {
	boom := errors.New("boom")
	logger := &recordingLogger{}
	svc := NewResolutionService([]ports.SourceLoader{&staticLoader{name: "file", err: boom}}, nil, nil, logger)

	_, err := svc.Resolve(context.Background(), ResolveRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "loading file sources")
	assert.Equal(t, []error{boom}, logger.errors)
}

func TestResolutionService_InvalidKeyFailsBuild(t *testing.T) {
	loader := &staticLoader{name: "file", sources: []property.Source{src("bad", "a[x]", "1")}}
	svc := NewResolutionService([]ports.SourceLoader{loader}, nil, nil, &recordingLogger{})

	_, err := svc.Resolve(context.Background(), ResolveRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, property.ErrInvalidKey)

	var keyErr *property.InvalidKeyError
	require.True(t, errors.As(err, &keyErr))
	assert.Equal(t, "a[x]", keyErr.Key)
}

func TestResolutionService_CustomReservedKeys(t *testing.T) {
	loader := &staticLoader{name: "file", sources: []property.Source{src("a", "spring.profiles", "dev", "meta.tag", "t")}}
	combiner := property.NewCombiner(property.WithReservedKeys("meta.tag"))
	svc := NewResolutionService([]ports.SourceLoader{loader}, combiner, nil, &recordingLogger{})

	res, err := svc.Resolve(context.Background(), ResolveRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"spring.profiles"}, res.Properties.Keys())
}

func TestResolutionService_Recording(t *testing.T) {
	loader := &staticLoader{name: "file", sources: []property.Source{src("a", "k", "v")}}

	t.Run("appends when a run is named", func(t *testing.T) {
		store := new(MockRecordStore)
		store.On("Append", mock.Anything, "run-7", mock.MatchedBy(func(e domain.RecordEntry) bool {
			return len(e.Properties) == 1 && e.Properties[0].Key == "k"
		})).Return(&domain.Record{RunID: "run-7"}, nil).Once()

		svc := NewResolutionService([]ports.SourceLoader{loader}, nil, store, &recordingLogger{})
		_, err := svc.Resolve(context.Background(), ResolveRequest{RunID: "run-7"})
		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("hidden resolutions are not recorded", func(t *testing.T) {
		store := new(MockRecordStore)
		svc := NewResolutionService([]ports.SourceLoader{loader}, nil, store, &recordingLogger{})

		_, err := svc.Resolve(context.Background(), ResolveRequest{RunID: "run-7", Hide: true})
		require.NoError(t, err)
		store.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store failure surfaces", func(t *testing.T) {
		store := new(MockRecordStore)
		store.On("Append", mock.Anything, "run-7", mock.Anything).Return(nil, errors.New("disk full"))

		svc := NewResolutionService([]ports.SourceLoader{loader}, nil, store, &recordingLogger{})
		_, err := svc.Resolve(context.Background(), ResolveRequest{RunID: "run-7"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "recording resolution: disk full")
	})
}

func TestResolutionService_Records(t *testing.T) {
	svc := NewResolutionService(nil, nil, nil, &recordingLogger{})
	_, err := svc.Record(context.Background(), "x")
	assert.ErrorIs(t, err, ports.ErrRecordNotFound)

	list, err := svc.Records(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)

	store := new(MockRecordStore)
	store.On("List", mock.Anything).Return([]domain.RecordSummary{{RunID: "r"}}, nil)
	store.On("Load", mock.Anything, "r").Return(&domain.Record{RunID: "r"}, nil)
	svc = NewResolutionService(nil, nil, store, &recordingLogger{})

	list, err = svc.Records(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "r", list[0].RunID)

	rec, err := svc.Record(context.Background(), "r")
	require.NoError(t, err)
	assert.Equal(t, "r", rec.RunID)
}
