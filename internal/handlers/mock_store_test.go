package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/duktw/duk/internal/analytics"
	"github.com/duktw/duk/internal/gate"
	"github.com/duktw/duk/internal/handlers"
	"github.com/duktw/duk/internal/mapping"
	"github.com/duktw/duk/internal/messaging"
	"github.com/duktw/duk/internal/storage"
	"github.com/duktw/duk/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/jaevor/go-nanoid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errMock = errors.New("mock error")

const (
	testBaseURL = "http://localhost:8888"
	testSecret  = "test-secret"
)

// noopPublish returns a publish function that always succeeds.
func noopPublish[T any]() messaging.Publish[T] {
	return func(_ *T) error { return nil }
}

// errorPublish returns a publish function that always fails.
func errorPublish[T any](err error) messaging.Publish[T] {
	return func(_ *T) error { return err }
}

// mockRepo is a test double for mapping.Repository that can be configured to
// return errors.
type mockRepo struct {
	getByHashErr error
	saveErr      error
	incrementErr error
	mappings     map[mapping.Hash]*mapping.Mapping
}

func (m *mockRepo) Save(_ context.Context, mp *mapping.Mapping) error {
	if m.saveErr != nil {
		return m.saveErr
	}

	if m.mappings == nil {
		m.mappings = map[mapping.Hash]*mapping.Mapping{}
	}

	m.mappings[mp.Hash] = mp

	return nil
}

func (m *mockRepo) GetByHash(_ context.Context, hash mapping.Hash) (*mapping.Mapping, error) {
	if m.getByHashErr != nil {
		return nil, m.getByHashErr
	}

	if mp, ok := m.mappings[hash]; ok {
		return mp, nil
	}

	return nil, mapping.ErrNotFound
}

func (m *mockRepo) IncrementViewCount(_ context.Context, _ mapping.Hash) error {
	return m.incrementErr
}

// mockFetcher is a test double for the external image fetcher.
type mockFetcher struct {
	body        []byte
	contentType string
	err         error
	calls       int
}

func (m *mockFetcher) Fetch(_ context.Context, _ string) (io.ReadCloser, string, error) {
	m.calls++

	if m.err != nil {
		return nil, "", m.err
	}

	return io.NopCloser(bytes.NewReader(m.body)), m.contentType, nil
}

type testEnv struct {
	repo    mapping.Repository
	objects *storage.MemoryStore
	fetcher *mockFetcher
	gate    *gate.Gate
	route   *handlers.RouteHandler
	create  *handlers.CreateHandler
	api     huma.API
	router  *chi.Mux
}

// newTestEnv wires the handlers against in-memory collaborators and a real
// huma API so stream responses are exercised end to end.
func newTestEnv(repo mapping.Repository) *testEnv {
	return buildTestEnv(repo,
		noopPublish[analytics.MappingViewedEvent](),
		noopPublish[analytics.MappingCreatedEvent](),
	)
}

func newTestEnvWithPublishError(repo mapping.Repository) *testEnv {
	return buildTestEnv(repo,
		errorPublish[analytics.MappingViewedEvent](errMock),
		errorPublish[analytics.MappingCreatedEvent](errMock),
	)
}

func buildTestEnv(
	repo mapping.Repository,
	publishViewed messaging.Publish[analytics.MappingViewedEvent],
	publishCreated messaging.Publish[analytics.MappingCreatedEvent],
) *testEnv {
	if repo == nil {
		repo = store.NewMemoryStore()
	}

	objects := storage.NewMemoryStore()
	fetcher := &mockFetcher{}
	g := gate.New(testSecret, false)
	gen, _ := nanoid.Standard(6)

	route := handlers.NewRouteHandler(
		repo,
		g,
		objects,
		fetcher,
		testBaseURL,
		publishViewed,
		zap.NewNop(),
	)

	create := handlers.NewCreateHandler(
		repo,
		objects,
		gen,
		testBaseURL,
		publishCreated,
		zap.NewNop(),
	)

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("duk", "test"))
	handlers.RegisterRoutes(api, route, create)

	return &testEnv{
		repo:    repo,
		objects: objects,
		fetcher: fetcher,
		gate:    g,
		route:   route,
		create:  create,
		api:     api,
		router:  router,
	}
}

func (e *testEnv) saveMapping(m *mapping.Mapping) {
	if err := e.repo.Save(context.Background(), m); err != nil {
		panic(err)
	}
}

// assertStatus checks the HTTP status carried by a huma error.
func assertStatus(t *testing.T, err error, want int) {
	t.Helper()

	var statusErr huma.StatusError

	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, want, statusErr.GetStatus())
}
