package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/BaSui01/shopagent/agent"
	"github.com/BaSui01/shopagent/api/handlers"
	"github.com/BaSui01/shopagent/config"
	"github.com/BaSui01/shopagent/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubRunner struct {
	lastToken string
}

func (s *stubRunner) Run(_ context.Context, initial agent.State) (*agent.Result, error) {
	s.lastToken = initial.Token
	state := initial
	state.Messages = []string{"hello"}
	return &agent.Result{ExecutionID: "run-1", State: state}, nil
}

type stubSearcher struct{}

func (stubSearcher) Search(_ context.Context, query string) (*search.Result, error) {
	return &search.Result{Message: "found for " + query}, nil
}

// newTestServer 只装配 handlers，不连接任何外部依赖
func newTestServer(t *testing.T, cfg *config.Config, ready error) (*Server, *stubRunner) {
	t.Helper()
	runner := &stubRunner{}
	s := NewServer(cfg, zap.NewNop())
	s.chatHandler = handlers.NewChatHandler(runner, zap.NewNop())
	s.searchHandler = handlers.NewSearchHandler(stubSearcher{}, 0, zap.NewNop())
	s.healthHandler = handlers.NewHealthHandler("test", zap.NewNop())
	s.healthHandler.RegisterCheck(handlers.NewPingCheck("mongo", func(context.Context) error { return ready }))
	return s, runner
}

func TestServer_Routes(t *testing.T) {
	s, runner := newTestServer(t, config.DefaultConfig(), nil)
	mux := s.routes()

	t.Run("chat", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, routeChat, strings.NewReader(`{"query":"hi"}`))
		r.Header.Set("Content-Type", "application/json")
		r.Header.Set("Authorization", "Bearer tok")
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, []any{"hello"}, body["messages"])
		assert.Equal(t, "tok", runner.lastToken)
	})

	t.Run("search", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, routeSearch, strings.NewReader(`{"query":"phones"}`))
		r.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "found for phones")
	})

	t.Run("health", func(t *testing.T) {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, routeHealth, nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, routeChat, nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})

	t.Run("runs not registered without audit", func(t *testing.T) {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, routeRuns, nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestServer_ReadyReportsFailingDependency(t *testing.T) {
	s, _ := newTestServer(t, config.DefaultConfig(), errors.New("no primary"))

	w := httptest.NewRecorder()
	s.routes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, routeReady, nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "no primary")
}

func TestServer_ShutdownWithoutStart(t *testing.T) {
	s := NewServer(config.DefaultConfig(), nil)
	assert.NotPanics(t, func() {
		s.Shutdown()
		s.Shutdown()
	})
}
