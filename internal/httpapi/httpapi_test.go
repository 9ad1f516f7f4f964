package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/IamMikeHelsel/enip-scanner/internal/discovery"
)

type fakeDiscoverer struct {
	identities []discovery.Identity
	err        error
}

func (f fakeDiscoverer) Discover() ([]discovery.Identity, error) {
	return f.identities, f.err
}

func TestHealthzReturnsOK(t *testing.T) {
	srv := New("127.0.0.1:0", nil, nil, zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestMetricsAbsentWithoutRegistry(t *testing.T) {
	srv := New("127.0.0.1:0", nil, nil, zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCloseWithoutListenIsHarmless(t *testing.T) {
	srv := New("127.0.0.1:0", nil, fakeDiscoverer{}, zap.NewNop())
	require.NoError(t, srv.Close())
}
