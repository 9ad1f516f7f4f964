package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/IamMikeHelsel/enip-scanner/internal/config"
	"github.com/IamMikeHelsel/enip-scanner/internal/scanerr"
)

func newTestScanner() *Scanner {
	cfg := config.Config{DefaultTimeoutMS: 50, MaxDevicesPerDiscovery: 4}
	return New(cfg, zap.NewNop(), nil)
}

func TestOperationsFailBeforeInit(t *testing.T) {
	s := newTestScanner()
	_, err := s.ReadAssembly("127.0.0.1:1", 1)
	require.Error(t, err)
	var cipErr *scanerr.Error
	require.ErrorAs(t, err, &cipErr)
	assert.Equal(t, scanerr.KindNotInitialized, cipErr.Kind)
}

func TestInitAllowsOperationsShutdownRevokes(t *testing.T) {
	s := newTestScanner()
	s.Init()

	// No listener behind this address: the call reaches past the
	// NotInitialized gate and fails as a transport error instead.
	_, err := s.ReadAssembly("127.0.0.1:1", 1)
	require.Error(t, err)
	var cipErr *scanerr.Error
	require.ErrorAs(t, err, &cipErr)
	assert.Equal(t, scanerr.KindTransportError, cipErr.Kind)

	s.Shutdown()
	_, err = s.ReadAssembly("127.0.0.1:1", 1)
	require.Error(t, err)
	require.ErrorAs(t, err, &cipErr)
	assert.Equal(t, scanerr.KindNotInitialized, cipErr.Kind)
}

func TestSetRS022DirectTogglesAddressing(t *testing.T) {
	s := newTestScanner()
	s.Init()
	assert.False(t, s.rs022Direct)
	s.SetRS022Direct(true)
	assert.True(t, s.rs022Direct)
}
