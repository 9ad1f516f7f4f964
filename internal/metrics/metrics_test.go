package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilRegistryIsSafe(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.SessionOpened()
		r.SessionClosed()
		r.CIPRequest("0x4C")
		r.CIPStatus("0x00")
		r.DiscoveryResponse()
		r.ObserveLatency("read_tag", 0.01)
	})
}

func TestRegistryCountsRequests(t *testing.T) {
	r, _ := New()
	r.CIPRequest("0x4C")
	r.CIPRequest("0x4C")

	assert.Equal(t, float64(2), testutil.ToFloat64(r.CIPRequestsByService.WithLabelValues("0x4C")))
}
