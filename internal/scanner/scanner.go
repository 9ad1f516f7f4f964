// Package scanner ties the protocol facades (tags, assembly, motoman,
// discovery) into a single process-wide object with an explicit
// init/shutdown lifecycle, replacing the distilled spec's bare
// "process-wide scanner object" with a mutex-guarded struct (§4.13,
// §9 redesign notes).
package scanner

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/IamMikeHelsel/enip-scanner/internal/assembly"
	"github.com/IamMikeHelsel/enip-scanner/internal/cip/types"
	"github.com/IamMikeHelsel/enip-scanner/internal/config"
	"github.com/IamMikeHelsel/enip-scanner/internal/discovery"
	"github.com/IamMikeHelsel/enip-scanner/internal/metrics"
	"github.com/IamMikeHelsel/enip-scanner/internal/motoman"
	"github.com/IamMikeHelsel/enip-scanner/internal/scanerr"
	"github.com/IamMikeHelsel/enip-scanner/internal/tags"
)

// Scanner is the caller-facing entry point. It owns no live network
// connection: every operation opens, uses, and closes its own socket
// per §4.12/§5. Its mutable state is limited to the initialized flag
// and the RS022 addressing mode, both guarded by mu.
type Scanner struct {
	cfg    config.Config
	logger *zap.Logger
	health *healthRegistry
	mx     *metrics.Registry

	mu          sync.Mutex
	initialized bool
	rs022Direct bool
}

// New constructs an unstarted Scanner. Call Init before issuing any
// operation.
func New(cfg config.Config, logger *zap.Logger, mx *metrics.Registry) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{
		cfg:         cfg,
		logger:      logger,
		health:      newHealthRegistry(),
		mx:          mx,
		rs022Direct: cfg.RS022InstanceDirect,
	}
}

// Init marks the scanner ready to serve operations.
func (s *Scanner) Init() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = true
}

// Shutdown marks the scanner unready. Further operations return
// NotInitialized until Init is called again.
func (s *Scanner) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = false
}

// SetRS022Direct toggles whether Motoman variable/position instance
// addressing treats the caller's number as the CIP instance directly
// (true) or applies the RS022 "+1" offset (false, the default; §4.10,
// §8 scenario 6).
func (s *Scanner) SetRS022Direct(direct bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rs022Direct = direct
}

// ready asserts the scanner is initialized and returns the current
// RS022 addressing mode, both read under a brief mutex hold that never
// spans network I/O.
func (s *Scanner) ready() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return false, scanerr.NewError(scanerr.KindNotInitialized, "scanner is not initialized")
	}
	return s.rs022Direct, nil
}

func (s *Scanner) timeout() time.Duration {
	return s.cfg.DefaultTimeout()
}

func (s *Scanner) observe(operation string, start time.Time) {
	s.mx.ObserveLatency(operation, time.Since(start).Seconds())
}

// ReadTag reads a symbolically-addressed controller tag (§4.6).
func (s *Scanner) ReadTag(endpoint, tagName string) (tags.Value, error) {
	if _, err := s.ready(); err != nil {
		return tags.Value{}, err
	}
	defer s.observe("read_tag", time.Now())
	s.mx.CIPRequest("0x4C")
	return tags.Read(endpoint, tagName, s.timeout(), s.logger)
}

// WriteTag writes a symbolically-addressed controller tag (§4.6). The
// caller states the CIP elementary type explicitly; the facade does
// not infer it (§4.6, §4.9).
func (s *Scanner) WriteTag(endpoint, tagName string, valueType types.Code, value []byte) error {
	if _, err := s.ready(); err != nil {
		return err
	}
	defer s.observe("write_tag", time.Now())
	s.mx.CIPRequest("0x4D")
	return tags.Write(endpoint, tagName, valueType, value, s.timeout(), s.logger)
}

// ReadAssembly reads CIP Assembly Object instance data (attribute 3).
func (s *Scanner) ReadAssembly(endpoint string, instance uint32) ([]byte, error) {
	if _, err := s.ready(); err != nil {
		return nil, err
	}
	defer s.observe("read_assembly", time.Now())
	s.mx.CIPRequest("0x0E")
	return assembly.Read(endpoint, instance, s.timeout(), s.logger)
}

// WriteAssembly writes CIP Assembly Object instance data.
func (s *Scanner) WriteAssembly(endpoint string, instance uint32, value []byte) error {
	if _, err := s.ready(); err != nil {
		return err
	}
	defer s.observe("write_assembly", time.Now())
	s.mx.CIPRequest("0x10")
	return assembly.Write(endpoint, instance, value, s.timeout(), s.logger)
}

// DiscoverAssemblies scans an instance range on one endpoint, gating
// each probe through the endpoint's health breaker so a dead device is
// not hammered across the whole range (§4.14).
func (s *Scanner) DiscoverAssemblies(endpoint string, first, last uint32) []assembly.DiscoveredInstance {
	if _, err := s.ready(); err != nil {
		return nil
	}
	breaker := s.health.breakerFor(endpoint)
	var out []assembly.DiscoveredInstance
	for instance := first; instance <= last; instance++ {
		result, err := breaker.Execute(func() (interface{}, error) {
			data, err := assembly.Read(endpoint, instance, s.timeout(), s.logger)
			if err != nil {
				return nil, err
			}
			if len(data) == 0 {
				return nil, scanerr.NewError(scanerr.KindProtocolError, "empty assembly data")
			}
			return data, nil
		})
		if err != nil {
			continue
		}
		out = append(out, assembly.DiscoveredInstance{Instance: instance, Data: result.([]byte)})
	}
	return out
}

// Discover broadcasts ListIdentity and returns the devices that
// answered within the default operation timeout, which serves as the
// gather window (§4.7).
func (s *Scanner) Discover() ([]discovery.Identity, error) {
	if _, err := s.ready(); err != nil {
		return nil, err
	}
	defer s.observe("discover", time.Now())
	identities, err := discovery.Discover(s.timeout(), s.cfg.MaxDevicesPerDiscovery, s.logger)
	if err == nil {
		for range identities {
			s.mx.DiscoveryResponse()
		}
	}
	return identities, err
}

// ReadMotomanAlarm reads one Motoman alarm record through the
// endpoint's health breaker, so a sequential scan over many alarm
// instances on a dead controller fails fast after the threshold trips
// (§4.14).
func (s *Scanner) ReadMotomanAlarm(endpoint string, class, instance uint32) (motoman.Alarm, error) {
	if _, err := s.ready(); err != nil {
		return motoman.Alarm{}, err
	}
	defer s.observe("motoman_read_alarm", time.Now())
	return motoman.ReadAlarmGated(s.health.breakerFor(endpoint), endpoint, class, instance, s.timeout(), s.logger)
}

// ReadMotomanVariable reads a Motoman Register/Byte/Int/DoubleInt/Real
// variable, applying the scanner's current RS022 addressing mode.
func (s *Scanner) ReadMotomanVariable(endpoint string, class, number uint32) ([]byte, error) {
	rs022, err := s.ready()
	if err != nil {
		return nil, err
	}
	defer s.observe("motoman_read_variable", time.Now())
	return motoman.ReadVariable(endpoint, class, number, rs022, s.timeout(), s.logger)
}

// WriteMotomanVariable writes a Motoman Register/Byte/Int/DoubleInt/Real
// variable, applying the scanner's current RS022 addressing mode.
func (s *Scanner) WriteMotomanVariable(endpoint string, class, number uint32, value []byte) error {
	rs022, err := s.ready()
	if err != nil {
		return err
	}
	defer s.observe("motoman_write_variable", time.Now())
	return motoman.WriteVariable(endpoint, class, number, rs022, value, s.timeout(), s.logger)
}

// ReadMotomanAxisArray reads a control group's axis array with the
// short-axis tolerance applied (§4.10), through the endpoint's health
// breaker (§4.14).
func (s *Scanner) ReadMotomanAxisArray(endpoint string, class, controlGroup uint32) (motoman.AxisReading, error) {
	if _, err := s.ready(); err != nil {
		return motoman.AxisReading{}, err
	}
	defer s.observe("motoman_read_axis_array", time.Now())
	result, err := s.health.breakerFor(endpoint).Execute(func() (interface{}, error) {
		return motoman.ReadAxisArray(endpoint, class, controlGroup, s.timeout(), s.logger)
	})
	if err != nil {
		return motoman.AxisReading{}, err
	}
	return result.(motoman.AxisReading), nil
}

// ReadMotomanStatus reads a control group's status record.
func (s *Scanner) ReadMotomanStatus(endpoint string, controlGroup uint32) (motoman.Status, error) {
	if _, err := s.ready(); err != nil {
		return motoman.Status{}, err
	}
	defer s.observe("motoman_read_status", time.Now())
	return motoman.ReadStatus(endpoint, controlGroup, s.timeout(), s.logger)
}

// ReadMotomanJobInfo reads a control group's current job name/line/step.
func (s *Scanner) ReadMotomanJobInfo(endpoint string, controlGroup uint32) (motoman.JobInfo, error) {
	if _, err := s.ready(); err != nil {
		return motoman.JobInfo{}, err
	}
	defer s.observe("motoman_read_job_info", time.Now())
	return motoman.ReadJobInfo(endpoint, controlGroup, s.timeout(), s.logger)
}
