// Package httpapi is the scanner's optional embedded HTTP surface
// (§4.15, §6.6): liveness, a Prometheus scrape endpoint, and a
// websocket stream of discovery results. Nothing in internal/scanner
// or below imports this package; it is wired in only by cmd/scanner
// when the caller opts in.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/IamMikeHelsel/enip-scanner/internal/discovery"
)

// Discoverer is the subset of *scanner.Scanner the HTTP surface needs;
// declared locally so this package never imports internal/scanner.
type Discoverer interface {
	Discover() ([]discovery.Identity, error)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server bundles the optional HTTP handlers behind a *http.Server.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// New builds the handler mux. promReg may be nil, in which case
// /metrics responds 404; scanner may be nil, in which case
// /ws/discovery responds 404.
func New(addr string, promReg *prometheus.Registry, scanner Discoverer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthzHandler)
	if promReg != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	}
	if scanner != nil {
		mux.HandleFunc("/ws/discovery", discoveryWSHandler(scanner, logger))
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// ListenAndServe blocks serving the configured address.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Close shuts the HTTP surface down.
func (s *Server) Close() error {
	return s.httpServer.Close()
}

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok")) //nolint:errcheck
}

// discoveryWSHandler runs one Discover call and streams each resulting
// identity record to the websocket client as a JSON object, closing
// the connection once the scan completes.
func discoveryWSHandler(scanner Discoverer, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()

		identities, err := scanner.Discover()
		if err != nil {
			conn.WriteJSON(map[string]string{"error": err.Error()}) //nolint:errcheck
			return
		}
		for _, identity := range identities {
			payload, err := json.Marshal(identity)
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}
}
