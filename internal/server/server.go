// Package server is the coordination façade of the mesh: the HTTP API that
// mutates the registry and event log under a single exclusive lock and hands
// out snapshots for rendering and persistence.
package server

import (
	"context"
	"errors"
	"net/http"
	"net/netip"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wgmesh/wgmesh/internal/config"
	"github.com/wgmesh/wgmesh/internal/eventlog"
	"github.com/wgmesh/wgmesh/internal/registry"
	"github.com/wgmesh/wgmesh/internal/telemetry"
	"github.com/wgmesh/wgmesh/pkg/mesh"
)

// errOutsideSubnet rejects a mesh address not drawn from the network subnet.
var errOutsideSubnet = errors.New("mesh address outside the mesh subnet")

// Server owns the authoritative (registry, event log) pair. Every operation
// acquires mu for its full duration; persistence happens outside the critical
// section, serialized by persistMu, on a snapshot taken just before writing.
type Server struct {
	cfg        *config.Config
	log        *zap.Logger
	middleware *Middleware

	mu       sync.Mutex
	registry *registry.Registry
	events   *eventlog.Log

	persistMu sync.Mutex

	store mesh.Store
	now   func() time.Time

	httpServer *http.Server
}

// New creates a coordination server over the given network state.
func New(cfg *config.Config, network *mesh.Network, st mesh.Store, log *zap.Logger) *Server {
	var auth *JWTAuth
	if cfg.AdminSecret != "" {
		auth = NewJWTAuth(cfg.AdminSecret)
	}

	s := &Server{
		cfg:        cfg,
		log:        log,
		middleware: NewMiddleware(log, auth),
		registry:   registry.FromNetwork(network),
		events:     eventlog.New(cfg.EventLogCapacity),
		store:      st,
		now:        func() time.Time { return time.Now().UTC() },
	}
	telemetry.RegisteredHosts.Set(float64(s.registry.Len()))

	s.httpServer = &http.Server{
		Addr:           cfg.Bind,
		Handler:        s.routes(),
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	return s
}

// Start serves the API until Stop is called.
func (s *Server) Start() error {
	s.log.Info("coordination server listening", zap.String("bind", s.cfg.Bind))
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	handle := func(pattern, op string, h http.HandlerFunc) {
		mux.Handle(pattern, telemetry.Instrument(op,
			s.middleware.Recovery(s.middleware.Logging(h))))
	}

	handle("GET /{$}", "info", s.handleInfo)
	handle("GET /ping", "ping", s.handlePing)
	handle("POST /connect", "connect", s.handleConnect)
	handle("POST /disconnect", "disconnect", s.handleDisconnect)
	handle("GET /discover", "discover", s.handleDiscover)
	handle("GET /events", "events", s.handleEvents)
	handle("GET /render", "render", s.handleRender)
	handle("POST /admin/remove-host", "admin_remove_host",
		s.middleware.AdminRequired(s.handleRemoveHost))

	mux.Handle("GET /metrics", telemetry.MetricsHandler())

	return mux
}

// connect runs the locked part of the connect operation: conflict checks,
// event append and upsert. It returns the updated host.
func (s *Server) connect(host mesh.Host) (mesh.Host, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.registry.Network().Subnet.Contains(host.MeshAddress) {
		return mesh.Host{}, errOutsideSubnet
	}
	// Re-registration is an in-place overwrite; a different name claiming a
	// registered address, or a registered name claiming a different address,
	// is a conflict.
	if existing, ok := s.registry.LookupByAddress(host.MeshAddress); ok && existing.Name != host.Name {
		return mesh.Host{}, &registry.ConflictError{Field: "address", Value: host.MeshAddress.String()}
	}
	if existing, ok := s.registry.LookupByName(host.Name); ok && existing.MeshAddress != host.MeshAddress {
		return mesh.Host{}, &registry.ConflictError{Field: "name", Value: host.Name}
	}

	now := s.now()
	ev, err := mesh.NewConnect(host.Clone(), now)
	if err != nil {
		return mesh.Host{}, err
	}
	s.events.Record(ev)
	telemetry.EventsRecorded.WithLabelValues(ev.Payload.Kind()).Inc()

	updated := s.registry.UpsertOnConnect(host, now)
	telemetry.RegisteredHosts.Set(float64(s.registry.Len()))
	return updated, nil
}

// disconnect runs the locked part of the disconnect operation. A false
// return means the address was absent and nothing changed.
func (s *Server) disconnect(address netip.Addr) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	host, ok := s.registry.LookupByAddress(address)
	if !ok {
		return false, nil
	}
	ev, err := mesh.NewDisconnect(host, s.now())
	if err != nil {
		return false, err
	}
	s.events.Record(ev)
	telemetry.EventsRecorded.WithLabelValues(ev.Payload.Kind()).Inc()

	s.registry.RemoveByAddress(address)
	telemetry.RegisteredHosts.Set(float64(s.registry.Len()))
	return true, nil
}

// removeHost removes an entry by name. Removal of an absent name is a no-op.
func (s *Server) removeHost(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.registry.Len()
	s.registry.RemoveByName(name)
	if s.registry.Len() == before {
		return false
	}
	telemetry.RegisteredHosts.Set(float64(s.registry.Len()))
	return true
}

// snapshot returns a copy of the network with every private key redacted,
// the view served to clients. Keys never leave the host that generated them
// through the API.
func (s *Server) snapshot() *mesh.Network {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.registry.Snapshot()
	snap.Local.PrivateKey = ""
	for _, h := range snap.Remotes {
		h.PrivateKey = ""
	}
	return snap
}

// listEvents returns the event log contents, most-recent-first.
func (s *Server) listEvents() []mesh.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events.List()
}
