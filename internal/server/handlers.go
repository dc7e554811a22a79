package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/wgmesh/wgmesh/internal/registry"
	"github.com/wgmesh/wgmesh/internal/render"
	"github.com/wgmesh/wgmesh/pkg/mesh"
)

// handleConnect registers (or re-registers) the submitted host and returns
// the updated record with the server-stamped LastSeen.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var host mesh.Host
	if err := json.NewDecoder(r.Body).Decode(&host); err != nil {
		s.writeError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if host.Name == "" {
		s.writeError(w, "host name is required", http.StatusBadRequest)
		return
	}
	if !host.MeshAddress.IsValid() {
		s.writeError(w, "mesh address is required", http.StatusBadRequest)
		return
	}
	if host.PublicKey == "" {
		s.writeError(w, "public key is required", http.StatusBadRequest)
		return
	}
	// The submitted LastSeen is ignored; only the coordinator stamps it.
	host.LastSeen = nil

	updated, err := s.connect(host)
	if err != nil {
		var conflict *registry.ConflictError
		switch {
		case errors.As(err, &conflict):
			s.writeError(w, conflict.Error(), http.StatusConflict)
		case errors.Is(err, errOutsideSubnet):
			s.writeError(w, err.Error(), http.StatusBadRequest)
		default:
			s.log.Error("connect failed", zap.Error(err))
			s.writeError(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	if err := s.persist(); err != nil {
		s.writeError(w, "network state not persisted: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.log.Info("host connected",
		zap.String("name", updated.Name),
		zap.String("address", updated.MeshAddress.String()),
	)
	s.writeJSON(w, updated, http.StatusOK)
}

// handleDisconnect removes the host at the submitted address. Disconnecting
// an absent address is deliberately a no-op, not an error.
func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	var req DisconnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if !req.Address.IsValid() {
		s.writeError(w, "address is required", http.StatusBadRequest)
		return
	}

	removed, err := s.disconnect(req.Address)
	if err != nil {
		s.log.Error("disconnect failed", zap.Error(err))
		s.writeError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if removed {
		if err := s.persist(); err != nil {
			s.writeError(w, "network state not persisted: "+err.Error(), http.StatusInternalServerError)
			return
		}
		s.log.Info("host disconnected", zap.String("address", req.Address.String()))
	}
	s.writeJSON(w, AckResponse{Status: "ok"}, http.StatusOK)
}

// handleInfo serves the current network snapshot.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.snapshot(), http.StatusOK)
}

// handleDiscover serves reachability hints.
func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, DiscoverResponse{
		ObservedAddr: r.RemoteAddr,
		Endpoint:     s.cfg.AdvertiseEndpoint,
	}, http.StatusOK)
}

// handleEvents serves the event log, most-recent-first.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events := s.listEvents()
	if events == nil {
		events = []mesh.Event{}
	}
	s.writeJSON(w, EventsResponse{Events: events}, http.StatusOK)
}

// handleRender serves the peer configuration compiled from the current
// snapshot.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	blocks, err := render.Render(s.snapshot())
	if err != nil {
		var incomplete *render.IncompleteHostError
		if errors.As(err, &incomplete) {
			s.writeError(w, incomplete.Error(), http.StatusInternalServerError)
			return
		}
		s.writeError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if blocks == nil {
		blocks = []render.PeerBlock{}
	}
	s.writeJSON(w, RenderResponse{Peers: blocks}, http.StatusOK)
}

// handlePing is the liveness check.
func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "pong")
}

// handleRemoveHost is the admin removal by name.
func (s *Server) handleRemoveHost(w http.ResponseWriter, r *http.Request) {
	var req RemoveHostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		s.writeError(w, "host name is required", http.StatusBadRequest)
		return
	}

	if s.removeHost(req.Name) {
		if err := s.persist(); err != nil {
			s.writeError(w, "network state not persisted: "+err.Error(), http.StatusInternalServerError)
			return
		}
		s.log.Info("host removed", zap.String("name", req.Name))
	}
	s.writeJSON(w, AckResponse{Status: "ok"}, http.StatusOK)
}

// persist writes the current network state. Saves are serialized and each
// one snapshots the registry just before writing, so a save delayed past a
// later mutation can never put stale state on disk. On failure the in-memory
// state stays authoritative until the next successful save.
func (s *Server) persist() error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	snap := s.registry.Snapshot()
	s.mu.Unlock()

	if err := s.store.Save(snap); err != nil {
		s.log.Error("save network state", zap.Error(err))
		return err
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
		Code:    code,
	})
}
