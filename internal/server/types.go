package server

import (
	"net/netip"

	"github.com/wgmesh/wgmesh/internal/render"
	"github.com/wgmesh/wgmesh/pkg/mesh"
)

// Request/response types of the coordination API. The connect response body
// is the updated mesh.Host itself.

// DisconnectRequest asks for the host at the given mesh address to be
// removed.
type DisconnectRequest struct {
	Address netip.Addr `json:"address"`
}

// RemoveHostRequest is the admin request to remove a host by name.
type RemoveHostRequest struct {
	Name string `json:"name"`
}

// AckResponse acknowledges an idempotent operation.
type AckResponse struct {
	Status string `json:"status"`
}

// DiscoverResponse carries reachability hints for the caller: the address the
// coordinator observed it on and the coordinator's own advertised endpoint.
type DiscoverResponse struct {
	ObservedAddr string `json:"observed_addr"`
	Endpoint     string `json:"endpoint,omitempty"`
}

// EventsResponse lists events most-recent-first.
type EventsResponse struct {
	Events []mesh.Event `json:"events"`
}

// RenderResponse carries the rendered peer configuration blocks.
type RenderResponse struct {
	Peers []render.PeerBlock `json:"peers"`
}

// ErrorResponse is the error envelope of every non-2xx reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
