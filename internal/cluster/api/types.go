package api

// Every peer endpoint wraps its payload in a data envelope.
type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

// NodeIdentity is a peer's answer to the identity probe.
type NodeIdentity struct {
	Node    string `json:"node"`
	Cluster string `json:"cluster"`
}

const (
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
)

// PeerStatus is one row of the peer enumeration: exactly one per
// configured peer, in configuration order.
type PeerStatus struct {
	Address string          `json:"address"`
	Node    string          `json:"node,omitempty"`
	Status  string          `json:"status"`
	Error   *TransportError `json:"error,omitempty"`
}

// PeerList is the result of enumerating all configured peers.
type PeerList struct {
	Items      []*PeerStatus `json:"items"`
	TotalItems int           `json:"totalItems"`
}
