package syncer

import (
	"github.com/zenosslk/wazuh-api/internal/cluster"
)

// Decision is the comparator's terminal verdict for one file.
type Decision string

const (
	DecisionAccept  Decision = "accept"
	DecisionDiscard Decision = "discard"
)

// SyncItem is one reconciliation outcome: the remote record, the peer
// it came from, the conditions actually evaluated, and whether the
// accepted file was installed.
type SyncItem struct {
	File     *cluster.FileRecord `json:"file"`
	Peer     string              `json:"node"`
	Checked  []ConditionResult   `json:"checked_conditions"`
	Decision Decision            `json:"decision"`
	Applied  bool                `json:"updated"`
}

// SyncError records a peer-level (Item nil) or file-level failure.
// Code carries the transport error code when the failure was a request.
type SyncError struct {
	Peer    string    `json:"node,omitempty"`
	Item    *SyncItem `json:"item,omitempty"`
	Code    int       `json:"code,omitempty"`
	Message string    `json:"message"`
}

// SyncReport is the terminal output of one pass. Every item that
// reached a decision lands in exactly one of the three sequences.
type SyncReport struct {
	ID        string       `json:"id"`
	Discarded []*SyncItem  `json:"discard"`
	Errors    []*SyncError `json:"error"`
	Updated   []*SyncItem  `json:"updated"`
}
