package syncer

import (
	"github.com/zenosslk/wazuh-api/internal/cluster"
)

// Condition is one named predicate a remote record can declare
// relevant for the overwrite decision.
type Condition string

const (
	ConditionDifferentChecksum Condition = "different_checksum"
	ConditionRemoteTimeHigher  Condition = "remote_time_higher"
	ConditionLargerFileSize    Condition = "larger_file_size"

	// ConditionMissing is synthetic: the file exists on the peer only.
	ConditionMissing Condition = "missing"
)

// conditionOrder fixes evaluation priority. Evaluation walks this
// slice and stops at the first declared condition that is false.
var conditionOrder = []Condition{
	ConditionDifferentChecksum,
	ConditionRemoteTimeHigher,
	ConditionLargerFileSize,
}

// ConditionResult is one evaluated condition, in evaluation order.
type ConditionResult struct {
	Condition Condition `json:"condition"`
	Value     bool      `json:"value"`
}

func declared(dc *cluster.DeclaredConditions, c Condition) bool {
	switch c {
	case ConditionDifferentChecksum:
		return dc.DifferentChecksum
	case ConditionRemoteTimeHigher:
		return dc.RemoteTimeHigher
	case ConditionLargerFileSize:
		return dc.LargerFileSize
	}
	return false
}

func evaluate(c Condition, local, remote *cluster.FileRecord) bool {
	switch c {
	case ConditionDifferentChecksum:
		return remote.Checksum != local.Checksum
	case ConditionRemoteTimeHigher:
		remoteTime, err := remote.ParseModTime()
		if err != nil {
			return false
		}
		localTime, err := local.ParseModTime()
		if err != nil {
			return false
		}
		return remoteTime.After(localTime)
	case ConditionLargerFileSize:
		return remote.Size > local.Size
	}
	return false
}

// Compare decides whether the remote copy of a shared file should
// replace the local one. Only conditions the remote record declares are
// evaluated, in fixed order, short-circuiting at the first false
// result. Zero declared conditions accept vacuously.
func Compare(local, remote *cluster.FileRecord, peer string) *SyncItem {
	// nil records never crash a pass: nothing to install means discard,
	// and a nil local is just a file we don't have yet
	if remote == nil {
		return &SyncItem{File: &cluster.FileRecord{}, Peer: peer, Decision: DecisionDiscard}
	}
	if local == nil {
		return MissingItem(remote, peer)
	}

	item := &SyncItem{
		File:     remote,
		Peer:     peer,
		Decision: DecisionAccept,
	}

	if remote.Conditions == nil {
		return item
	}

	for _, cond := range conditionOrder {
		if !declared(remote.Conditions, cond) {
			continue
		}
		value := evaluate(cond, local, remote)
		item.Checked = append(item.Checked, ConditionResult{Condition: cond, Value: value})
		if !value {
			item.Decision = DecisionDiscard
			break
		}
	}

	return item
}

// MissingItem accepts a file absent locally without any comparison.
func MissingItem(remote *cluster.FileRecord, peer string) *SyncItem {
	if remote == nil {
		return &SyncItem{File: &cluster.FileRecord{}, Peer: peer, Decision: DecisionDiscard}
	}
	return &SyncItem{
		File:     remote,
		Peer:     peer,
		Decision: DecisionAccept,
		Checked: []ConditionResult{
			{Condition: ConditionMissing, Value: true},
		},
	}
}
