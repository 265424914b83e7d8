package cluster

import (
	"time"
)

// MTimeLayout is the wire format for file timestamps, always UTC.
const MTimeLayout = "2006-01-02 15:04:05"

// DeclaredConditions marks which predicates the owning node considers
// relevant when a peer decides whether to take its copy of a file.
type DeclaredConditions struct {
	DifferentChecksum bool `json:"different_checksum"`
	RemoteTimeHigher  bool `json:"remote_time_higher"`
	LargerFileSize    bool `json:"larger_file_size"`
}

// FileRecord is one inventory entry. Conditions are only present on
// records served to peers; local records leave it nil.
type FileRecord struct {
	Name       string              `json:"-"`
	Checksum   string              `json:"checksum"`
	Size       int64               `json:"size"`
	ModTime    string              `json:"modification_time"`
	Mode       string              `json:"mode"`
	Owner      string              `json:"user"`
	Group      string              `json:"group"`
	WriteMode  string              `json:"write_mode"`
	Conditions *DeclaredConditions `json:"conditions,omitempty"`
}

// ParseModTime interprets the record's modification time in UTC.
func (f *FileRecord) ParseModTime() (time.Time, error) {
	return time.ParseInLocation(MTimeLayout, f.ModTime, time.UTC)
}

// Inventory is an immutable snapshot of one node's file set,
// keyed by file name.
type Inventory map[string]*FileRecord

// Names returns the keys of the inventory in no particular order.
func (inv Inventory) Names() []string {
	names := make([]string, 0, len(inv))
	for name := range inv {
		names = append(names, name)
	}
	return names
}

// FormatMTime renders a timestamp in the wire format.
func FormatMTime(t time.Time) string {
	return t.UTC().Format(MTimeLayout)
}
