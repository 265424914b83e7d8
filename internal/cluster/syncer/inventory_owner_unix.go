//go:build unix

package syncer

import (
	"io/fs"
	"os/user"
	"strconv"
	"syscall"
)

// fileOwnership resolves owner and group names from the stat data.
// Unresolvable ids fall back to their numeric form.
func fileOwnership(info fs.FileInfo) (string, string) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return "", ""
	}

	owner := strconv.FormatUint(uint64(st.Uid), 10)
	if u, err := user.LookupId(owner); err == nil {
		owner = u.Username
	}

	group := strconv.FormatUint(uint64(st.Gid), 10)
	if g, err := user.LookupGroupId(group); err == nil {
		group = g.Name
	}

	return owner, group
}
