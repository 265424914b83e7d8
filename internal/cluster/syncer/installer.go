package syncer

import (
	"fmt"
	"os"
	"os/user"
	"strconv"
	"time"

	"github.com/zenosslk/wazuh-api/internal/cluster"
	"github.com/zenosslk/wazuh-api/internal/utils"
)

const (
	// TmpSuffix marks in-flight installs; the rename off this suffix is
	// the only mutation readers of the target path ever observe.
	TmpSuffix = ".tmp.cluster"

	// DefaultOwner and DefaultGroup are the pinned local service
	// identity. Remote-declared owner/group are never applied.
	DefaultOwner = "ossec"
	DefaultGroup = "ossec"

	// DefaultMode: owner/group read-write, no execute, no world access.
	DefaultMode os.FileMode = 0o660
)

// InstallError is any failed install step. File-scoped, never fatal to
// the pass.
type InstallError struct {
	Path string
	Op   string
	Err  error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("install %q: %s: %v", e.Path, e.Op, e.Err)
}

func (e *InstallError) Unwrap() error { return e.Err }

// Installer writes downloaded files to disk atomically with a fixed
// ownership and permission policy.
type Installer struct {
	uid  int
	gid  int
	mode os.FileMode
}

// NewInstaller resolves the service identity once. Owner and group are
// account names, or numeric ids as a fallback. It fails when neither
// resolves on this system.
func NewInstaller(owner, group string, mode os.FileMode) (*Installer, error) {
	uid, err := resolveID(owner, func(name string) (string, error) {
		u, err := user.Lookup(name)
		if err != nil {
			return "", err
		}
		return u.Uid, nil
	})
	if err != nil {
		return nil, fmt.Errorf("installer: owner %q: %w", owner, err)
	}

	gid, err := resolveID(group, func(name string) (string, error) {
		g, err := user.LookupGroup(name)
		if err != nil {
			return "", err
		}
		return g.Gid, nil
	})
	if err != nil {
		return nil, fmt.Errorf("installer: group %q: %w", group, err)
	}

	if mode == 0 {
		mode = DefaultMode
	}
	return &Installer{uid: uid, gid: gid, mode: mode}, nil
}

func resolveID(name string, lookup func(string) (string, error)) (int, error) {
	if id, err := lookup(name); err == nil {
		return strconv.Atoi(id)
	} else if n, numErr := strconv.Atoi(name); numErr == nil {
		return n, nil
	} else {
		return 0, err
	}
}

// Install writes content to a temp sibling of targetPath, applies the
// pinned identity, mode and the remote-supplied mtime, then renames
// into place. On any failure the temp file is removed and targetPath is
// left untouched.
func (ins *Installer) Install(targetPath string, content []byte, mtime string) error {
	mtimeParsed, err := time.ParseInLocation(cluster.MTimeLayout, mtime, time.UTC)
	if err != nil {
		return &InstallError{Path: targetPath, Op: "parse mtime", Err: err}
	}

	if err := utils.EnsureParent(targetPath); err != nil {
		return &InstallError{Path: targetPath, Op: "mkdir", Err: err}
	}

	tmpPath := targetPath + TmpSuffix
	if err := os.WriteFile(tmpPath, content, ins.mode); err != nil {
		return ins.fail(tmpPath, targetPath, "write", err)
	}
	if err := os.Chown(tmpPath, ins.uid, ins.gid); err != nil {
		return ins.fail(tmpPath, targetPath, "chown", err)
	}
	// WriteFile mode is masked by umask, re-apply explicitly
	if err := os.Chmod(tmpPath, ins.mode); err != nil {
		return ins.fail(tmpPath, targetPath, "chmod", err)
	}
	if err := os.Chtimes(tmpPath, mtimeParsed, mtimeParsed); err != nil {
		return ins.fail(tmpPath, targetPath, "chtimes", err)
	}
	if err := os.Rename(tmpPath, targetPath); err != nil {
		return ins.fail(tmpPath, targetPath, "rename", err)
	}
	return nil
}

func (ins *Installer) fail(tmpPath, targetPath, op string, err error) error {
	os.Remove(tmpPath)
	return &InstallError{Path: targetPath, Op: op, Err: err}
}
