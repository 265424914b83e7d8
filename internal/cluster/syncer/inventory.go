package syncer

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/zenosslk/wazuh-api/internal/cluster"
	"github.com/zenosslk/wazuh-api/internal/utils"
)

// InventoryProvider yields the local file inventory for one pass.
type InventoryProvider interface {
	Files() (cluster.Inventory, error)
}

// InventoryFunc adapts a function to the InventoryProvider interface.
type InventoryFunc func() (cluster.Inventory, error)

func (f InventoryFunc) Files() (cluster.Inventory, error) { return f() }

const defaultWriteMode = "atomic"

// DirInventory builds the inventory by walking a directory tree.
// Record names are slash-separated paths relative to Root.
type DirInventory struct {
	Root string

	// Conditions are attached to every record so peers know which
	// predicates this node considers relevant.
	Conditions *cluster.DeclaredConditions
}

func NewDirInventory(root string, conditions *cluster.DeclaredConditions) *DirInventory {
	return &DirInventory{Root: root, Conditions: conditions}
}

// Open returns the content of one inventory entry. Callers validate
// the name against the inventory first.
func (d *DirInventory) Open(name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(d.Root, filepath.FromSlash(name)))
}

func (d *DirInventory) Files() (cluster.Inventory, error) {
	inv := cluster.Inventory{}

	err := filepath.WalkDir(d.Root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		// in-flight install leftovers are not inventory
		if strings.HasSuffix(path, TmpSuffix) {
			return nil
		}

		rel, err := filepath.Rel(d.Root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)

		info, err := entry.Info()
		if err != nil {
			return err
		}
		checksum, err := utils.FileHash(path)
		if err != nil {
			return err
		}

		owner, group := fileOwnership(info)
		inv[name] = &cluster.FileRecord{
			Name:       name,
			Checksum:   checksum,
			Size:       info.Size(),
			ModTime:    cluster.FormatMTime(info.ModTime()),
			Mode:       fmt.Sprintf("%04o", info.Mode().Perm()),
			Owner:      owner,
			Group:      group,
			WriteMode:  defaultWriteMode,
			Conditions: d.Conditions,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("inventory %q: %w", d.Root, err)
	}

	return inv, nil
}
