//go:build !unix

package syncer

import (
	"io/fs"
)

func fileOwnership(info fs.FileInfo) (string, string) {
	return "", ""
}
