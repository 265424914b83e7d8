package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zenosslk/wazuh-api/internal/cluster"
)

// FileSource is the inventory plus content access for downloads.
type FileSource interface {
	Files() (cluster.Inventory, error)
	Open(name string) (io.ReadCloser, error)
}

type handler struct {
	cfg    *cluster.Config
	source FileSource
}

func newHandler(cfg *cluster.Config, source FileSource) *handler {
	return &handler{cfg: cfg, source: source}
}

// NodeInfo answers the peer identity probe.
func (h *handler) NodeInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data": h.cfg.NodeInfo(),
	})
}

// Files serves the inventory, or one file's raw content when the
// download query param names an inventory entry. The inventory is the
// allowlist: names outside it are never opened.
func (h *handler) Files(c *gin.Context) {
	inventory, err := h.source.Files()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	name, download := c.GetQuery("download")
	if !download {
		c.JSON(http.StatusOK, gin.H{
			"data": inventory,
		})
		return
	}

	if _, ok := inventory[name]; !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "no such file: " + name,
		})
		return
	}

	file, err := h.source.Open(name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.Data(http.StatusOK, "text/plain; charset=utf-8", content)
}
