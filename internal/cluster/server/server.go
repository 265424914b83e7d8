package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/zenosslk/wazuh-api/internal/cluster"
)

const DefaultAddr = ":55000"

type Config struct {
	Addr     string
	CertFile string
	KeyFile  string
}

// Server exposes this node's identity and file inventory to its peers.
type Server struct {
	config *Config
	server *http.Server
}

func New(config *Config, clusterCfg *cluster.Config, source FileSource) *Server {
	if config.Addr == "" {
		config.Addr = DefaultAddr
	}

	return &Server{
		config: config,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: SetupRoutes(clusterCfg, source),
		},
	}
}

// Start serves until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		slog.Info("http server start", "addr", s.config.Addr, "tls", s.config.CertFile != "")
		var err error
		if s.config.CertFile != "" && s.config.KeyFile != "" {
			err = s.server.ListenAndServeTLS(s.config.CertFile, s.config.KeyFile)
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("http server shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
