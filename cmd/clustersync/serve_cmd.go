package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zenosslk/wazuh-api/internal/cluster/server"
	"github.com/zenosslk/wazuh-api/internal/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose this node's identity and file inventory to peers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := clusterConfig()
		if err != nil {
			return err
		}

		dir, err := filesDir()
		if err != nil {
			return err
		}
		if !utils.DirExists(dir) {
			return fmt.Errorf("files directory %q does not exist", dir)
		}

		bind, _ := cmd.Flags().GetString("bind")
		certFile, _ := cmd.Flags().GetString("cert")
		keyFile, _ := cmd.Flags().GetString("key")

		srv := server.New(&server.Config{
			Addr:     bind,
			CertFile: certFile,
			KeyFile:  keyFile,
		}, cfg, localInventory(dir))

		return srv.Start(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringP("bind", "b", server.DefaultAddr, "address to bind the server")
	serveCmd.Flags().String("cert", "", "path to the certificate file")
	serveCmd.Flags().String("key", "", "path to the key file")
}
