package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zenosslk/wazuh-api/internal/cluster/api"
	"github.com/zenosslk/wazuh-api/internal/cluster/syncer"
)

var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "Probe every configured peer and report its status",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := clusterConfig()
		if err != nil {
			return err
		}

		s := syncer.New(cfg, &syncer.Options{
			Client:      peerClient(cfg),
			Concurrency: viper.GetInt("concurrency"),
		})
		peers := s.ListPeers(cmd.Context())

		for _, peer := range peers.Items {
			if peer.Status == api.StatusConnected {
				fmt.Printf("  %s %s (%s)\n", green(peer.Status), peer.Address, peer.Node)
			} else {
				fmt.Printf("  %s %s: %s\n", red(peer.Status), peer.Address, peer.Error.Message)
			}
		}
		fmt.Printf("%d peers\n", peers.TotalItems)
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print this node's cluster identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := clusterConfig()
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg.NodeInfo())
	},
}
