package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zenosslk/wazuh-api/internal/cluster"
	"github.com/zenosslk/wazuh-api/internal/utils"
	"github.com/zenosslk/wazuh-api/internal/version"
)

var (
	home, _           = os.UserHomeDir()
	defaultConfigPath = filepath.Join(home, ".clustersync", "config.json")
	defaultFilesDir   = filepath.Join(home, ".clustersync", "files")
)

var rootCmd = &cobra.Command{
	Use:           "clustersync",
	Short:         "Reconciles this node's file set against its cluster peers",
	Version:       version.Detailed(),
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().SortFlags = false
	rootCmd.PersistentFlags().StringP("config", "c", defaultConfigPath, "cluster config file")
	rootCmd.PersistentFlags().StringP("dir", "d", defaultFilesDir, "synchronized files directory")

	rootCmd.AddCommand(syncCmd, nodesCmd, infoCmd, serveCmd, versionCmd)
}

func loadConfig(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	configPath, err := utils.ResolvePath(configPath)
	if err != nil {
		return fmt.Errorf("config path: %w", err)
	}

	// a missing config file is fine, flags and env can carry everything
	if utils.FileExists(configPath) {
		viper.SetConfigFile(configPath)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("config read %q: %w", configPath, err)
		}
	}

	viper.BindPFlags(cmd.Flags())
	viper.BindPFlag("files_dir", cmd.Flags().Lookup("dir"))
	viper.SetDefault("verify_tls", true)
	viper.SetDefault("timeout", 30*time.Second)
	viper.SetDefault("concurrency", 1)
	viper.SetDefault("conditions.different_checksum", true)
	viper.SetDefault("conditions.remote_time_higher", true)
	viper.SetDefault("conditions.larger_file_size", false)

	viper.SetEnvPrefix("CLUSTERSYNC")
	viper.AutomaticEnv()

	return nil
}

// filesDir resolves the synchronized files directory to an absolute
// path, expanding a leading ~.
func filesDir() (string, error) {
	return utils.ResolvePath(viper.GetString("files_dir"))
}

// clusterConfig assembles and validates the cluster configuration from
// everything viper resolved. Missing or invalid config is fatal before
// any peer is contacted.
func clusterConfig() (*cluster.Config, error) {
	cfg := &cluster.Config{
		Name:      viper.GetString("name"),
		NodeID:    viper.GetString("node"),
		Peers:     viper.GetStringSlice("peers"),
		User:      viper.GetString("user"),
		Password:  viper.GetString("password"),
		VerifyTLS: viper.GetBool("verify_tls"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s\n", version.AppName, version.Detailed())
	},
}
