package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile      string
	verbose      bool
	journal      bool
	provisioning bool
)

var rootCmd = &cobra.Command{
	Use:   "messageproxy",
	Short: "Message-proxy gateway between an untrusted outer channel and trusted inner services",
	Long: `messageproxy relays a framed byte stream carried over an outer virtual
channel to trusted inner gRPC services (IAM, CM), decrypting and
demultiplexing frames by logical port as it goes.

  - Outer multiplexing by port over a single virtual-channel transport
  - Per-port secure-channel decryption before frames reach an inner client
  - Image extraction pipeline with content-addressed local caching
  - Certificate hot-reload without dropping connections; configuration
    file changes are detected and logged, and apply on restart`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&journal, "journal", "j", false, "log to the system journal instead of stdout")
	rootCmd.PersistentFlags().BoolVarP(&provisioning, "provisioning", "p", false, "start only the open (unsecured) endpoints")

	rootCmd.CompletionOptions.DisableDefaultCmd = false
}
