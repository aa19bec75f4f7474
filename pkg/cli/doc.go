/*
Package cli provides small command-line helpers shared by the
messageproxy command tree: typed errors for config and command
failures, and signal-based shutdown handling.

Error Types:

ConfigError and CommandError distinguish a bad configuration from a
failure while a command was running, so main can report each with an
appropriate exit path:

	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	sigChan := cli.WaitForShutdown()
	select {
	case sig := <-sigChan:
		// begin graceful shutdown
	}
*/
package cli
