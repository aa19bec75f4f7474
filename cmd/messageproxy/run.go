package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/edge-gateway/messageproxy/pkg/certprovider"
	"github.com/edge-gateway/messageproxy/pkg/cli"
	"github.com/edge-gateway/messageproxy/pkg/config"
	"github.com/edge-gateway/messageproxy/pkg/downloader"
	"github.com/edge-gateway/messageproxy/pkg/endpoint/cmrunner"
	"github.com/edge-gateway/messageproxy/pkg/endpoint/iamrunner"
	"github.com/edge-gateway/messageproxy/pkg/imagepipeline"
	"github.com/edge-gateway/messageproxy/pkg/imagestore/gc"
	"github.com/edge-gateway/messageproxy/pkg/imagestore/registry"
	"github.com/edge-gateway/messageproxy/pkg/innerclient"
	"github.com/edge-gateway/messageproxy/pkg/outermux"
	"github.com/edge-gateway/messageproxy/pkg/securechannel"
	"github.com/edge-gateway/messageproxy/pkg/server"
	"github.com/edge-gateway/messageproxy/pkg/telemetry/health"
	"github.com/edge-gateway/messageproxy/pkg/telemetry/logging"
	"github.com/edge-gateway/messageproxy/pkg/telemetry/metrics"
	"github.com/edge-gateway/messageproxy/pkg/telemetry/tracing"
	"github.com/edge-gateway/messageproxy/pkg/transport"

	"github.com/prometheus/client_golang/prometheus"
)

var runFlags struct {
	dryRun bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the message-proxy gateway",
	Long: `Start the gateway with the specified configuration.

The gateway multiplexes a single outer virtual channel into logical ports,
decrypts and relays each to the matching inner gRPC service, and services
image_content_request jobs through the downloader and extraction pipeline.

Examples:
  # Start with the default config path
  messageproxy run

  # Start with a specific config file
  messageproxy run --config /etc/messageproxy/config.yaml

  # Start only the open (unsecured) endpoints, for provisioning
  messageproxy run --provisioning

  # Validate config without starting the gateway
  messageproxy run --dry-run`,
	RunE: runGateway,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the gateway")
}

func runGateway(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	logLevel := "info"
	if verbose {
		logLevel = "debug"
	}
	logFormat := "json"
	if journal {
		logFormat = "text"
	}
	logger, err := logging.New(logging.Config{Level: logLevel, Format: logFormat, Redact: true})
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to initialize logging: %w", err))
	}
	defer logger.Shutdown()
	slogger := logger.Slog()
	slog.SetDefault(slogger)

	if runFlags.dryRun {
		if err := config.Validate(cfg); err != nil {
			return cli.NewCommandError("run", err)
		}
		fmt.Println("✓ Configuration valid")
		return nil
	}

	printBanner(cfg)

	checker := health.New(5 * time.Second)
	promRegistry := prometheus.NewRegistry()
	collector := metrics.NewCollector(&metrics.Config{Enabled: true}, promRegistry)

	tracer, err := tracing.New(&tracing.Config{Enabled: false, ServiceName: "messageproxy-gateway"})
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to initialize tracer: %w", err))
	}
	defer tracer.Shutdown(context.Background())

	keyLoader := certprovider.NewPassthroughKeyLoader()
	certProvider, err := certprovider.NewFileProvider(cfg.WorkingDir+"/certs", keyLoader, true)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to initialize certificate provider: %w", err))
	}
	defer certProvider.Close()

	vchan := transport.NewVChan(transport.VChanConfig{
		Domain: cfg.VChan.Domain,
		RXPath: cfg.VChan.XSRXPath,
		TXPath: cfg.VChan.XSTXPath,
	})
	mux := outermux.New(vchan, slogger)

	dl, err := downloader.New(cfg.Downloader.DownloadDir, slogger)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to initialize downloader: %w", err))
	}

	pipeline, err := imagepipeline.New(cfg.ImageStoreDir, slogger)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to initialize image pipeline: %w", err))
	}

	imgRegistry, err := registry.Open(registry.Config{DBPath: cfg.ImageStoreDir + "/registry.db"})
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to open image registry: %w", err))
	}
	defer imgRegistry.Close()
	checker.RegisterCheck("registry", func(ctx context.Context) error {
		_, _, err := imgRegistry.Lookup("healthcheck")
		return err
	})

	sweeper := gc.NewSweeper(gc.Config{StoreDir: cfg.ImageStoreDir, MaxAge: 24 * time.Hour}, slogger)
	scheduler := gc.NewScheduler(sweeper)
	gcCtx, gcCancel := context.WithCancel(context.Background())
	if err := scheduler.Start(gcCtx, "@hourly"); err != nil {
		slogger.Warn("failed to start image store gc scheduler", "error", err)
	}
	defer func() { scheduler.Stop(); gcCancel() }()

	mux.Connect()

	runners, err := startEndpoints(cfg, mux, certProvider, keyLoader, dl, pipeline, checker, slogger)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer func() {
		for _, r := range runners {
			r.Stop()
		}
	}()

	obsServer := server.New(server.Config{
		ListenAddress:   ":9090",
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}, checker, collector, Version, GitCommit, BuildDate)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		if err := obsServer.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	fmt.Println("✓ Gateway running")
	fmt.Println("✓ Observability endpoints on :9090 (/health, /ready, /version, /metrics)")
	fmt.Println("\nPress Ctrl+C to stop")

	stopFn, err := config.Watch(cfgFile, func(*config.Config) {
		slogger.Info("configuration changed; the running gateway keeps its current configuration until restarted")
	})
	if err == nil {
		defer stopFn()
	}

	sigChan := cli.WaitForShutdown()
	select {
	case err := <-errChan:
		return cli.NewCommandError("run", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()
		return mux.Close()
	}
}

// endpointRunner is the minimal Stop surface shared by cmrunner.Runner
// and iamrunner.Runner, so run.go can shut both down uniformly.
type endpointRunner interface {
	Stop()
}

func startEndpoints(cfg *config.Config, mux *outermux.Mux, certProvider certprovider.Provider, keyLoader certprovider.KeyLoader, dl *downloader.Downloader, pipeline *imagepipeline.Pipeline, checker *health.Checker, logger *slog.Logger) ([]endpointRunner, error) {
	var runners []endpointRunner

	iamPublicChannel, err := mux.CreateChannel(cfg.IAM.OpenPort)
	if err != nil {
		return nil, fmt.Errorf("registering IAM public port: %w", err)
	}
	iamPublicClient := innerclient.NewIAM(innerclient.Config{
		Target:      cfg.IAM.IAMPublicServerURL,
		Credentials: []innerclient.CredentialSource{innerclient.NewInsecureCredentialSource()},
		Logger:      logger,
	})
	iamPublicRunner := iamrunner.New(iamPublicChannel, iamPublicClient, logger)
	iamPublicRunner.Start()
	runners = append(runners, iamPublicRunner)
	checker.RegisterCheck("iamrunner", func(ctx context.Context) error { return nil })

	if !provisioning {
		iamProtectedBaseChannel, err := mux.CreateChannel(cfg.IAM.SecurePort)
		if err != nil {
			return nil, fmt.Errorf("registering IAM protected port: %w", err)
		}
		iamProtectedChannel := securechannel.New(iamProtectedBaseChannel, certProvider, keyLoader, cfg.VChan.IAMCertStorage)
		iamProtectedClient := innerclient.NewIAM(innerclient.Config{
			Target: cfg.IAM.IAMProtectedServerURL,
			Credentials: []innerclient.CredentialSource{
				innerclient.NewMTLSCredentialSource(certProvider, keyLoader, cfg.IAM.CertStorage, cfg.IAM.IAMProtectedServerURL),
			},
			Logger: logger,
		})
		iamProtectedRunner := iamrunner.New(iamProtectedChannel, iamProtectedClient, logger)
		iamProtectedRunner.Start()
		runners = append(runners, iamProtectedRunner)

		cmOpenChannel, err := mux.CreateChannel(cfg.CM.OpenPort)
		if err != nil {
			return nil, fmt.Errorf("registering CM open port: %w", err)
		}
		cmSecureBaseChannel, err := mux.CreateChannel(cfg.CM.SecurePort)
		if err != nil {
			return nil, fmt.Errorf("registering CM secure port: %w", err)
		}
		cmSecureChannel := securechannel.New(cmSecureBaseChannel, certProvider, keyLoader, cfg.VChan.SMCertStorage)

		cmClient := innerclient.NewCM(innerclient.Config{
			Target: cfg.CM.CMServerURL,
			Credentials: []innerclient.CredentialSource{
				innerclient.NewMTLSCredentialSource(certProvider, keyLoader, cfg.VChan.SMCertStorage, cfg.CM.CMServerURL),
			},
			Logger: logger,
		})
		cmr := cmrunner.New(cmOpenChannel, cmSecureChannel, cmClient, dl, pipeline, logger)
		cmr.Start()
		runners = append(runners, cmr)
		checker.RegisterCheck("cmrunner", func(ctx context.Context) error { return nil })
	}

	return runners, nil
}

func printBanner(cfg *config.Config) {
	fmt.Printf("messageproxy gateway v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")
	if provisioning {
		fmt.Println("✓ Provisioning mode: only open endpoints will start")
	}
}
