package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML/JSON documents can spell
// retry delays as human strings ("3s") instead of nanosecond integers
// (spec.md §6 Downloader.RetryDelay/MaxRetryDelay).
type Duration time.Duration

// UnmarshalYAML decodes a Duration from a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML encodes a Duration back to its Go duration string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the wrapped time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config is the root configuration document for the gateway
// (spec.md §6 "Configuration (JSON)"). It is written as flow-style
// JSON in deployment but decoded through the YAML 1.2 parser, which
// accepts JSON as a subset.
type Config struct {
	// WorkingDir is the gateway's scratch/state directory root.
	WorkingDir string `yaml:"WorkingDir"`

	// ImageStoreDir is where downloaded service images are extracted
	// and their content-addressed blobs kept (pkg/imagepipeline).
	ImageStoreDir string `yaml:"ImageStoreDir"`

	// CACert is the path to a trust anchor. It is decoded but not read
	// by the gateway: peers are verified against the CA pool each
	// certificate storage carries in its own ca.pem (pkg/certprovider).
	CACert string `yaml:"CACert"`

	// CertStorage names the default certificate storage identifier
	// resolved through the certificate provider (pkg/certprovider).
	CertStorage string `yaml:"CertStorage"`

	// VChan configures the inter-domain channel transport variant of
	// the outer byte-stream (spec.md §6 "Inter-domain channel").
	VChan VChanConfig `yaml:"VChan"`

	// IAM configures the two IAM Endpoint Runners (public, protected).
	IAM IAMConfig `yaml:"IAMConfig"`

	// CM configures the CM Endpoint Runner's open and secure ports.
	CM CMConfig `yaml:"CMConfig"`

	// Downloader configures the retry-with-backoff image downloader.
	Downloader DownloaderConfig `yaml:"Downloader"`
}

// VChanConfig describes an inter-domain channel endpoint pair.
type VChanConfig struct {
	// Domain is the numeric domain identifier of the peer endpoint.
	Domain int `yaml:"Domain"`

	// XSRXPath is the filesystem path of the receive-side endpoint.
	XSRXPath string `yaml:"XSRXPath"`

	// XSTXPath is the filesystem path of the transmit-side endpoint.
	XSTXPath string `yaml:"XSTXPath"`

	// IAMCertStorage names the certificate storage used to secure the
	// IAM-protected port.
	IAMCertStorage string `yaml:"IAMCertStorage"`

	// SMCertStorage names the certificate storage used to secure the
	// CM-secure port.
	SMCertStorage string `yaml:"SMCertStorage"`
}

// IAMConfig configures both IAM Endpoint Runners and the credentials
// their inner gRPC clients dial with (spec.md §4.5).
type IAMConfig struct {
	// IAMPublicServerURL is the inner gRPC target for the public
	// (open, unauthenticated) IAM Endpoint Runner.
	IAMPublicServerURL string `yaml:"IAMPublicServerURL"`

	// IAMProtectedServerURL is the inner gRPC target for the
	// protected (mTLS) IAM Endpoint Runner.
	IAMProtectedServerURL string `yaml:"IAMProtectedServerURL"`

	// CertStorage names the certificate storage the protected IAM
	// client uses to dial with mTLS.
	CertStorage string `yaml:"CertStorage"`

	// OpenPort is the outer mux port carrying IAM-public traffic.
	OpenPort uint32 `yaml:"OpenPort"`

	// SecurePort is the outer mux port carrying IAM-protected traffic.
	SecurePort uint32 `yaml:"SecurePort"`
}

// CMConfig configures the CM Endpoint Runner and its inner gRPC
// client target.
type CMConfig struct {
	// CMServerURL is the inner gRPC target the CM client dials.
	CMServerURL string `yaml:"CMServerURL"`

	// OpenPort is the outer mux port carrying unencrypted CM traffic
	// (clock sync, forwarded-only otherwise).
	OpenPort uint32 `yaml:"OpenPort"`

	// SecurePort is the outer mux port carrying mTLS CM traffic
	// (everything else, including image-content requests).
	SecurePort uint32 `yaml:"SecurePort"`
}

// DownloaderConfig configures the retry-with-backoff image downloader
// (spec.md §4.8).
type DownloaderConfig struct {
	// DownloadDir is where fetched service tarballs are staged before
	// unpacking.
	DownloadDir string `yaml:"DownloadDir"`

	// MaxConcurrentDownloads, RetryDelay and MaxRetryDelay are decoded,
	// defaulted and validated but not passed to the downloader:
	// pkg/downloader runs each job with its own fixed attempt count and
	// backoff bounds, and places no limit on concurrent downloads.

	// MaxConcurrentDownloads is the configured concurrent-download count.
	MaxConcurrentDownloads int `yaml:"MaxConcurrentDownloads"`

	// RetryDelay is the configured initial backoff between attempts.
	RetryDelay Duration `yaml:"RetryDelay"`

	// MaxRetryDelay is the configured cap on the backoff between attempts.
	MaxRetryDelay Duration `yaml:"MaxRetryDelay"`
}
