package config

import "time"

// Default values applied by ApplyDefaults when a field was left at its
// YAML zero value.
const (
	DefaultWorkingDir    = "/var/lib/messageproxy"
	DefaultImageStoreDir = "/var/lib/messageproxy/images"
	DefaultCertStorage   = "default"
	DefaultCMOpenPort    = uint32(1)
	DefaultCMSecurePort  = uint32(2)
	DefaultIAMOpenPort   = uint32(3)
	DefaultIAMSecurePort = uint32(4)
	DefaultDownloadDir   = "/var/lib/messageproxy/downloads"
	DefaultMaxConcurrent = 4
	DefaultRetryDelay    = 1 * time.Second
	DefaultMaxRetryDelay = 5 * time.Second
)

// ApplyDefaults fills in zero-valued fields of cfg with the gateway's
// defaults. It is called after YAML decoding and before validation, so
// a partially-specified configuration file is still usable.
func ApplyDefaults(cfg *Config) {
	if cfg.WorkingDir == "" {
		cfg.WorkingDir = DefaultWorkingDir
	}
	if cfg.ImageStoreDir == "" {
		cfg.ImageStoreDir = DefaultImageStoreDir
	}
	if cfg.CertStorage == "" {
		cfg.CertStorage = DefaultCertStorage
	}

	if cfg.CM.OpenPort == 0 {
		cfg.CM.OpenPort = DefaultCMOpenPort
	}
	if cfg.CM.SecurePort == 0 {
		cfg.CM.SecurePort = DefaultCMSecurePort
	}

	if cfg.IAM.OpenPort == 0 {
		cfg.IAM.OpenPort = DefaultIAMOpenPort
	}
	if cfg.IAM.SecurePort == 0 {
		cfg.IAM.SecurePort = DefaultIAMSecurePort
	}
	if cfg.IAM.CertStorage == "" {
		cfg.IAM.CertStorage = cfg.CertStorage
	}

	if cfg.Downloader.DownloadDir == "" {
		cfg.Downloader.DownloadDir = DefaultDownloadDir
	}
	if cfg.Downloader.MaxConcurrentDownloads == 0 {
		cfg.Downloader.MaxConcurrentDownloads = DefaultMaxConcurrent
	}
	if cfg.Downloader.RetryDelay == 0 {
		cfg.Downloader.RetryDelay = Duration(DefaultRetryDelay)
	}
	if cfg.Downloader.MaxRetryDelay == 0 {
		cfg.Downloader.MaxRetryDelay = Duration(DefaultMaxRetryDelay)
	}

	if cfg.VChan.IAMCertStorage == "" {
		cfg.VChan.IAMCertStorage = cfg.CertStorage
	}
	if cfg.VChan.SMCertStorage == "" {
		cfg.VChan.SMCertStorage = cfg.CertStorage
	}
}
