package config

import "testing"

func TestApplyDefaults_FillsZeroValues(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)

	if cfg.WorkingDir != DefaultWorkingDir {
		t.Errorf("WorkingDir: got %q, want %q", cfg.WorkingDir, DefaultWorkingDir)
	}
	if cfg.ImageStoreDir != DefaultImageStoreDir {
		t.Errorf("ImageStoreDir: got %q, want %q", cfg.ImageStoreDir, DefaultImageStoreDir)
	}
	if cfg.CM.OpenPort != DefaultCMOpenPort || cfg.CM.SecurePort != DefaultCMSecurePort {
		t.Errorf("CM ports not defaulted: %+v", cfg.CM)
	}
	if cfg.IAM.OpenPort != DefaultIAMOpenPort || cfg.IAM.SecurePort != DefaultIAMSecurePort {
		t.Errorf("IAM ports not defaulted: %+v", cfg.IAM)
	}
	if cfg.IAM.CertStorage != DefaultCertStorage {
		t.Errorf("IAM.CertStorage: got %q, want %q", cfg.IAM.CertStorage, DefaultCertStorage)
	}
	if cfg.Downloader.RetryDelay.Duration() != DefaultRetryDelay {
		t.Errorf("Downloader.RetryDelay: got %v, want %v", cfg.Downloader.RetryDelay.Duration(), DefaultRetryDelay)
	}
	if cfg.Downloader.MaxRetryDelay.Duration() != DefaultMaxRetryDelay {
		t.Errorf("Downloader.MaxRetryDelay: got %v, want %v", cfg.Downloader.MaxRetryDelay.Duration(), DefaultMaxRetryDelay)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := Config{
		WorkingDir: "/custom/dir",
		CM:         CMConfig{OpenPort: 10, SecurePort: 11},
	}
	ApplyDefaults(&cfg)

	if cfg.WorkingDir != "/custom/dir" {
		t.Errorf("explicit WorkingDir overwritten: got %q", cfg.WorkingDir)
	}
	if cfg.CM.OpenPort != 10 || cfg.CM.SecurePort != 11 {
		t.Errorf("explicit CM ports overwritten: %+v", cfg.CM)
	}
}

func TestApplyDefaults_CertStorageCascadesToVChan(t *testing.T) {
	cfg := Config{CertStorage: "acme"}
	ApplyDefaults(&cfg)

	if cfg.VChan.IAMCertStorage != "acme" {
		t.Errorf("VChan.IAMCertStorage: got %q, want %q", cfg.VChan.IAMCertStorage, "acme")
	}
	if cfg.VChan.SMCertStorage != "acme" {
		t.Errorf("VChan.SMCertStorage: got %q, want %q", cfg.VChan.SMCertStorage, "acme")
	}
}
