// Package config loads and validates the gateway's configuration
// document (spec.md §6): WorkingDir, ImageStoreDir, CACert,
// CertStorage, VChan, IAMConfig, CMConfig, and Downloader.
//
// # Loading
//
//	cfg, err := config.LoadConfig("gateway.json")
//
// The document is written as flow-style JSON in deployment but decoded
// with a YAML 1.2 parser (gopkg.in/yaml.v3), which accepts JSON as a
// strict subset without a second dependency.
//
// # Defaults and validation
//
// LoadConfig applies ApplyDefaults for any field left at its zero
// value, then runs Validate, which collects every violation (missing
// server URLs, colliding ports, non-positive downloader settings)
// before returning a single ValidationError.
//
// # Singleton
//
//	if err := config.Initialize("gateway.json"); err != nil {
//		log.Fatal(err)
//	}
//	cfg := config.GetConfig()
//
// For testing, prefer building a *Config directly rather than the
// global singleton.
//
// # Hot reload
//
// Watch starts an fsnotify watch on the configuration file's
// directory and invokes a callback with a freshly loaded Config on
// every write. Watch does not apply the new Config to anything itself;
// cmd/messageproxy only logs the change, so a running gateway keeps the
// configuration it started with.
package config
