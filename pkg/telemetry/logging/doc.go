// Package logging provides structured logging with certificate/key and
// payload redaction.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - Structured logging with JSON, text, and console formats
//   - Automatic redaction of key/cert material and raw wire payloads
//   - Context-aware logging with request IDs, component, and port fields
//   - Synchronous writes straight to the configured writer
//   - Configurable log levels (debug, info, warn, error)
//
// # Usage
//
//	// Create a logger
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Redact: true,
//	})
//	if err != nil {
//	    return err
//	}
//
//	// Log structured data
//	logger.Info("secure channel connected",
//	    "connection_id", "conn-1",
//	    "private_key_url", "pkcs11:token=iam",  // Automatically redacted
//	    "port", uint32(2),
//	)
//
//	// Create context-aware logger
//	ctx := logging.WithComponent(ctx, "cmrunner")
//	ctxLogger := logger.WithContext(ctx)
//	ctxLogger.Info("connecting")  // Includes component automatically
//
// # Redaction
//
// When Redact is enabled, key/cert material and raw payload bytes are
// scrubbed from log fields before they reach the handler:
//
//   - PKCS#11 key URLs: pkcs11:token=iam;object=k → pkcs11:***
//   - PEM blocks: -----BEGIN CERTIFICATE-----... → ***PEM-REDACTED***
//   - []byte values under any key are replaced with their length
//   - Values under a key-material key name are truncated to a 4-char prefix
//
// # Performance
//
// A message below the configured level is discarded before redaction
// or formatting. Every other record is written to the configured
// writer before the logging call returns; records are not queued, so
// none are dropped.
package logging
