package logging

import (
	"fmt"
	"regexp"
	"strings"
)

// Redactor scrubs certificate/key material and raw payload bytes from
// log fields before they reach the underlying handler (spec.md's
// payloads are opaque and potentially sensitive; only lengths, ports,
// and checksums belong in a log line, per SPEC_FULL.md §10.1).
type Redactor struct {
	patterns []*redactPattern
	enabled  bool
}

type redactPattern struct {
	regex       *regexp.Regexp
	replacement string
}

// Sensitive log-field key names, matched case-insensitively as
// substrings.
var sensitiveKeys = []string{
	"key_url", "keyurl", "private_key", "privatekey",
	"cert", "certificate", "ca_pool",
	"payload", "raw_payload", "frame_bytes",
}

// NewRedactor constructs a Redactor with the gateway's built-in
// patterns for PKCS#11-style key URLs and PEM blocks.
func NewRedactor() *Redactor {
	r := &Redactor{enabled: true}
	r.patterns = []*redactPattern{
		{regex: regexp.MustCompile(`pkcs11:[^\s"]+`), replacement: "pkcs11:***"},
		{regex: regexp.MustCompile(`-----BEGIN [A-Z ]+-----[\s\S]*?-----END [A-Z ]+-----`), replacement: "***PEM-REDACTED***"},
	}
	return r
}

// RedactString applies every pattern to value.
func (r *Redactor) RedactString(value string) string {
	if !r.enabled || value == "" {
		return value
	}
	redacted := value
	for _, p := range r.patterns {
		redacted = p.regex.ReplaceAllString(redacted, p.replacement)
	}
	return redacted
}

// RedactArgs redacts variadic slog-style key/value pairs: a value
// whose key names key/cert material is fully redacted; a []byte value
// under any key is replaced with its length, since raw wire payloads
// are never appropriate to log verbatim.
func (r *Redactor) RedactArgs(args ...any) []any {
	if !r.enabled || len(args) == 0 {
		return args
	}

	redacted := make([]any, len(args))
	copy(redacted, args)

	for i := 1; i < len(redacted); i += 2 {
		key, _ := redacted[i-1].(string)

		if b, ok := redacted[i].([]byte); ok {
			redacted[i] = fmt.Sprintf("%d bytes", len(b))
			continue
		}

		if isSensitiveKey(key) {
			redacted[i] = redactValue(redacted[i])
			continue
		}

		if str, ok := redacted[i].(string); ok {
			redacted[i] = r.RedactString(str)
		}
	}

	return redacted
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}
	return false
}

func redactValue(value any) any {
	switch v := value.(type) {
	case string:
		if v == "" {
			return ""
		}
		if len(v) <= 4 {
			return "***"
		}
		return v[:4] + "***"
	case fmt.Stringer:
		return "***"
	default:
		return "***"
	}
}
