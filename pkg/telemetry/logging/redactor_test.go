package logging

import "testing"

func TestNewRedactor_HasBuiltinPatterns(t *testing.T) {
	r := NewRedactor()
	if len(r.patterns) < 2 {
		t.Fatalf("expected at least 2 built-in patterns, got %d", len(r.patterns))
	}
}

func TestRedactor_RedactString_Pkcs11URL(t *testing.T) {
	r := NewRedactor()
	input := `loading key from pkcs11:token=iam;object=signing-key;pin-value=1234`
	output := r.RedactString(input)

	if output == input {
		t.Fatalf("expected the pkcs11 URL to be redacted")
	}
	if !containsStr(output, "pkcs11:***") {
		t.Errorf("expected redacted output to contain the pkcs11:*** marker, got %q", output)
	}
	if containsStr(output, "pin-value=1234") {
		t.Errorf("pkcs11 URL body leaked into output: %q", output)
	}
}

func TestRedactor_RedactString_PEMBlock(t *testing.T) {
	r := NewRedactor()
	input := "cert loaded:\n-----BEGIN CERTIFICATE-----\nMIIBIjANBgkqhkiG9w0B\n-----END CERTIFICATE-----\ndone"
	output := r.RedactString(input)

	if !containsStr(output, "***PEM-REDACTED***") {
		t.Errorf("expected PEM block to be replaced, got %q", output)
	}
	if containsStr(output, "MIIBIjANBgkqhkiG9w0B") {
		t.Errorf("PEM body leaked into output: %q", output)
	}
}

func TestRedactor_RedactString_NoMatchLeavesInputUnchanged(t *testing.T) {
	r := NewRedactor()
	input := "opened secure channel on port 2"
	if got := r.RedactString(input); got != input {
		t.Errorf("expected no redaction, got %q", got)
	}
}

func TestRedactor_RedactArgs_BytePayloadBecomesLength(t *testing.T) {
	r := NewRedactor()
	result := r.RedactArgs("frame_bytes", []byte("hello world"))

	if len(result) != 2 {
		t.Fatalf("expected 2 args back, got %d", len(result))
	}
	if result[1] != "11 bytes" {
		t.Errorf("got %v, want %q", result[1], "11 bytes")
	}
}

func TestRedactor_RedactArgs_SensitiveKeyIsTruncated(t *testing.T) {
	r := NewRedactor()
	result := r.RedactArgs("private_key_url", "pkcs11:token=iam;object=sign")

	val, ok := result[1].(string)
	if !ok {
		t.Fatalf("expected a string value, got %T", result[1])
	}
	if val == "pkcs11:token=iam;object=sign" {
		t.Errorf("expected the sensitive value to be truncated, got unchanged value")
	}
	if !hasPrefix(val, "pkcs") {
		t.Errorf("expected truncated value to keep the first 4 chars, got %q", val)
	}
}

func TestRedactor_RedactArgs_PreservesNonSensitiveValues(t *testing.T) {
	r := NewRedactor()
	result := r.RedactArgs("port", uint32(2), "count", 3)

	if result[1] != uint32(2) || result[3] != 3 {
		t.Errorf("expected non-sensitive values to pass through unchanged, got %v", result)
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key       string
		sensitive bool
	}{
		{"key_url", true},
		{"private_key", true},
		{"cert_storage", true},
		{"payload", true},
		{"raw_payload", true},
		{"port", false},
		{"digest", false},
		{"checksum", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := isSensitiveKey(tt.key); got != tt.sensitive {
				t.Errorf("isSensitiveKey(%q) = %v, want %v", tt.key, got, tt.sensitive)
			}
		})
	}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func containsStr(s, substr string) bool {
	if len(substr) == 0 {
		return true
	}
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
