package logging

import (
	"context"
	"testing"
)

func TestContextKeys(t *testing.T) {
	ctx := context.Background()

	ctx = WithRequestID(ctx, "req-123")
	if got := GetRequestID(ctx); got != "req-123" {
		t.Errorf("GetRequestID() = %q, want %q", got, "req-123")
	}

	ctx = WithComponent(ctx, "cmrunner")
	if got := GetComponent(ctx); got != "cmrunner" {
		t.Errorf("GetComponent() = %q, want %q", got, "cmrunner")
	}

	ctx = WithPort(ctx, 2)
	if got, ok := GetPort(ctx); !ok || got != 2 {
		t.Errorf("GetPort() = (%d, %v), want (2, true)", got, ok)
	}

	ctx = WithConnectionID(ctx, "conn-1")
	if got := GetConnectionID(ctx); got != "conn-1" {
		t.Errorf("GetConnectionID() = %q, want %q", got, "conn-1")
	}

	ctx = WithDigest(ctx, "sha256:abcd")
	if got := GetDigest(ctx); got != "sha256:abcd" {
		t.Errorf("GetDigest() = %q, want %q", got, "sha256:abcd")
	}

	ctx = WithTraceID(ctx, "trace-abc")
	if got := GetTraceID(ctx); got != "trace-abc" {
		t.Errorf("GetTraceID() = %q, want %q", got, "trace-abc")
	}

	ctx = WithSpanID(ctx, "span-def")
	if got := GetSpanID(ctx); got != "span-def" {
		t.Errorf("GetSpanID() = %q, want %q", got, "span-def")
	}
}

func TestContextKeys_Empty(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		get  func(context.Context) string
	}{
		{"RequestID", GetRequestID},
		{"Component", GetComponent},
		{"ConnectionID", GetConnectionID},
		{"Digest", GetDigest},
		{"TraceID", GetTraceID},
		{"SpanID", GetSpanID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.get(ctx); got != "" {
				t.Errorf("Get%s() = %q, want empty string", tt.name, got)
			}
		})
	}

	if _, ok := GetPort(ctx); ok {
		t.Errorf("GetPort() on an empty context should report ok=false")
	}
}

func TestExtractContextFields(t *testing.T) {
	tests := []struct {
		name       string
		setupCtx   func(context.Context) context.Context
		wantFields map[string]string
	}{
		{
			name: "empty context",
			setupCtx: func(ctx context.Context) context.Context {
				return ctx
			},
			wantFields: map[string]string{},
		},
		{
			name: "request ID only",
			setupCtx: func(ctx context.Context) context.Context {
				return WithRequestID(ctx, "req-123")
			},
			wantFields: map[string]string{
				"request_id": "req-123",
			},
		},
		{
			name: "multiple fields",
			setupCtx: func(ctx context.Context) context.Context {
				ctx = WithRequestID(ctx, "req-456")
				ctx = WithComponent(ctx, "iamrunner")
				ctx = WithConnectionID(ctx, "conn-9")
				return ctx
			},
			wantFields: map[string]string{
				"request_id":    "req-456",
				"component":     "iamrunner",
				"connection_id": "conn-9",
			},
		},
		{
			name: "all string-valued fields",
			setupCtx: func(ctx context.Context) context.Context {
				ctx = WithRequestID(ctx, "req-789")
				ctx = WithComponent(ctx, "cmrunner")
				ctx = WithConnectionID(ctx, "conn-1")
				ctx = WithDigest(ctx, "sha256:aaaa")
				ctx = WithTraceID(ctx, "trace-1")
				ctx = WithSpanID(ctx, "span-1")
				return ctx
			},
			wantFields: map[string]string{
				"request_id":    "req-789",
				"component":     "cmrunner",
				"connection_id": "conn-1",
				"digest":        "sha256:aaaa",
				"trace_id":      "trace-1",
				"span_id":       "span-1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := tt.setupCtx(context.Background())
			fields := extractContextFields(ctx)

			fieldsMap := make(map[string]string)
			for i := 0; i < len(fields); i += 2 {
				key := fields[i].(string)
				value, ok := fields[i+1].(string)
				if !ok {
					continue
				}
				fieldsMap[key] = value
			}

			for key, expectedValue := range tt.wantFields {
				if gotValue, ok := fieldsMap[key]; !ok {
					t.Errorf("Expected field %q not found", key)
				} else if gotValue != expectedValue {
					t.Errorf("Field %q = %q, want %q", key, gotValue, expectedValue)
				}
			}

			if len(fieldsMap) != len(tt.wantFields) {
				t.Errorf("Got %d fields, want %d. Fields: %v",
					len(fieldsMap), len(tt.wantFields), fieldsMap)
			}
		})
	}
}

func TestExtractContextFields_IncludesPortAsUint32(t *testing.T) {
	ctx := WithPort(context.Background(), 4)
	fields := extractContextFields(ctx)

	for i := 0; i < len(fields); i += 2 {
		if fields[i] == "port" {
			if fields[i+1] != uint32(4) {
				t.Errorf("port field = %v, want uint32(4)", fields[i+1])
			}
			return
		}
	}
	t.Fatal("expected a port field in extracted context fields")
}

func TestContextLogger(t *testing.T) {
	ctx := context.Background()
	ctx = WithRequestID(ctx, "req-cl-1")
	ctx = WithComponent(ctx, "cmrunner")

	logger, err := New(Config{
		Level:      "info",
		Format:     "json",
		Redact:     false,
		BufferSize: 100,
	})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Shutdown()

	ctxLogger := NewContextLogger(logger, ctx)
	if ctxLogger == nil {
		t.Fatal("NewContextLogger returned nil")
	}

	ctxLogger.Debug("debug message")
	ctxLogger.Info("info message")
	ctxLogger.Warn("warn message")
	ctxLogger.Error("error message")

	childLogger := ctxLogger.With("extra", "value")
	if childLogger == nil {
		t.Fatal("ContextLogger.With returned nil")
	}

	childLogger.Info("child message")
}

func TestContextLogger_With(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-with-1")

	logger, err := New(Config{
		Level:      "info",
		Format:     "json",
		Redact:     false,
		BufferSize: 100,
	})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Shutdown()

	ctxLogger := NewContextLogger(logger, ctx)

	childLogger := ctxLogger.With("key1", "value1", "key2", 42)
	if childLogger == nil {
		t.Fatal("ContextLogger.With returned nil")
	}

	childLogger.Info("test message")
}

func TestContextChaining(t *testing.T) {
	ctx := context.Background()
	ctx = WithRequestID(ctx, "req-chain-1")
	ctx = WithComponent(ctx, "iamrunner")
	ctx = WithConnectionID(ctx, "conn-1")

	if got := GetRequestID(ctx); got != "req-chain-1" {
		t.Errorf("After chaining, GetRequestID() = %q, want %q", got, "req-chain-1")
	}
	if got := GetComponent(ctx); got != "iamrunner" {
		t.Errorf("After chaining, GetComponent() = %q, want %q", got, "iamrunner")
	}
	if got := GetConnectionID(ctx); got != "conn-1" {
		t.Errorf("After chaining, GetConnectionID() = %q, want %q", got, "conn-1")
	}

	ctx = WithDigest(ctx, "sha256:bbbb")
	ctx = WithPort(ctx, 3)

	if got := GetDigest(ctx); got != "sha256:bbbb" {
		t.Errorf("After more chaining, GetDigest() = %q, want %q", got, "sha256:bbbb")
	}
	if got, ok := GetPort(ctx); !ok || got != 3 {
		t.Errorf("After more chaining, GetPort() = (%d, %v), want (3, true)", got, ok)
	}

	if got := GetRequestID(ctx); got != "req-chain-1" {
		t.Errorf("Original value changed: GetRequestID() = %q, want %q", got, "req-chain-1")
	}
}

func TestContextOverwrite(t *testing.T) {
	ctx := context.Background()
	ctx = WithRequestID(ctx, "req-old")

	if got := GetRequestID(ctx); got != "req-old" {
		t.Errorf("Initial GetRequestID() = %q, want %q", got, "req-old")
	}

	ctx = WithRequestID(ctx, "req-new")

	if got := GetRequestID(ctx); got != "req-new" {
		t.Errorf("After overwrite, GetRequestID() = %q, want %q", got, "req-new")
	}
}

func BenchmarkExtractContextFields(b *testing.B) {
	ctx := context.Background()
	ctx = WithRequestID(ctx, "req-bench")
	ctx = WithComponent(ctx, "cmrunner")
	ctx = WithPort(ctx, 2)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = extractContextFields(ctx)
	}
}

func BenchmarkWithRequestID(b *testing.B) {
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = WithRequestID(ctx, "req-123")
	}
}

func BenchmarkGetRequestID(b *testing.B) {
	ctx := WithRequestID(context.Background(), "req-123")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = GetRequestID(ctx)
	}
}
