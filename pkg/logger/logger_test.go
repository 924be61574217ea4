package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"beforeafter/pkg/config"

	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{
			name:    "valid config with info level",
			cfg:     &config.LoggingConfig{Level: "info", Format: "auto"},
			wantErr: false,
		},
		{
			name:    "valid config with debug level and json",
			cfg:     &config.LoggingConfig{Level: "debug", Format: "json"},
			wantErr: false,
		},
		{
			name:    "invalid log level",
			cfg:     &config.LoggingConfig{Level: "invalid"},
			wantErr: true,
		},
		{
			name: "config with file output",
			cfg: &config.LoggingConfig{
				Level: "info",
				File:  filepath.Join(t.TempDir(), "logs", "run.log"),
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && logger == nil {
				t.Error("New() returned nil logger")
			}
		})
	}
}

func TestNewWritesDefaultFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newWithWriter(&config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("newWithWriter() error = %v", err)
	}

	logger.Info("hello")

	output := buf.String()
	if !strings.Contains(output, `"app":"beforeafter"`) {
		t.Errorf("app field missing from %q", output)
	}
	if !strings.Contains(output, `"message":"hello"`) {
		t.Errorf("message missing from %q", output)
	}
}

func TestNewAppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	var buf bytes.Buffer
	logger, err := newWithWriter(&config.LoggingConfig{Level: "info", Format: "json", File: path}, &buf)
	if err != nil {
		t.Fatalf("newWithWriter() error = %v", err)
	}

	logger.Info("to file")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("log file does not contain message: %q", data)
	}
}

func TestResolveFormat(t *testing.T) {
	var buf bytes.Buffer
	tests := []struct {
		format string
		want   string
	}{
		{"json", "json"},
		{"JSON", "json"},
		{"console", "console"},
		{"auto", "json"},
		{"", "json"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if got := resolveFormat(tt.format, &buf); got != tt.want {
				t.Errorf("resolveFormat(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"invalid", zerolog.InfoLevel, true},
		{"", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseLogLevel() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if level != tt.expected {
				t.Errorf("parseLogLevel() = %v, want %v", level, tt.expected)
			}
		})
	}
}

func newBufferLogger(buf *bytes.Buffer) *zerologLogger {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	zlog := zerolog.New(buf).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	return &zerologLogger{logger: &zlog, fields: make(map[string]interface{})}
}

func TestLoggerMethods(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	calls := map[string]func(string){
		"debug message": logger.Debug,
		"info message":  logger.Info,
		"warn message":  logger.Warn,
		"error message": logger.Error,
	}
	for msg, fn := range calls {
		buf.Reset()
		fn(msg)
		if !strings.Contains(buf.String(), msg) {
			t.Errorf("%q not found in output %q", msg, buf.String())
		}
	}
}

func TestFieldChaining(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.
		WithField("src", "/img/case-5-1.jpg").
		WithField("attempt", 2).
		WithFields(map[string]interface{}{
			"status": "downloaded",
			"retry":  true,
		}).
		Info("chained fields")

	output := buf.String()
	for _, want := range []string{
		"chained fields",
		`"src":"/img/case-5-1.jpg"`,
		`"attempt":2`,
		`"status":"downloaded"`,
		`"retry":true`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("%s not found in output %q", want, output)
		}
	}
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	_ = logger.WithField("child", "yes")
	logger.Info("parent")

	if strings.Contains(buf.String(), "child") {
		t.Errorf("parent logger picked up child field: %q", buf.String())
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	if logger.WithError(nil) != Logger(logger) {
		t.Error("WithError(nil) should return the same logger")
	}

	logger.WithError(errors.New("connection reset")).Error("download failed")

	output := buf.String()
	if !strings.Contains(output, "download failed") {
		t.Error("Message not found in output")
	}
	if !strings.Contains(output, "connection reset") {
		t.Error("Error message not found in output")
	}
}

func TestStructuredLoggingFieldTypes(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.InfoWithFields("all types", map[string]interface{}{
		"string":   "test",
		"int64":    int64(456),
		"float":    3.5,
		"time":     time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		"duration": 5 * time.Second,
		"strings":  []string{"a", "b"},
		"cause":    errors.New("boom"),
	})

	output := buf.String()
	for _, want := range []string{`"string":"test"`, `"int64":456`, `"cause":"boom"`, `"strings":["a","b"]`} {
		if !strings.Contains(output, want) {
			t.Errorf("%s not found in output %q", want, output)
		}
	}
}

func TestGlobalLogger(t *testing.T) {
	if err := Initialize(&config.LoggingConfig{Level: "debug", Format: "json"}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	if GetLogger() == nil {
		t.Fatal("GetLogger() returned nil")
	}

	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")
	WithField("key", "value").Info("with field")
	WithFields(map[string]interface{}{"k1": "v1"}).Info("with fields")
	WithError(errors.New("test")).Error("with error")
}

func TestInitializeWithWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := InitializeWithWriter(&config.LoggingConfig{Level: "info", Format: "auto"}, &buf); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	defer Initialize(&config.LoggingConfig{Level: "info", Format: "json"})

	Info("captured")

	// a plain buffer is not a terminal, so auto resolves to json
	if !strings.Contains(buf.String(), `"message":"captured"`) {
		t.Errorf("expected json line in writer, got %q", buf.String())
	}
}
