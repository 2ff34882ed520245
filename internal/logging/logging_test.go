package logging

import (
	"bytes"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/felixgeelhaar/bolt/v3"
)

func testLogger() (*bolt.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := bolt.New(bolt.NewJSONHandler(buf)).SetLevel(bolt.TRACE)
	return logger, buf
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	config := DefaultConfig()
	if config.Level != "warn" {
		t.Errorf("Level = %s, want warn", config.Level)
	}
	if config.Format != "console" {
		t.Errorf("Format = %s, want console", config.Format)
	}
	if config.Output != os.Stderr {
		t.Errorf("Output = %v, want os.Stderr", config.Output)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected bolt.Level
	}{
		{"trace", bolt.TRACE},
		{"debug", bolt.DEBUG},
		{"INFO", bolt.INFO},
		{"warn", bolt.WARN},
		{"warning", bolt.WARN},
		{"error", bolt.ERROR},
		{"unknown", bolt.INFO},
		{"", bolt.INFO},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%s) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNewJSONRespectsLevel(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	logger := New(Config{Level: "warn", Format: "json", Output: buf})
	logger.Info().Msg("hidden")
	logger.Warn().Str("k", "v").Msg("shown")

	if bytes.Contains(buf.Bytes(), []byte("hidden")) {
		t.Errorf("info event should be filtered: %s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"k":"v"`)) {
		t.Errorf("warn event missing: %s", buf.String())
	}
}

func TestFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		field Field
		want  []string
	}{
		{"component", Component("layout"), []string{`"component":"layout"`}},
		{"operation", Operation("render"), []string{`"operation":"render"`}},
		{"theme", Theme("nature"), []string{`"theme":"nature"`}},
		{"chart type", ChartType("simple"), []string{`"chart_type":"simple"`}},
		{"bar count", BarCount(4, 3), []string{`"bars":4`, `"drawn":3`}},
		{"project", ProjectID("demo_1"), []string{`"project_id":"demo_1"`}},
		{"path", Path("chart.json"), []string{`"path":"chart.json"`}},
		{"bytes", Bytes(1024), []string{`"bytes":1024`}},
		{"duration", Duration(100 * time.Millisecond), []string{`"duration_ms":100`}},
		{"error", ErrorField(errors.New("boom")), []string{`"error":"boom"`}},
		{"str", Str("key", "value"), []string{`"key":"value"`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logger, buf := testLogger()
			tt.field(logger.Info()).Msg("test")
			for _, w := range tt.want {
				if !bytes.Contains(buf.Bytes(), []byte(w)) {
					t.Errorf("expected %s in output: %s", w, buf.String())
				}
			}
		})
	}
}

func TestErrorFieldNil(t *testing.T) {
	t.Parallel()

	logger, buf := testLogger()
	ErrorField(nil)(logger.Info()).Msg("test")
	if bytes.Contains(buf.Bytes(), []byte(`"error"`)) {
		t.Errorf("unexpected error field in output: %s", buf.String())
	}
}

func TestLogEventChaining(t *testing.T) {
	t.Parallel()

	logger, buf := testLogger()
	NewEvent(logger.Info()).
		Add(Component("store")).
		Add(ProjectID("p1")).
		Msg("saved")

	for _, w := range []string{`"component":"store"`, `"project_id":"p1"`, "saved"} {
		if !bytes.Contains(buf.Bytes(), []byte(w)) {
			t.Errorf("expected %s in output: %s", w, buf.String())
		}
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	// Must not panic and must not write anywhere observable.
	Discard().Error().Msg("dropped")
}
