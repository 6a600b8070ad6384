package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNewLogger_DefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("expected default level to be info, got %s", cfg.Level)
	}
	if cfg.ServiceName != "canonize" {
		t.Errorf("expected default service name to be 'canonize', got %s", cfg.ServiceName)
	}
	if cfg.Environment != "development" {
		t.Errorf("expected default environment to be 'development', got %s", cfg.Environment)
	}
	if cfg.JSONFormat {
		t.Error("expected default JSONFormat to be false")
	}
}

func TestNewLogger_NilConfig(t *testing.T) {
	log := NewLogger(nil)
	if log == nil {
		t.Error("expected non-nil logger with nil config")
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	cfg := &Config{
		Level:       LevelDebug,
		ServiceName: "test-service",
		Environment: "testing",
		JSONFormat:  true,
		Output:      buf,
	}

	log := NewLogger(cfg)
	log.Info("test message", F("key", "value"))

	var output map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}

	if output["message"] != "test message" {
		t.Errorf("expected message 'test message', got %v", output["message"])
	}
	if output["service_name"] != "test-service" {
		t.Errorf("expected service_name 'test-service', got %v", output["service_name"])
	}
	if output["environment"] != "testing" {
		t.Errorf("expected environment 'testing', got %v", output["environment"])
	}
	if output["key"] != "value" {
		t.Errorf("expected key 'value', got %v", output["key"])
	}
	if output["level"] != "info" {
		t.Errorf("expected level 'info', got %v", output["level"])
	}
}

func TestLogger_With(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLogger(&Config{
		Level:      LevelDebug,
		JSONFormat: true,
		Output:     buf,
	})

	phaseLog := log.With(F("phase", "dedupe"), F("kind", "person"))
	phaseLog.Info("clustering complete")

	out := buf.String()
	if !strings.Contains(out, `"phase":"dedupe"`) {
		t.Errorf("expected attached phase field, got %s", out)
	}
	if !strings.Contains(out, `"kind":"person"`) {
		t.Errorf("expected attached kind field, got %s", out)
	}
}

func TestLogger_WithContext(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLogger(&Config{
		Level:      LevelDebug,
		JSONFormat: true,
		Output:     buf,
	})

	ctx := context.WithValue(context.Background(), RunIDKey, "run-123")
	log.WithContext(ctx).Info("phase started")

	if !strings.Contains(buf.String(), `"run_id":"run-123"`) {
		t.Errorf("expected run_id from context, got %s", buf.String())
	}
}

func TestLogger_ErrField(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLogger(&Config{
		Level:      LevelDebug,
		JSONFormat: true,
		Output:     buf,
	})

	log.Error("phase failed", Err(errors.New("boom")))

	if !strings.Contains(buf.String(), `"error":"boom"`) {
		t.Errorf("expected error field, got %s", buf.String())
	}
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	log.Info("discarded")
	log.With(F("k", "v")).Error("also discarded", Err(errors.New("x")))
	log.WithContext(context.Background()).Debug("still discarded")
}
