package main

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

// restoreLogger undoes configureLogging at the end of a test.
func restoreLogger(t *testing.T) {
	t.Helper()
	level, formatter := logger.GetLevel(), logger.Formatter
	t.Cleanup(func() {
		logger.SetLevel(level)
		logger.SetFormatter(formatter)
		logger.SetOutput(os.Stderr)
	})
}

func TestConfigureLoggingLevel(t *testing.T) {
	restoreLogger(t)

	cfg := DefaultConfig()
	cfg.LogLevel = "info"
	var buf bytes.Buffer
	if err := configureLogging(cfg, &buf); err != nil {
		t.Fatalf("configureLogging() error: %v", err)
	}

	deviceLogger().Debug("hidden")
	deviceLogger().Info("link up")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Errorf("debug message logged at info level:\n%s", output)
	}
	if !strings.Contains(output, "link up") || !strings.Contains(output, "component=amcp") {
		t.Errorf("expected info message with component field, got:\n%s", output)
	}
}

func TestConfigureLoggingJSON(t *testing.T) {
	restoreLogger(t)

	cfg := DefaultConfig()
	cfg.LogLevel = "debug"
	cfg.LogJSON = true
	var buf bytes.Buffer
	if err := configureLogging(cfg, &buf); err != nil {
		t.Fatalf("configureLogging() error: %v", err)
	}

	deviceLogger().WithField("code", 202).Debug("response")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, buf.String())
	}
	if entry["msg"] != "response" || entry["component"] != "amcp" || entry["code"] != float64(202) {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestConfigureLoggingRejectsUnknownLevel(t *testing.T) {
	restoreLogger(t)

	logger.SetLevel(logrus.WarnLevel)
	cfg := DefaultConfig()
	cfg.LogLevel = "chatty"
	if err := configureLogging(cfg, nil); err == nil {
		t.Error("configureLogging() with an unknown level should fail")
	}
	if logger.GetLevel() != logrus.WarnLevel {
		t.Errorf("level changed to %v", logger.GetLevel())
	}
}
