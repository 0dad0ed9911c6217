package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/casparctl/amcp/internal/amcptest"
)

// executeRoot runs the command tree with args in an isolated config
// environment and returns stdout.
func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	isolateConfig(t)

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestFullTitle(t *testing.T) {
	if got := fullTitle(); got != "amcp v"+version {
		t.Errorf("fullTitle() = %q", got)
	}
}

func TestWelcomeBanner(t *testing.T) {
	banner := welcomeBanner()

	for _, want := range []string{fullTitle(), ".help", ".quit"} {
		if !strings.Contains(banner, want) {
			t.Errorf("banner missing %q:\n%s", want, banner)
		}
	}
	if !strings.HasSuffix(banner, "\n") {
		t.Error("banner should end with a newline")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := executeRoot(t, "version")
	if err != nil {
		t.Fatalf("version error: %v", err)
	}
	if strings.TrimSpace(out) != fullTitle() {
		t.Errorf("version output = %q", out)
	}
}

func TestRootRejectsArguments(t *testing.T) {
	if _, err := executeRoot(t, "VERSION"); err == nil {
		t.Error("root command with a positional argument should fail")
	}
}

func TestSendCommand(t *testing.T) {
	ms := amcptest.Start(t, nil)

	out, err := executeRoot(t, "send", "--plain",
		"--host", ms.Host, "--port", strconv.Itoa(ms.Port),
		"INFO", "SYSTEM")
	if err != nil {
		t.Fatalf("send error: %v", err)
	}
	if out != "201 INFO SYSTEM OK\n<system/>\n" {
		t.Errorf("send output = %q", out)
	}
	if got := ms.ReceivedCommands(); len(got) != 1 || got[0] != "INFO SYSTEM" {
		t.Errorf("server received %q", got)
	}
}

func TestSendCommandErrorResponse(t *testing.T) {
	ms := amcptest.Start(t, nil)

	out, err := executeRoot(t, "send", "--plain",
		"-H", ms.Host, "-p", strconv.Itoa(ms.Port),
		"NOPE")

	var respErr *responseError
	if !errors.As(err, &respErr) {
		t.Fatalf("send error = %v, want *responseError", err)
	}
	if respErr.response.Code != 400 {
		t.Errorf("response code = %d, want 400", respErr.response.Code)
	}
	if !strings.Contains(err.Error(), `"400 ERROR"`) {
		t.Errorf("error = %q, want the status line", err)
	}
	if !strings.HasPrefix(out, "400 ERROR\n") {
		t.Errorf("send output = %q", out)
	}
}

func TestSendCommandUnreachable(t *testing.T) {
	port := closedPort(t)
	cfgPath := filepath.Join(t.TempDir(), "fast.yaml")
	writeFile(t, cfgPath, "dial_timeout: 200ms\n")

	_, err := executeRoot(t, "send", "--config", cfgPath,
		"--host", "127.0.0.1", "--port", strconv.Itoa(port), "VERSION")
	if err == nil || !strings.Contains(err.Error(), "could not connect") {
		t.Errorf("send error = %v, want could not connect", err)
	}
}

func TestSendCommandRequiresArgument(t *testing.T) {
	if _, err := executeRoot(t, "send"); err == nil {
		t.Error("send without a command should fail")
	}
}

func TestSendCommandTimeout(t *testing.T) {
	ms := amcptest.Start(t, nil)

	_, err := executeRoot(t, "send", "--host", ms.Host, "--port", strconv.Itoa(ms.Port),
		"--timeout", "50ms", "HANG")
	if err == nil || !strings.Contains(err.Error(), "HANG") {
		t.Errorf("send error = %v, want a timeout naming the command", err)
	}
}

func TestSendRejectsInvalidPort(t *testing.T) {
	if _, err := executeRoot(t, "send", "--port", "99999", "VERSION"); err == nil {
		t.Error("send with an out-of-range port should fail")
	}
}

func TestResolveConfigFlagsOverrideEnvironment(t *testing.T) {
	isolateConfig(t)
	t.Setenv("AMCP_HOST", "env-host")
	t.Setenv("AMCP_PORT", "6000")

	root := newRootCmd()
	send, _, err := root.Find([]string{"send"})
	if err != nil {
		t.Fatalf("Find(send) error: %v", err)
	}
	if err := send.ParseFlags([]string{"--port", "7000", "--retry-interval", "1s", "--log-level", "debug"}); err != nil {
		t.Fatalf("ParseFlags() error: %v", err)
	}

	opts := &options{port: 7000, retryInterval: time.Second, logLevel: "debug"}
	cfg, err := resolveConfig(send, opts)
	if err != nil {
		t.Fatalf("resolveConfig() error: %v", err)
	}
	t.Cleanup(func() { configureLogging(DefaultConfig(), nil) })

	if cfg.Host != "env-host" {
		t.Errorf("Host = %q, want env-host", cfg.Host)
	}
	if cfg.Port != 7000 {
		t.Errorf("Port = %d, want 7000 from the flag", cfg.Port)
	}
	if cfg.RetryInterval != time.Second {
		t.Errorf("RetryInterval = %v, want 1s", cfg.RetryInterval)
	}
	if logger.GetLevel().String() != "debug" {
		t.Errorf("log level = %v, want debug", logger.GetLevel())
	}
}
