package main

import (
	"strings"
	"testing"

	"github.com/casparctl/amcp/amcpprotocol"
)

func helpText(t *testing.T, topic string) string {
	t.Helper()
	var buf strings.Builder
	if err := printHelp(&buf, topic); err != nil {
		t.Fatalf("printHelp(%q) error: %v", topic, err)
	}
	return buf.String()
}

func TestHelpOverviewListsDotCommands(t *testing.T) {
	output := helpText(t, "")

	for _, dc := range dotCommands {
		if !strings.Contains(output, dc.usage) {
			t.Errorf("overview missing %s", dc.usage)
		}
	}
}

func TestHelpOverviewListsAMCPCommands(t *testing.T) {
	output := helpText(t, "")

	for _, cmd := range []string{"LOADBG", "PLAY", "CG", "CLS", "INFO SYSTEM", "DATA RETRIEVE", "THUMBNAIL LIST"} {
		if !strings.Contains(output, cmd) {
			t.Errorf("overview missing %s", cmd)
		}
	}
}

func TestHelpCoversVocabulary(t *testing.T) {
	for _, cmd := range amcpprotocol.Commands() {
		if cmd == amcpprotocol.CmdError {
			continue
		}
		text, ok := commandHelp[cmd]
		if !ok {
			t.Errorf("no help text for %v", cmd)
			continue
		}
		if !strings.HasPrefix(text, cmd.String()) {
			t.Errorf("help for %v starts with %q", cmd, text)
		}
	}
}

func TestHelpTopics(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{".status", "response parser"},
		{"quit", "Closes the connection"},
		{".EXIT", "Closes the connection"},
		{".reconnect", "connects again"},
		{"PLAY", "PLAY <ch-layer>"},
		{"play", "PLAY <ch-layer>"},
		{"info system", "Show system information"},
		{"STATUS", "Show server status"},
		{"  cg  ", "template graphics"},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			if output := helpText(t, tt.topic); !strings.Contains(output, tt.want) {
				t.Errorf("help %q = %q, want it to contain %q", tt.topic, output, tt.want)
			}
		})
	}
}

func TestHelpTopicUnknown(t *testing.T) {
	var buf strings.Builder
	err := printHelp(&buf, "teleport")
	if err == nil {
		t.Fatal("printHelp() for an unknown topic should fail")
	}
	if !strings.Contains(err.Error(), "teleport") {
		t.Errorf("error = %q, want it to name the topic", err)
	}
	if buf.Len() != 0 {
		t.Errorf("printHelp() wrote %q for an unknown topic", buf.String())
	}
}

func TestFindDotCommand(t *testing.T) {
	for _, dc := range dotCommands {
		got, ok := findDotCommand(strings.TrimPrefix(dc.name, "."))
		if !ok || got.name != dc.name {
			t.Errorf("findDotCommand(%q) = %q, %v", dc.name, got.name, ok)
		}
	}
	if _, ok := findDotCommand(".nope"); ok {
		t.Error("findDotCommand(.nope) found something")
	}
}
