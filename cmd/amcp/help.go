package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/casparctl/amcp/amcpprotocol"
)

// dotCommand is a console command handled locally, never sent to the server.
type dotCommand struct {
	name    string
	usage   string
	summary string
	detail  string
}

var dotCommands = []dotCommand{
	{
		name:    ".help",
		usage:   ".help [topic]",
		summary: "Show help (or help for a command)",
		detail: `    Without a topic, lists console and AMCP commands.
    With a topic, explains it: .help .status, .help PLAY, .help cg`,
	},
	{
		name:    ".status",
		usage:   ".status",
		summary: "Show connection and parser state",
		detail: `    Prints the server endpoint, whether the link is up and the state
    of the response parser.`,
	},
	{
		name:    ".connect",
		usage:   ".connect",
		summary: "Connect, retrying until the server answers",
		detail: `    Starts connecting to the configured server. Attempts repeat every
    retry interval until the link comes up.`,
	},
	{
		name:    ".disconnect",
		usage:   ".disconnect",
		summary: "Drop the link and stay offline",
		detail: `    Closes the connection and stops all retries. Use .connect to go
    back online.`,
	},
	{
		name:    ".reconnect",
		usage:   ".reconnect",
		summary: "Drop the link and reconnect",
		detail: `    Closes the connection if it is up and connects again. When offline,
    starts reconnecting immediately.`,
	},
	{
		name:    ".quit",
		usage:   ".quit",
		summary: "Exit the console",
		detail:  `    Closes the connection and exits. Ctrl-D does the same.`,
	},
}

// commandHelp describes the AMCP commands the console recognizes.
var commandHelp = map[amcpprotocol.Command]string{
	amcpprotocol.CmdLoad:              "LOAD <ch-layer> <clip>                Load a clip and show its first frame",
	amcpprotocol.CmdLoadBG:            "LOADBG <ch-layer> <clip> [AUTO]       Load a clip in the background",
	amcpprotocol.CmdPlay:              "PLAY <ch-layer> [clip]                Play the loaded or named clip",
	amcpprotocol.CmdStop:              "STOP <ch-layer>                       Stop playback",
	amcpprotocol.CmdClear:             "CLEAR <ch[-layer]>                    Remove everything from a channel or layer",
	amcpprotocol.CmdCall:              "CALL <ch-layer> <param>               Call a method on the running producer",
	amcpprotocol.CmdSwap:              "SWAP <ch[-layer]> <ch[-layer]>        Swap two layers or channels",
	amcpprotocol.CmdAdd:               "ADD <ch> <consumer> [params]          Add a consumer to a channel",
	amcpprotocol.CmdRemove:            "REMOVE <ch> <consumer>                Remove a consumer from a channel",
	amcpprotocol.CmdSet:               "SET <ch> <var> <value>                Change a channel variable",
	amcpprotocol.CmdMixer:             "MIXER <ch-layer> <keyword> [params]   Change mixer settings",
	amcpprotocol.CmdCG:                "CG <ch-layer> <ADD|PLAY|STOP|...>     Control template graphics",
	amcpprotocol.CmdCLS:               "CLS                                   List media files",
	amcpprotocol.CmdCINF:              "CINF <clip>                           Show media file information",
	amcpprotocol.CmdTLS:               "TLS                                   List templates",
	amcpprotocol.CmdVersion:           "VERSION [component]                   Show server version",
	amcpprotocol.CmdInfo:              "INFO [ch[-layer]]                     Show channel information",
	amcpprotocol.CmdInfoSystem:        "INFO SYSTEM                           Show system information",
	amcpprotocol.CmdStatus:            "STATUS                                Show server status",
	amcpprotocol.CmdDataList:          "DATA LIST                             List stored datasets",
	amcpprotocol.CmdDataRetrieve:      "DATA RETRIEVE <name>                  Fetch a stored dataset",
	amcpprotocol.CmdThumbnailList:     "THUMBNAIL LIST                        List thumbnails",
	amcpprotocol.CmdThumbnailRetrieve: "THUMBNAIL RETRIEVE <clip>             Fetch a thumbnail (base64 PNG)",
}

// printHelp writes the overview, or the help for topic if one is given.
// A topic is an AMCP command in any case or a dot-command; the dot may be
// left off when the name is not also an AMCP command.
func printHelp(w io.Writer, topic string) error {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		printHelpOverview(w)
		return nil
	}

	if !strings.HasPrefix(topic, ".") {
		cmd := amcpprotocol.Classify(strings.ToUpper(topic))
		if text, ok := commandHelp[cmd]; ok {
			fmt.Fprintf(w, "  %s\n", text)
			return nil
		}
	}

	if dc, ok := findDotCommand(topic); ok {
		fmt.Fprintf(w, "  %s\n%s\n", dc.usage, dc.detail)
		return nil
	}

	return fmt.Errorf("no help for '%s'. Type .help to see available commands", topic)
}

func findDotCommand(name string) (dotCommand, bool) {
	key := strings.ToLower(name)
	if !strings.HasPrefix(key, ".") {
		key = "." + key
	}
	if key == ".exit" {
		key = ".quit"
	}
	for _, dc := range dotCommands {
		if dc.name == key {
			return dc, true
		}
	}
	return dotCommand{}, false
}

func printHelpOverview(w io.Writer) {
	fmt.Fprintln(w, "Console Commands:")
	for _, dc := range dotCommands {
		fmt.Fprintf(w, "  %-18s%s\n", dc.usage, dc.summary)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "AMCP Commands (sent to the server as typed):")
	for _, cmd := range amcpprotocol.Commands() {
		if text, ok := commandHelp[cmd]; ok {
			fmt.Fprintf(w, "  %s\n", text)
		}
	}
}
