package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/casparctl/amcp/amcpprotocol"
)

// responseError reports a 4xx or 5xx answer from the server.
type responseError struct {
	response amcpprotocol.Response
}

func (e *responseError) Error() string {
	return fmt.Sprintf("server answered %q", e.response.Header())
}

func newSendCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "send <command...>",
		Short: "Send one AMCP command and print the response",
		Long: `Connect, send a single command, print the response and exit.

The words are joined with single spaces. The exit status is non-zero when
the server cannot be reached or answers with an error code.`,
		Example: `  amcp send VERSION
  amcp send PLAY 1-10 AMB LOOP
  amcp send --host playout1 INFO SYSTEM`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}
			return runSend(cfg, strings.Join(args, " "), cmd.OutOrStdout(), opts.plain)
		},
	}
}

// runSend connects without retrying, sends line and writes the response.
func runSend(cfg *Config, line string, out io.Writer, plain bool) error {
	device := newDevice(cfg)
	defer device.Close()

	linkUp := make(chan struct{})
	var once sync.Once
	device.SetResponseHandler(func(resp amcpprotocol.Response) {
		if resp.IsConnectionState() && resp.Connected {
			once.Do(func() { close(linkUp) })
		}
	})

	device.Connect(false)
	select {
	case <-linkUp:
	case <-time.After(cfg.DialTimeout):
		return fmt.Errorf("could not connect to %s", device.Endpoint())
	}

	resp, err := device.SendWithTimeout(line, cfg.CommandTimeout)
	if err != nil {
		return fmt.Errorf("%s: %w", line, err)
	}

	fmt.Fprint(out, formatResponse(newStyles(out, plain), resp))
	if resp.IsError() {
		return &responseError{response: resp}
	}
	return nil
}
