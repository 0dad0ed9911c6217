package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/casparctl/amcp/amcpprotocol"
)

// lineReader is the console's input source. LineEditor implements it.
type lineReader interface {
	GetLine(prompt string) (string, error)
}

// console runs the read-send-print loop against one device. Output from the
// loop and from the device's reader goroutine is serialized by mu.
type console struct {
	device  *amcpprotocol.Device
	input   lineReader
	out     io.Writer
	errOut  io.Writer
	styles  styles
	timeout time.Duration

	mu sync.Mutex
}

func newConsole(device *amcpprotocol.Device, input lineReader, out, errOut io.Writer, timeout time.Duration, plain bool) *console {
	if timeout <= 0 {
		timeout = amcpprotocol.CommandTimeout
	}
	return &console{
		device:  device,
		input:   input,
		out:     out,
		errOut:  errOut,
		styles:  newStyles(out, plain),
		timeout: timeout,
	}
}

// attach installs the console's handlers on its device.
func (c *console) attach() {
	c.device.SetResponseHandler(c.handleResponse)
	c.device.SetParseErrorHandler(c.handleParseError)
}

func (c *console) prompt() string {
	if c.device.IsConnected() {
		return fmt.Sprintf("[%s] > ", c.device.Endpoint())
	}
	return "[offline] > "
}

// run reads lines until .quit or end of input.
func (c *console) run() error {
	for {
		line, err := c.input.GetLine(c.prompt())
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.print("\n")
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if quit := c.runDotCommand(line); quit {
				return nil
			}
			continue
		}

		c.sendCommand(line)
	}
}

// runDotCommand handles a console command and reports whether to exit.
func (c *console) runDotCommand(line string) bool {
	fields := strings.Fields(line)
	name := strings.ToLower(fields[0])
	args := strings.Join(fields[1:], " ")

	switch name {
	case ".quit", ".exit":
		return true

	case ".help":
		var buf strings.Builder
		if err := printHelp(&buf, args); err != nil {
			c.printError(err.Error())
			return false
		}
		c.print(buf.String())

	case ".status":
		c.printStatus()

	case ".connect":
		if c.device.IsConnected() {
			c.print(fmt.Sprintf("Already connected to %s\n", c.device.Endpoint()))
			return false
		}
		c.print(fmt.Sprintf("Connecting to %s...\n", c.device.Endpoint()))
		c.device.Connect(true)

	case ".disconnect":
		c.device.Disconnect(false)

	case ".reconnect":
		wasConnected := c.device.IsConnected()
		c.device.Disconnect(true)
		if !wasConnected {
			c.print(fmt.Sprintf("Reconnecting to %s...\n", c.device.Endpoint()))
			c.device.Reconnect()
		}

	default:
		c.printError(fmt.Sprintf("Unknown command '%s'. Type .help to see available commands.", fields[0]))
	}
	return false
}

func (c *console) sendCommand(line string) {
	resp, err := c.device.SendWithTimeout(line, c.timeout)
	switch {
	case err == nil:
		c.print(formatResponse(c.styles, resp))
	case errors.Is(err, amcpprotocol.ErrNotConnected):
		c.printError(fmt.Sprintf("not connected to %s", c.device.Endpoint()))
	case errors.Is(err, amcpprotocol.ErrTimeout):
		c.printError(fmt.Sprintf("no response to '%s' within %s", line, c.timeout))
	default:
		c.printError(err.Error())
	}
}

func (c *console) printStatus() {
	link := c.styles.paint(c.styles.err, "down")
	if c.device.IsConnected() {
		link = c.styles.paint(c.styles.ok, "up")
	}
	c.print(fmt.Sprintf("Server:  %s\nLink:    %s\nParser:  %s\n",
		c.device.Endpoint(), link, c.device.State()))
}

// handleResponse receives link changes and responses no command was
// waiting for, such as the late answer to a command that timed out.
func (c *console) handleResponse(resp amcpprotocol.Response) {
	if resp.IsConnectionState() {
		if resp.Connected {
			c.print(c.styles.paint(c.styles.notice, fmt.Sprintf("\n*** Connected to %s", c.device.Endpoint())) + "\n")
		} else {
			c.print(c.styles.paint(c.styles.notice, fmt.Sprintf("\n*** Disconnected from %s", c.device.Endpoint())) + "\n")
		}
		return
	}

	c.device.Reset()
	c.print(c.styles.paint(c.styles.dim, "\n*** Unsolicited response") + "\n" + formatResponse(c.styles, resp))
}

func (c *console) handleParseError(err error) {
	c.printError(err.Error())
}

func (c *console) print(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	io.WriteString(c.out, s)
}

func (c *console) printError(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.errOut, "Error: %s\n", message)
}

// formatResponse renders the status line in the colour of its class,
// followed by the data lines as received.
func formatResponse(st styles, resp amcpprotocol.Response) string {
	var b strings.Builder
	b.WriteString(st.paint(st.header(resp), resp.Header()))
	b.WriteString("\n")
	for _, line := range resp.Data() {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
