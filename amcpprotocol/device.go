package amcpprotocol

import (
	"context"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ResponseHandler receives connection-state changes and every completed
// response that was not claimed by Send. It runs on the connection's reader
// goroutine; the next line is not parsed until it returns.
type ResponseHandler func(resp Response)

// ParseErrorHandler receives diagnostics for lines the parser rejected.
type ParseErrorHandler func(err error)

// Option configures a Device.
type Option func(*Device)

// WithRetryInterval sets the delay between connection attempts.
func WithRetryInterval(interval time.Duration) Option {
	return func(d *Device) {
		if interval > 0 {
			d.retryInterval = interval
		}
	}
}

// WithDialTimeout sets the timeout of a single connection attempt.
func WithDialTimeout(timeout time.Duration) Option {
	return func(d *Device) {
		if timeout > 0 {
			d.dialer.Timeout = timeout
		}
	}
}

// WithLogger sets the logger. The device adds its endpoint as a field.
func WithLogger(entry *logrus.Entry) Option {
	return func(d *Device) {
		if entry != nil {
			d.log = entry
		}
	}
}

// sendResult carries the outcome of a Send back to the waiting caller.
type sendResult struct {
	response Response
	err      error
}

// Device is a client connection to one AMCP server.
//
// The device owns its TCP connection. Bytes read from it are framed into
// lines and fed to a ResponseParser; every completed response and every
// link up/down change is reported to the ResponseHandler. The protocol is
// half-duplex: callers must wait for the response to one command before
// writing the next.
//
// Connection failures are never fatal. Connect(true) keeps retrying until a
// connection is made, and a dropped connection is retried every
// RetryInterval unless Disconnect(false) or Close was called.
//
// Thread Safety:
// All methods are safe for concurrent use. Handlers must not call Close.
type Device struct {
	mu sync.Mutex

	address string
	port    int

	conn       net.Conn
	connected  bool
	reconnect  bool
	dialing    bool
	closed     bool
	dialCancel context.CancelFunc

	framer    *LineFramer
	parser    *ResponseParser
	completed []Response

	// Waiter of an in-flight Send, if any.
	pending chan sendResult

	responseHandler   ResponseHandler
	parseErrorHandler ParseErrorHandler

	connectLoop   *retryLoop
	reconnectLoop *retryLoop
	retryInterval time.Duration

	dialer net.Dialer
	log    *logrus.Entry

	// Reader and dial goroutines.
	wg sync.WaitGroup
}

// NewDevice creates a device for the server at address:port. No connection
// is made until Connect is called.
func NewDevice(address string, port int, opts ...Option) *Device {
	d := &Device{
		address:       address,
		port:          port,
		reconnect:     true,
		framer:        NewLineFramer(),
		retryInterval: RetryInterval,
		dialer:        net.Dialer{Timeout: DialTimeout},
		log:           logrus.NewEntry(logrus.StandardLogger()),
	}
	d.parser = NewResponseParser(func(resp Response) {
		d.completed = append(d.completed, resp)
	})

	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.WithField("device", d.Endpoint())

	return d
}

// Address returns the configured host.
func (d *Device) Address() string {
	return d.address
}

// Port returns the configured port.
func (d *Device) Port() int {
	return d.port
}

// Endpoint returns the host:port pair dialed by the device.
func (d *Device) Endpoint() string {
	return net.JoinHostPort(d.address, strconv.Itoa(d.port))
}

// IsConnected returns true if the device currently has a live connection.
func (d *Device) IsConnected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connected
}

// State returns the current parser state.
func (d *Device) State() ParseState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.parser.State()
}

// SetResponseHandler sets the callback for responses and connection-state
// changes.
func (d *Device) SetResponseHandler(handler ResponseHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.responseHandler = handler
}

// SetParseErrorHandler sets the callback for rejected lines.
func (d *Device) SetParseErrorHandler(handler ParseErrorHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.parseErrorHandler = handler
}

// Connect starts a connection attempt. It returns immediately; the result
// is reported through the ResponseHandler. If retryIfUnreachable is true,
// further attempts are made every RetryInterval until one succeeds.
//
// Connect does nothing if the device is already connected.
func (d *Device) Connect(retryIfUnreachable bool) {
	d.mu.Lock()
	if d.closed || d.connected {
		d.mu.Unlock()
		return
	}
	if retryIfUnreachable && !d.connectLoop.running() {
		d.connectLoop = startRetryLoop("connect", d.retryInterval, d.retryConnect)
		d.logLoopStarted(d.connectLoop)
	}
	d.mu.Unlock()

	d.dial()
}

func (d *Device) retryConnect() bool {
	d.mu.Lock()
	stop := d.closed || d.connected
	d.mu.Unlock()
	if stop {
		return false
	}
	d.dial()
	return true
}

// Disconnect records whether the device should reconnect and closes the
// connection. With shouldReconnect false all retrying stops.
func (d *Device) Disconnect(shouldReconnect bool) {
	d.mu.Lock()
	d.reconnect = shouldReconnect
	if !shouldReconnect {
		d.stopRetryingLocked()
	}
	conn := d.conn
	d.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

// Reconnect makes a connection attempt and keeps retrying every
// RetryInterval. It does nothing when connected or when reconnecting was
// disabled by Disconnect(false).
func (d *Device) Reconnect() {
	d.mu.Lock()
	if d.closed || d.connected || !d.reconnect {
		d.mu.Unlock()
		return
	}
	d.startReconnectLoopLocked()
	d.mu.Unlock()

	d.dial()
}

func (d *Device) retryReconnect() bool {
	d.mu.Lock()
	stop := d.closed || d.connected || !d.reconnect
	d.mu.Unlock()
	if stop {
		return false
	}
	d.dial()
	return true
}

func (d *Device) startReconnectLoopLocked() {
	if d.reconnectLoop.running() {
		return
	}
	d.reconnectLoop = startRetryLoop("reconnect", d.retryInterval, d.retryReconnect)
	d.logLoopStarted(d.reconnectLoop)
}

func (d *Device) logLoopStarted(l *retryLoop) {
	d.log.WithFields(logrus.Fields{
		"loop":     l.name,
		"interval": d.retryInterval,
	}).Debug("retry loop started")
}

// stopRetryingLocked cancels both retry loops and any dial in progress.
func (d *Device) stopRetryingLocked() {
	d.connectLoop.stop()
	d.reconnectLoop.stop()
	if d.dialCancel != nil {
		d.dialCancel()
		d.dialCancel = nil
	}
}

// dial starts one asynchronous connection attempt unless one is already in
// flight.
func (d *Device) dial() {
	d.mu.Lock()
	if d.closed || d.connected || d.dialing {
		d.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.dialing = true
	d.dialCancel = cancel
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		defer cancel()

		d.log.Debug("connecting")
		conn, err := d.dialer.DialContext(ctx, "tcp", d.Endpoint())
		if err != nil {
			d.mu.Lock()
			d.dialing = false
			d.dialCancel = nil
			d.mu.Unlock()
			d.log.WithError(err).Debug("connection attempt failed")
			return
		}
		d.transportConnected(conn)
	}()
}

func (d *Device) transportConnected(conn net.Conn) {
	d.mu.Lock()
	d.dialing = false
	d.dialCancel = nil
	if d.closed || d.connected {
		d.mu.Unlock()
		conn.Close()
		return
	}

	d.conn = conn
	d.connected = true
	d.framer.Reset()
	d.parser.Reset()
	d.parser.command = CmdConnectionState
	d.connectLoop.stop()
	d.reconnectLoop.stop()

	d.wg.Add(1)
	go d.readLoop(conn)
	d.mu.Unlock()

	d.log.Info("connected")
	d.dispatch(newConnectionStateResponse(true))
}

func (d *Device) transportDisconnected(conn net.Conn, cause error) {
	d.mu.Lock()
	if d.conn != conn {
		d.mu.Unlock()
		return
	}
	conn.Close()
	d.conn = nil
	d.connected = false
	// A response cut off by the drop never completes.
	d.framer.Reset()
	d.parser.Reset()
	d.parser.command = CmdConnectionState

	pending := d.pending
	d.pending = nil

	if d.reconnect && !d.closed {
		d.startReconnectLoopLocked()
	}
	d.mu.Unlock()

	if pending != nil {
		pending <- sendResult{err: NewConnectionError("disconnected", cause)}
	}

	d.log.WithError(cause).Info("disconnected")
	d.dispatch(newConnectionStateResponse(false))
}

// readLoop feeds socket reads to the framer and parser until the
// connection fails or is closed.
func (d *Device) readLoop(conn net.Conn) {
	defer d.wg.Done()

	buf := make([]byte, readBufferSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			d.processChunk(buf[:n])
		}
		if err != nil {
			d.transportDisconnected(conn, err)
			return
		}
	}
}

// processChunk frames one socket read and parses the resulting lines.
// Completed responses are dispatched before the next line is parsed.
func (d *Device) processChunk(chunk []byte) {
	d.mu.Lock()
	lines := d.framer.Feed(chunk)
	d.mu.Unlock()

	for _, line := range lines {
		d.mu.Lock()
		err := d.parser.Parse(line)
		completed := d.completed
		d.completed = nil
		errHandler := d.parseErrorHandler
		d.mu.Unlock()

		if err != nil {
			d.log.WithError(err).Warn("discarding line")
			if errHandler != nil {
				errHandler(err)
			}
		}
		for _, resp := range completed {
			d.dispatch(resp)
		}
	}
}

// dispatch hands a response to a waiting Send if there is one, and to the
// ResponseHandler otherwise. Connection-state changes always go to the
// handler.
func (d *Device) dispatch(resp Response) {
	d.mu.Lock()
	handler := d.responseHandler
	var waiter chan sendResult
	if !resp.IsConnectionState() && d.pending != nil {
		waiter = d.pending
		d.pending = nil
		d.parser.Reset()
	}
	d.mu.Unlock()

	if !resp.IsConnectionState() {
		d.log.WithFields(logrus.Fields{
			"code":    resp.Code,
			"command": resp.Command,
			"lines":   len(resp.Lines),
		}).Debug("response")
	}

	if waiter != nil {
		waiter <- sendResult{response: resp}
		return
	}
	if handler != nil {
		handler(resp)
	}
}

// Write sends one command line. Surrounding whitespace is trimmed and CRLF
// is appended. It returns ErrNotConnected without doing any I/O when the
// device is not connected.
func (d *Device) Write(message string) error {
	d.mu.Lock()
	if !d.connected {
		d.mu.Unlock()
		return ErrNotConnected
	}
	conn := d.conn
	d.mu.Unlock()

	line := strings.TrimSpace(message) + Terminator
	if _, err := conn.Write([]byte(line)); err != nil {
		return NewConnectionError("failed to send command", err)
	}
	d.log.WithField("command", strings.TrimSpace(message)).Debug("sent")
	return nil
}

// Send writes a command and waits for its response using the default
// CommandTimeout.
func (d *Device) Send(message string) (Response, error) {
	return d.SendWithTimeout(message, CommandTimeout)
}

// SendWithTimeout sends a command with a custom timeout.
func (d *Device) SendWithTimeout(message string, timeout time.Duration) (Response, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return d.SendWithContext(ctx, message)
}

// SendWithContext writes a command and waits for the next completed
// response. The response is not passed to the ResponseHandler, and the
// parser is reset once it is delivered, so callers using Send do not need
// to call Reset.
func (d *Device) SendWithContext(ctx context.Context, message string) (Response, error) {
	d.mu.Lock()
	if !d.connected {
		d.mu.Unlock()
		return Response{}, ErrNotConnected
	}
	if d.pending != nil {
		d.mu.Unlock()
		return Response{}, ErrBusy
	}
	waiter := make(chan sendResult, 1)
	d.pending = waiter
	d.mu.Unlock()

	if err := d.Write(message); err != nil {
		d.clearPending(waiter)
		return Response{}, err
	}

	select {
	case result := <-waiter:
		return result.response, result.err
	case <-ctx.Done():
		d.clearPending(waiter)
		return Response{}, ErrTimeout
	}
}

func (d *Device) clearPending(waiter chan sendResult) {
	d.mu.Lock()
	if d.pending == waiter {
		d.pending = nil
	}
	d.mu.Unlock()
}

// Reset clears the accumulated response and returns the parser to
// ExpectingHeader. Consumers of the ResponseHandler call it after each
// protocol response.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.parser.Reset()
}

// Close stops all retrying, closes the connection and waits for the
// device's goroutines to exit. The device cannot be reused.
func (d *Device) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	d.closed = true
	d.reconnect = false
	d.stopRetryingLocked()
	conn := d.conn
	connectLoop, reconnectLoop := d.connectLoop, d.reconnectLoop
	d.mu.Unlock()

	if conn != nil {
		conn.Close()
	}

	connectLoop.wait()
	reconnectLoop.wait()
	d.wg.Wait()
	return nil
}
