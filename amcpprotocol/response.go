package amcpprotocol

import "strings"

// Response is a completed response cycle or a connection-state change.
//
// For protocol responses Lines holds the header line followed by the data
// lines in arrival order. For CmdConnectionState notifications Code is 0,
// Lines is empty, and Connected reports the new link state.
type Response struct {
	Code      int
	Command   Command
	Lines     []string
	Connected bool
}

// newConnectionStateResponse creates a link up/down notification.
func newConnectionStateResponse(connected bool) Response {
	return Response{Command: CmdConnectionState, Connected: connected}
}

// IsConnectionState reports whether r is a link up/down notification.
func (r Response) IsConnectionState() bool {
	return r.Command == CmdConnectionState
}

// IsInfo returns true for 1xx codes.
func (r Response) IsInfo() bool {
	return r.Code >= 100 && r.Code < 200
}

// IsOK returns true for 2xx codes.
func (r Response) IsOK() bool {
	return r.Code >= 200 && r.Code < 300
}

// IsError returns true for 4xx and 5xx codes.
func (r Response) IsError() bool {
	return r.Code >= 400 && r.Code < 600
}

// Header returns the header line, or "" if there is none.
func (r Response) Header() string {
	if len(r.Lines) == 0 {
		return ""
	}
	return r.Lines[0]
}

// Data returns the lines after the header.
func (r Response) Data() []string {
	if len(r.Lines) < 2 {
		return nil
	}
	return r.Lines[1:]
}

// Text returns all lines joined with newlines.
func (r Response) Text() string {
	return strings.Join(r.Lines, "\n")
}
