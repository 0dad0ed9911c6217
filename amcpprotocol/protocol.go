// AMCP wire format.
//
// Protocol Format:
//
//	Request (client -> server):  <COMMAND> [arguments...]\r\n
//	Response header:             <code> <COMMAND> [<WORD2>] <text>\r\n
//	Response body:               zero, one, or many data lines
//	Terminator:                  \r\n (blank line) for multi-line bodies
//
// Example Session:
//
//	C: VERSION
//	S: 201 VERSION OK
//	S: 2.3.0 Stable
//	C: PLAY 1-10 AMB
//	S: 202 PLAY OK
//	C: CLS
//	S: 200 CLS OK
//	S: "AMB" MOVIE 6445960 20170413141427 268 1/25
//	S: "GO1080P25" MOVIE 16694084 20170413141427 445 1/25
//	S:

package amcpprotocol

import "time"

// Protocol constants.
const (
	// Terminator ends every line in both directions.
	Terminator = "\r\n"

	// DefaultPort is the TCP port the server listens on for AMCP.
	DefaultPort = 5250

	// RetryInterval is the delay between connection attempts made by the
	// connect-retry and reconnect loops.
	RetryInterval = 5 * time.Second

	// DialTimeout bounds a single TCP connection attempt.
	DialTimeout = 3 * time.Second

	// CommandTimeout is the default time Send waits for a response.
	CommandTimeout = 10 * time.Second

	// readBufferSize is the size of a single socket read.
	readBufferSize = 4096
)

// Status codes returned in the response header.
const (
	StatusInfo             = 100
	StatusInfoData         = 101
	StatusOKMultiLine      = 200
	StatusOKOneLine        = 201
	StatusOK               = 202
	StatusCommandNotFound  = 400
	StatusIllegalChannel   = 401
	StatusParameterMissing = 402
	StatusIllegalParameter = 403
	StatusMediaNotFound    = 404
	StatusFailed           = 500
	StatusInternalError    = 501
	StatusMediaUnreadable  = 502
	StatusAccessError      = 503
)

var statusText = map[int]string{
	StatusInfo:             "INFO",
	StatusInfoData:         "INFO",
	StatusOKMultiLine:      "OK",
	StatusOKOneLine:        "OK",
	StatusOK:               "OK",
	StatusCommandNotFound:  "ERROR",
	StatusIllegalChannel:   "ILLEGAL VIDEO_CHANNEL",
	StatusParameterMissing: "PARAMETER MISSING",
	StatusIllegalParameter: "ILLEGAL PARAMETER",
	StatusMediaNotFound:    "MEDIA FILE NOT FOUND",
	StatusFailed:           "FAILED",
	StatusInternalError:    "INTERNAL SERVER ERROR",
	StatusMediaUnreadable:  "MEDIA FILE UNREADABLE",
	StatusAccessError:      "ACCESS ERROR",
}

// StatusText returns the server's text for a status code, or an empty
// string if the code is unknown.
func StatusText(code int) string {
	return statusText[code]
}
