package amcpprotocol

import (
	"fmt"
	"regexp"
	"strconv"
)

// ParseState is the response-shape state of a ResponseParser.
type ParseState int

const (
	// ExpectingHeader waits for the status line of the next response.
	ExpectingHeader ParseState = iota
	// ExpectingOneLine collects a header-only response.
	ExpectingOneLine
	// ExpectingTwoLine collects a header plus exactly one data line.
	ExpectingTwoLine
	// ExpectingMultiLine collects data lines up to a blank terminator.
	ExpectingMultiLine
)

func (s ParseState) String() string {
	switch s {
	case ExpectingHeader:
		return "ExpectingHeader"
	case ExpectingOneLine:
		return "ExpectingOneLine"
	case ExpectingTwoLine:
		return "ExpectingTwoLine"
	case ExpectingMultiLine:
		return "ExpectingMultiLine"
	default:
		return fmt.Sprintf("ParseState(%d)", int(s))
	}
}

// CompletionFunc receives each completed response.
type CompletionFunc func(resp Response)

// ResponseParser turns logical lines into responses.
//
// The parser does not reset itself after a response completes. The owner
// must call Reset before the next response starts, otherwise the next
// header is appended to the previous response.
type ResponseParser struct {
	state    ParseState
	code     int
	command  Command
	lines    []string
	previous string

	onComplete CompletionFunc

	// Header tokens are split on every single whitespace character, so
	// repeated separators produce empty tokens.
	separator *regexp.Regexp
}

// NewResponseParser creates a parser that reports completed responses to
// onComplete. onComplete may be nil.
func NewResponseParser(onComplete CompletionFunc) *ResponseParser {
	return &ResponseParser{
		state:      ExpectingHeader,
		command:    CmdNone,
		onComplete: onComplete,
		separator:  regexp.MustCompile(`\s`),
	}
}

// Parse feeds one logical line to the state machine.
//
// A header whose first token is not a number returns a *ParseError; the
// line is discarded and the parser keeps waiting for a header.
func (p *ResponseParser) Parse(line Line) error {
	switch p.state {
	case ExpectingHeader:
		return p.parseHeader(line.Text)
	case ExpectingOneLine:
		p.parseOneLine(line.Text)
	case ExpectingTwoLine:
		p.parseTwoLine(line.Text)
	case ExpectingMultiLine:
		p.parseMultiLine(line)
	default:
		return &ParseError{Kind: ErrKindUnexpectedState, Value: line.Text, Message: p.state.String()}
	}
	p.previous = line.Text
	return nil
}

func (p *ResponseParser) parseHeader(line string) error {
	if line == "" {
		return nil
	}

	tokens := p.separator.Split(line, -1)

	code, err := strconv.Atoi(tokens[0])
	if err != nil {
		return newMalformedHeaderError(line, "status code is not a number")
	}
	p.code = code

	switch code {
	case StatusOKMultiLine:
		p.state = ExpectingMultiLine
	case StatusOKOneLine, StatusCommandNotFound:
		p.state = ExpectingTwoLine
	default:
		p.state = ExpectingOneLine
	}

	p.command = CmdNone
	if len(tokens) > 1 {
		p.command = Classify(tokens[1])
	}
	if len(tokens) > 3 {
		p.command = Classify(tokens[1] + " " + tokens[2])
	}

	p.lines = append(p.lines, line)
	return nil
}

func (p *ResponseParser) parseOneLine(line string) {
	if line != "" {
		p.lines = append(p.lines, line)
	} else if len(p.lines) > 0 {
		p.complete()
	}
}

func (p *ResponseParser) parseTwoLine(line string) {
	if line != "" {
		p.lines = append(p.lines, line)
	} else if len(p.lines) > 1 {
		p.complete()
	}
}

// parseMultiLine completes only on a blank wire line that follows an empty
// logical line: the trailing piece of the last data line, or another blank.
func (p *ResponseParser) parseMultiLine(line Line) {
	if line.Text != "" {
		p.lines = append(p.lines, line.Text)
	} else if line.Segment == "" && p.previous == "" {
		p.complete()
	}
}

func (p *ResponseParser) complete() {
	if p.onComplete == nil {
		return
	}
	p.onComplete(p.Response())
}

// Response returns a copy of the response accumulated so far.
func (p *ResponseParser) Response() Response {
	lines := make([]string, len(p.lines))
	copy(lines, p.lines)
	return Response{Code: p.code, Command: p.command, Lines: lines}
}

// State returns the current parse state.
func (p *ResponseParser) State() ParseState {
	return p.state
}

// Reset clears the status code, accumulated lines and command, and returns
// the parser to ExpectingHeader.
func (p *ResponseParser) Reset() {
	p.code = 0
	p.lines = nil
	p.command = CmdNone
	p.state = ExpectingHeader
}
