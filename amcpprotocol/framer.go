package amcpprotocol

import (
	"bytes"
	"strings"
)

// Line is one logical line produced by the LineFramer.
type Line struct {
	// Text is the line content without the terminator.
	Text string

	// Segment is the terminated segment Text was split from. A segment
	// made of the bare terminator is reduced to "", which is how a blank
	// line on the wire is told apart from the trailing empty piece that
	// follows every text line.
	Segment string
}

// LineFramer reassembles socket reads into logical lines.
//
// Bytes are buffered until a CRLF arrives. Each terminated segment is split
// on CRLF: "text\r\n" yields "text" followed by an empty line, while a bare
// "\r\n" yields exactly one empty line. The parser relies on this to tell
// the end of a data line from a blank terminator line. Invalid UTF-8 is
// replaced with U+FFFD.
type LineFramer struct {
	pending []byte
}

// NewLineFramer creates an empty framer.
func NewLineFramer() *LineFramer {
	return &LineFramer{}
}

// Feed appends chunk to the pending buffer and returns every logical line
// that is now complete. The unterminated remainder is kept for the next call.
func (f *LineFramer) Feed(chunk []byte) []Line {
	f.pending = append(f.pending, chunk...)

	var lines []Line
	term := []byte(Terminator)
	for {
		idx := bytes.Index(f.pending, term)
		if idx < 0 {
			break
		}
		end := idx + len(term)
		segment := strings.ToValidUTF8(string(f.pending[:end]), "\uFFFD")
		f.pending = f.pending[end:]

		if segment == Terminator {
			lines = append(lines, Line{})
			continue
		}
		for _, text := range strings.Split(segment, Terminator) {
			lines = append(lines, Line{Text: text, Segment: segment})
		}
	}

	if len(f.pending) == 0 {
		f.pending = nil
	}
	return lines
}

// Pending returns the unterminated remainder.
func (f *LineFramer) Pending() string {
	return string(f.pending)
}

// Reset drops any buffered partial line.
func (f *LineFramer) Reset() {
	f.pending = nil
}
