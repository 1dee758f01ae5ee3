package agent

import (
	"bufio"
	"bytes"
	"io"
	"log/slog"
)

// dataPrefix marks protocol-bearing lines. Anything else on the stream is
// ignored.
const dataPrefix = "data: "

// decoderBufferSize is the initial buffer for the line reader. Lines can
// grow well past this (large tool inputs); bufio grows the buffer as needed.
const decoderBufferSize = 64 * 1024

// Decoder turns the raw response body into an ordered sequence of Events.
// It owns partial-line buffering: a logical line may span any number of
// reads, and a single read may carry zero, one, or many complete lines.
// The sequence is single-pass and not restartable; callers that need to
// replay events must persist them.
type Decoder struct {
	r   *bufio.Reader
	err error
}

// NewDecoder creates a Decoder over r. The Decoder assumes exclusive
// ownership of r for its lifetime.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReaderSize(r, decoderBufferSize)}
}

// Next returns the next decoded event, in arrival order. It skips lines
// without the data prefix and lines whose payload fails to parse (logged,
// never fatal). At end of stream it returns io.EOF; a trailing fragment
// without a terminating newline is not a complete line and is discarded.
func (d *Decoder) Next() (Event, error) {
	if d.err != nil {
		return nil, d.err
	}

	for {
		line, err := d.r.ReadBytes('\n')
		if err != nil {
			d.err = err
			if err == io.EOF && len(line) > 0 {
				slog.Debug("discarding truncated final line", "bytes", len(line))
			}
			return nil, err
		}

		line = trimLineEnding(line)
		if !bytes.HasPrefix(line, []byte(dataPrefix)) {
			continue
		}

		ev, perr := ParseEvent(line[len(dataPrefix):])
		if perr != nil {
			// Recoverable per-line fault: skip and keep decoding.
			slog.Warn("skipping malformed stream line", "err", perr)
			continue
		}
		if ev == nil {
			continue
		}
		return ev, nil
	}
}

// trimLineEnding strips the terminating newline and an optional preceding
// carriage return.
func trimLineEnding(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
	}
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line
}
