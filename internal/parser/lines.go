package parser

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// LineReader reads log lines of any length.
type LineReader struct {
	r   *bufio.Reader
	err error
}

// NewLineReader returns a LineReader over r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReaderSize(r, 64*1024)}
}

// Next returns the next line without its "\n" or "\r\n" terminator. A last
// line without a terminator is returned as well. After the last line Next
// returns io.EOF; any other error is a read failure, and the incomplete
// line preceding it is discarded. Once Next fails it keeps failing.
func (lr *LineReader) Next() (string, error) {
	if lr.err != nil {
		return "", lr.err
	}

	line, err := lr.r.ReadString('\n')
	switch {
	case err == nil:
		return trimEOL(line), nil
	case errors.Is(err, io.EOF):
		lr.err = io.EOF
		if line == "" {
			return "", io.EOF
		}
		return trimEOL(line), nil
	default:
		lr.err = err
		return "", err
	}
}

func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
