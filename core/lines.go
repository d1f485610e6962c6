package core

import (
	"io"
)

// StreamReader is the LineReader for input that isn't a terminal. It reads
// one byte at a time and stops at each newline, so programs the shell
// spawns get the rest of the stream untouched.
type StreamReader struct {
	r   io.Reader
	buf [1]byte
}

var _ LineReader = (*StreamReader)(nil)

// NewStreamReader reads lines from r.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{r: r}
}

// SetPrompt implements LineReader, no prompt is printed.
func (r *StreamReader) SetPrompt(string) {}

// Readline implements LineReader. The newline is not included. A final line
// without a newline is returned before io.EOF.
func (r *StreamReader) Readline() (string, error) {
	var line []byte
	for {
		n, err := r.r.Read(r.buf[:])
		if n > 0 {
			if r.buf[0] == '\n' {
				return string(line), nil
			}
			line = append(line, r.buf[0])
		}

		switch {
		case err == io.EOF && len(line) > 0:
			return string(line), nil
		case err != nil:
			return "", err
		}
	}
}
