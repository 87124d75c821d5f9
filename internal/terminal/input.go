package terminal

import (
	"bufio"
	"io"
	"strings"
)

// Reader reads user input one line at a time
type Reader struct {
	r *bufio.Reader
}

// NewReader wraps r for line input
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// ReadLine reads a line of input from the user. Only the line terminator is
// removed; the text is otherwise returned as typed.
func (r *Reader) ReadLine() (string, error) {
	input, err := r.r.ReadString('\n')
	if err != nil && !(err == io.EOF && input != "") {
		return "", err
	}
	input = strings.TrimSuffix(input, "\n")
	return strings.TrimSuffix(input, "\r"), nil
}
