package parser

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, lr *LineReader) ([]string, error) {
	t.Helper()
	var out []string
	for {
		line, err := lr.Next()
		if err != nil {
			return out, err
		}
		out = append(out, line)
	}
}

func TestLineReader(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: nil},
		{name: "terminated", input: "a\nb\n", want: []string{"a", "b"}},
		{name: "last line unterminated", input: "a\nb", want: []string{"a", "b"}},
		{name: "crlf", input: "a\r\nb\r\n", want: []string{"a", "b"}},
		{name: "blank lines kept", input: "\n\nx\n", want: []string{"", "", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readAll(t, NewLineReader(strings.NewReader(tt.input)))
			assert.ErrorIs(t, err, io.EOF)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLineReader_NoLengthLimit(t *testing.T) {
	long := strings.Repeat("z", 5<<20)
	got, err := readAll(t, NewLineReader(strings.NewReader("a\n"+long+"\nb\n")))
	assert.ErrorIs(t, err, io.EOF)
	require.Len(t, got, 3)
	assert.Equal(t, long, got[1])
	assert.Equal(t, "b", got[2])
}

func TestLineReader_ReadErrorIsSticky(t *testing.T) {
	lr := NewLineReader(&failingReader{data: strings.NewReader("ok\npartial")})

	line, err := lr.Next()
	require.NoError(t, err)
	assert.Equal(t, "ok", line)

	_, err = lr.Next()
	require.Error(t, err)
	assert.False(t, errors.Is(err, io.EOF))

	_, again := lr.Next()
	assert.Equal(t, err, again)
}
