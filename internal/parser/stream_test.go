package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/texlog/texlog-go/pkg/texlog/diag"
)

func TestStream_SealsOnNextDiagnostic(t *testing.T) {
	s := NewStream(DefaultOptions())

	got, err := s.Push("Package foo Warning: one")
	require.NoError(t, err)
	assert.Empty(t, got, "first diagnostic is still open")

	got, err = s.Push("(foo) two")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.Push("! Boom.")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, diag.Warning, got[0].Kind)
	assert.Equal(t, "one two", got[0].Message())

	rest := s.Flush()
	require.Len(t, rest, 1)
	assert.Equal(t, diag.Error, rest[0].Kind)

	assert.Empty(t, s.Flush(), "flush is idempotent")
	assert.Equal(t, 1, s.Report().Errors)
	assert.Equal(t, 1, s.Report().Warnings)
}

func TestStream_MatchesParse(t *testing.T) {
	s := NewStream(DefaultOptions())
	var streamed []diag.Diagnostic
	for _, line := range strings.Split(sampleLog, "\n") {
		got, err := s.Push(line)
		require.NoError(t, err)
		streamed = append(streamed, got...)
	}
	streamed = append(streamed, s.Flush()...)

	r, err := Parse(strings.NewReader(sampleLog), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, r.Diagnostics, streamed)
}
