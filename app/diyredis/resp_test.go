package diyredis

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	reader := bufio.NewReader(bytes.NewBufferString("*2\r\n$4\r\nECHO\r\n$2\r\nhi\r\n"))
	cmd, err := ParseCommand(reader)
	require.NoError(t, err)
	require.Equal(t, []string{"ECHO", "hi"}, cmd)
}

func TestParseCommandRejectsNonArray(t *testing.T) {
	reader := bufio.NewReader(bytes.NewBufferString("$4\r\nPING\r\n"))
	_, err := ParseCommand(reader)
	require.Error(t, err)
}

func BenchmarkParseCommand(b *testing.B) {
	raw := "*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n"
	for range b.N {
		reader := bufio.NewReader(bytes.NewBufferString(raw))
		ParseCommand(reader)
	}
}
