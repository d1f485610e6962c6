package core

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/josephlewis42/tinysh/core/vos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamReader(t *testing.T) {
	input := strings.NewReader("echo one\n\nlast")
	r := NewStreamReader(input)

	line, err := r.Readline()
	require.NoError(t, err)
	assert.Equal(t, "echo one", line)
	assert.Equal(t, 5, input.Len(), "nothing past the newline is read")

	line, err = r.Readline()
	require.NoError(t, err)
	assert.Equal(t, "", line)

	line, err = r.Readline()
	require.NoError(t, err)
	assert.Equal(t, "last", line)

	_, err = r.Readline()
	assert.Equal(t, io.EOF, err)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("bad fd")
}

func TestStreamReader_error(t *testing.T) {
	_, err := NewStreamReader(failingReader{}).Readline()
	assert.EqualError(t, err, "bad fd")
}

func TestRun_streamSharesStdin(t *testing.T) {
	s, testOS := newTestShell(t, Options{})
	require.NoError(t, testOS.AddExecutable("/bin/cat", func(cmd *vos.Cmd) int {
		_, err := io.Copy(cmd.Stdout, cmd.Stdin)
		assert.NoError(t, err)
		return 0
	}))
	testOS.StdinBuf.WriteString("cat\nhello\nexit 3\n")

	status := s.Run(NewStreamReader(testOS.StdinBuf))

	assert.Equal(t, 0, status)
	assert.Equal(t, "hello\nexit 3\n", testOS.Output())
	assert.Empty(t, testOS.ErrOutput())
	assert.Equal(t, []string{"cat"}, s.History())
}
