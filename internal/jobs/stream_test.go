package jobs

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type failingWriter struct {
	writes int
}

func (writer *failingWriter) Write([]byte) (int, error) {
	writer.writes++
	return 0, errors.New("console closed")
}

func TestStreamSinkForwardsCompleteLines(testInstance *testing.T) {
	echo := &bytes.Buffer{}
	sink := StreamCapture{Policy: StreamPolicyLineBuffered, Echo: echo}.newSink()

	_, writeError := sink.Write([]byte("first\nsec"))
	require.NoError(testInstance, writeError)
	require.Equal(testInstance, "first\n", echo.String())

	_, writeError = sink.Write([]byte("ond\nthird"))
	require.NoError(testInstance, writeError)
	require.Equal(testInstance, "first\nsecond\n", echo.String())

	sink.flush()
	require.Equal(testInstance, "first\nsecond\nthird", echo.String())
	require.Equal(testInstance, "first\nsecond\nthird", sink.String())
}

func TestStreamSinkReadToCompletionNeverEchoes(testInstance *testing.T) {
	echo := &bytes.Buffer{}
	sink := StreamCapture{Policy: StreamPolicyReadToCompletion, Echo: echo}.newSink()

	_, writeError := sink.Write([]byte("warning\n"))
	require.NoError(testInstance, writeError)
	sink.flush()

	require.Empty(testInstance, echo.String())
	require.Equal(testInstance, "warning\n", sink.String())
}

func TestStreamSinkKeepsCapturingAfterEchoFailure(testInstance *testing.T) {
	echo := &failingWriter{}
	sink := StreamCapture{Policy: StreamPolicyLineBuffered, Echo: echo}.newSink()

	for _, line := range []string{"one\n", "two\n", "three\n"} {
		written, writeError := sink.Write([]byte(line))
		require.NoError(testInstance, writeError)
		require.Equal(testInstance, len(line), written)
	}
	sink.flush()

	require.Equal(testInstance, 1, echo.writes)
	require.Equal(testInstance, "one\ntwo\nthree\n", sink.String())
}
