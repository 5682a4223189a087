package jobs

import (
	"bytes"
	"io"
	"sync"
)

// StreamPolicy selects how a child process stream is surfaced while it runs.
type StreamPolicy int

// Stream policies.
const (
	// StreamPolicyReadToCompletion buffers the stream and surfaces it only once the process exits.
	StreamPolicyReadToCompletion StreamPolicy = iota
	// StreamPolicyLineBuffered echoes every complete line as soon as it arrives.
	StreamPolicyLineBuffered
)

// StreamCapture describes how one process stream is captured.
type StreamCapture struct {
	Policy StreamPolicy
	Echo   io.Writer
}

func (capture StreamCapture) newSink() *streamSink {
	sink := &streamSink{}
	if capture.Policy == StreamPolicyLineBuffered && capture.Echo != nil {
		sink.echo = capture.Echo
	}
	return sink
}

// streamSink accumulates a process stream and forwards complete lines to an echo writer.
// An echo failure stops echoing but never stops accumulation.
type streamSink struct {
	mutex     sync.Mutex
	buffer    bytes.Buffer
	pending   []byte
	echo      io.Writer
	echoError error
}

func (sink *streamSink) Write(data []byte) (int, error) {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()

	sink.buffer.Write(data)
	if sink.echo == nil {
		return len(data), nil
	}

	sink.pending = append(sink.pending, data...)
	for {
		newlineIndex := bytes.IndexByte(sink.pending, '\n')
		if newlineIndex < 0 {
			break
		}
		sink.forward(sink.pending[:newlineIndex+1])
		sink.pending = sink.pending[newlineIndex+1:]
	}
	return len(data), nil
}

// flush echoes a trailing line that was not newline terminated.
func (sink *streamSink) flush() {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()

	if sink.echo != nil && len(sink.pending) > 0 {
		sink.forward(sink.pending)
		sink.pending = nil
	}
}

func (sink *streamSink) forward(line []byte) {
	if sink.echoError != nil {
		return
	}
	if _, writeError := sink.echo.Write(line); writeError != nil {
		sink.echoError = writeError
	}
}

func (sink *streamSink) String() string {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()
	return sink.buffer.String()
}
