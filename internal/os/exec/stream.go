package exec

import (
	"bufio"
	"io"
	"iter"
	"os"
	"strings"
	"sync"

	"github.com/kilnworks/kiln/internal/errors"
)

// stream buffers the lines of one redirected output stream. Lines are either delivered to the data
// callback as they arrive, or queued for a single consumer of the sequence.
type stream struct {
	name   string
	reader *os.File
	onData func(DataReceived)
	mirror func(line string)

	mu       sync.Mutex
	cond     *sync.Cond
	lines    []string
	closed   bool
	consumed bool
}

func newStream(name string, reader *os.File, onData func(DataReceived), mirror func(string)) *stream {
	stream := &stream{
		name:   name,
		reader: reader,
		onData: onData,
		mirror: mirror,
	}
	stream.cond = sync.NewCond(&stream.mu)

	if onData != nil {
		stream.consumed = true
	}

	return stream
}

// pump reads the stream until EOF. Lines have no length limit. It must run in its own goroutine.
func (stream *stream) pump() error {
	defer stream.finish()

	reader := bufio.NewReader(stream.reader)

	for {
		line, err := reader.ReadString('\n')

		if line != "" {
			stream.deliver(strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"))
		}

		if err == nil {
			continue
		}

		if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
			return nil
		}

		return errors.Errorf("failed to read %s: %w", stream.name, err)
	}
}

func (stream *stream) deliver(line string) {
	if stream.onData != nil {
		stream.onData(DataReceived{Data: line})
		return
	}

	stream.mu.Lock()
	stream.lines = append(stream.lines, line)
	stream.mu.Unlock()
	stream.cond.Broadcast()
}

func (stream *stream) finish() {
	if stream.onData != nil {
		stream.onData(DataReceived{EOF: true})
	}

	stream.mu.Lock()
	stream.closed = true
	stream.mu.Unlock()
	stream.cond.Broadcast()

	stream.reader.Close() //nolint:errcheck
}

// outputCopy copies a child output that is not redirected to the launcher writer.
type outputCopy struct {
	reader *os.File
	writer io.Writer
}

func (output *outputCopy) pump() error {
	defer output.reader.Close() //nolint:errcheck

	if _, err := io.Copy(output.writer, output.reader); err != nil && !errors.Is(err, os.ErrClosed) {
		return errors.Errorf("failed to copy output: %w", err)
	}

	return nil
}

// seq hands the stream to its single consumer.
func (stream *stream) seq() (iter.Seq[string], error) {
	stream.mu.Lock()
	defer stream.mu.Unlock()

	if stream.consumed {
		return nil, errors.Errorf("%s: %w", stream.name, ErrStreamConsumed)
	}

	stream.consumed = true

	return func(yield func(string) bool) {
		for {
			stream.mu.Lock()

			for len(stream.lines) == 0 && !stream.closed {
				stream.cond.Wait()
			}

			if len(stream.lines) == 0 {
				stream.mu.Unlock()
				return
			}

			line := stream.lines[0]
			stream.lines = stream.lines[1:]
			stream.mu.Unlock()

			stream.mirror(line)

			if !yield(line) {
				return
			}
		}
	}, nil
}
