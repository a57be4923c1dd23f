package log

import "strings"

// Writer redirects Write requests to configured logger and level, one log entry per line.
type Writer struct {
	Logger Logger
	Level  Level
}

func (w *Writer) Write(p []byte) (n int, err error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\r\n"), "\n") {
		w.Logger.Log(w.Level, strings.TrimSuffix(line, "\r"))
	}

	return len(p), nil
}
