package format

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/kilnworks/kiln/internal/errors"
	"github.com/kilnworks/kiln/pkg/log"
)

// JSONFormatter writes every entry as a single JSON object.
type JSONFormatter struct {
	opts Options
}

// NewJSONFormatter returns a new JSONFormatter.
func NewJSONFormatter(opts Options) *JSONFormatter {
	if opts.TimestampFormat == "" {
		opts.TimestampFormat = time.RFC3339Nano
	}

	return &JSONFormatter{opts: opts}
}

// Format implements log.Formatter.
func (f *JSONFormatter) Format(entry *log.Entry) ([]byte, error) {
	data := make(log.Fields, len(entry.Fields)+3)

	for key, val := range entry.Fields {
		if err, ok := val.(error); ok {
			val = err.Error()
		}

		data[key] = val
	}

	data[log.FieldKeyTime] = entry.Time.Format(f.opts.TimestampFormat)
	data[log.FieldKeyLevel] = entry.Level.String()
	data[log.FieldKeyMsg] = log.StripANSI(entry.Message)

	buf := entry.Buffer
	if buf == nil {
		buf = new(bytes.Buffer)
	}

	if err := json.NewEncoder(buf).Encode(data); err != nil {
		return nil, errors.Errorf("failed to marshal log entry to JSON: %w", err)
	}

	return buf.Bytes(), nil
}
