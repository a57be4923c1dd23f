package format

import (
	"bytes"
	"fmt"

	"github.com/kilnworks/kiln/pkg/log"
	"github.com/mgutz/ansi"
)

const defaultTimestampFormat = "15:04:05.000"

var levelColors = map[log.Level]string{
	log.StderrLevel: "red",
	log.StdoutLevel: "white",
	log.ErrorLevel:  "red+b",
	log.WarnLevel:   "yellow+b",
	log.InfoLevel:   "green",
	log.DebugLevel:  "blue",
	log.TraceLevel:  "cyan",
}

// PrettyFormatter writes entries as `time level [prefix] message key=value...`.
type PrettyFormatter struct {
	opts        Options
	colorizers  map[log.Level]func(string) string
	prefixColor func(string) string
	fieldColor  func(string) string
}

// NewPrettyFormatter returns a new PrettyFormatter.
func NewPrettyFormatter(opts Options) *PrettyFormatter {
	if opts.TimestampFormat == "" {
		opts.TimestampFormat = defaultTimestampFormat
	}

	formatter := &PrettyFormatter{
		opts:       opts,
		colorizers: make(map[log.Level]func(string) string, len(levelColors)),
	}

	for level, style := range levelColors {
		formatter.colorizers[level] = ansi.ColorFunc(style)
	}

	formatter.prefixColor = ansi.ColorFunc("magenta")
	formatter.fieldColor = ansi.ColorFunc("black+h")

	return formatter
}

// Format implements log.Formatter.
func (f *PrettyFormatter) Format(entry *log.Entry) ([]byte, error) {
	buf := entry.Buffer
	if buf == nil {
		buf = new(bytes.Buffer)
	}

	buf.WriteString(entry.Time.Format(f.opts.TimestampFormat))
	buf.WriteByte(' ')
	buf.WriteString(f.colorize(f.colorizers[entry.Level], fmt.Sprintf("%-6s", entry.Level.String())))

	if prefix, ok := entry.Fields[log.FieldKeyPrefix]; ok && prefix != "" {
		buf.WriteByte(' ')
		buf.WriteString(f.colorize(f.prefixColor, fmt.Sprintf("[%v]", prefix)))
	}

	msg := entry.Message
	if f.opts.DisableColors {
		msg = log.StripANSI(msg)
	} else {
		msg = log.TerminateANSI(msg)
	}

	buf.WriteByte(' ')
	buf.WriteString(msg)

	for _, key := range entry.Fields.Keys(log.FieldKeyPrefix) {
		buf.WriteByte(' ')
		buf.WriteString(f.colorize(f.fieldColor, key+"="))
		fmt.Fprint(buf, entry.Fields[key])
	}

	buf.WriteByte('\n')

	return buf.Bytes(), nil
}

func (f *PrettyFormatter) colorize(fn func(string) string, str string) string {
	if f.opts.DisableColors || fn == nil {
		return str
	}

	return fn(str)
}
