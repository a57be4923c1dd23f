package format_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/kilnworks/kiln/pkg/log"
	"github.com/kilnworks/kiln/pkg/log/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()

	formatter, err := format.ParseFormat("JSON", format.Options{})
	require.NoError(t, err)
	assert.IsType(t, &format.JSONFormatter{}, formatter)

	formatter, err = format.ParseFormat("", format.Options{})
	require.NoError(t, err)
	assert.IsType(t, &format.PrettyFormatter{}, formatter)

	_, err = format.ParseFormat("xml", format.Options{})
	require.Error(t, err)
}

func TestPrettyFormatter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := log.New(
		log.WithOutput(&buf),
		log.WithLevel(log.DebugLevel),
		log.WithFormatter(format.NewPrettyFormatter(format.Options{DisableColors: true})),
	)

	logger.WithField(log.FieldKeyPrefix, "test").WithField(log.FieldKeyPID, 42).Debugf("\033[32mgreen\033[0m line")

	out := buf.String()
	assert.Contains(t, out, "debug")
	assert.Contains(t, out, "[test] green line pid=42")
	assert.NotContains(t, out, "\033[")
}

func TestJSONFormatter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := log.New(
		log.WithOutput(&buf),
		log.WithLevel(log.InfoLevel),
		log.WithFormatter(format.NewJSONFormatter(format.Options{})),
	)

	logger.WithError(errors.New("boom")).WithField(log.FieldKeyTask, "build").Warnf("task failed")

	var data map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, "warn", data["level"])
	assert.Equal(t, "task failed", data["msg"])
	assert.Equal(t, "build", data["task"])
	assert.Equal(t, "boom", data["error"])
}
