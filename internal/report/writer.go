package report

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kilnworks/kiln/internal/errors"
)

// Format is the format of a report file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat returns the format with the given name. An empty name is derived from the file extension.
func ParseFormat(name, path string) (Format, error) {
	if name == "" {
		name = strings.TrimPrefix(filepath.Ext(path), ".")
	}

	switch Format(strings.ToLower(name)) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	}

	return "", errors.Errorf("unsupported report format %q, supported formats: %s, %s", name, FormatCSV, FormatJSON)
}

// JSONRun represents a run in JSON format.
type JSONRun struct {
	Started    time.Time `json:"Started"`
	Ended      time.Time `json:"Ended"`
	Reason     *string   `json:"Reason,omitempty"`
	Name       string    `json:"Name"`
	Result     string    `json:"Result"`
	Error      string    `json:"Error,omitempty"`
	DurationMS int64     `json:"DurationMs"`
}

// JSONReport represents a report in JSON format.
type JSONReport struct {
	ID      string    `json:"ID"`
	Target  string    `json:"Target"`
	Started time.Time `json:"Started"`
	Runs    []JSONRun `json:"Runs"`
}

// WriteToFile writes the report to the given file in the given format, creating parent directories.
func (r *Report) WriteToFile(path string, format Format) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return errors.New(err)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.New(err)
	}
	defer file.Close() //nolint:errcheck

	switch format {
	case FormatJSON:
		return r.WriteJSON(file)
	default:
		return r.WriteCSV(file)
	}
}

// WriteCSV writes the report to a writer in CSV format.
func (r *Report) WriteCSV(w io.Writer) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write([]string{"Name", "Started", "Ended", "Duration", "Result", "Reason", "Error"}); err != nil {
		return errors.New(err)
	}

	for _, run := range r.Runs() {
		snapshot := run.Snapshot()

		reason := ""
		if snapshot.Reason != nil {
			reason = *snapshot.Reason
		}

		if err := csvWriter.Write([]string{
			snapshot.Name,
			snapshot.Started.Format(time.RFC3339),
			snapshot.Ended.Format(time.RFC3339),
			strconv.FormatInt(snapshot.DurationMS, 10),
			snapshot.Result,
			reason,
			snapshot.Error,
		}); err != nil {
			return errors.New(err)
		}
	}

	csvWriter.Flush()

	if err := csvWriter.Error(); err != nil {
		return errors.New(err)
	}

	return nil
}

// WriteJSON writes the report to a writer in JSON format.
func (r *Report) WriteJSON(w io.Writer) error {
	jsonReport := JSONReport{
		ID:      r.ID,
		Target:  r.Target,
		Started: r.Started,
		Runs:    make([]JSONRun, 0),
	}

	for _, run := range r.Runs() {
		jsonReport.Runs = append(jsonReport.Runs, run.Snapshot())
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(jsonReport); err != nil {
		return errors.New(err)
	}

	return nil
}
