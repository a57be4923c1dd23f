package report

import (
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	prefix              = "   "
	runSummaryHeader    = "❯❯ Build Summary"
	successLabel        = "Succeeded"
	failureLabel        = "Failed"
	skipLabel           = "Skipped"
	separatorLineLength = 28
	minTaskColumnWidth  = 20
	padder              = "."
)

// Summary formats data from a report for output as a summary.
type Summary struct {
	runs           []JSONRun
	target         string
	TasksSucceeded int
	TasksFailed    int
	TasksSkipped   int
	TotalDuration  time.Duration
	shouldColor    bool
}

// Summarize returns a summary of the report.
func (r *Report) Summarize() *Summary {
	summary := &Summary{
		target:      r.Target,
		shouldColor: r.shouldColor,
	}

	for _, run := range r.Runs() {
		snapshot := run.Snapshot()

		switch Result(snapshot.Result) {
		case ResultSucceeded:
			summary.TasksSucceeded++
		case ResultFailed:
			summary.TasksFailed++
		case ResultSkipped:
			summary.TasksSkipped++
		}

		summary.TotalDuration += time.Duration(snapshot.DurationMS) * time.Millisecond
		summary.runs = append(summary.runs, snapshot)
	}

	return summary
}

// TotalTasks returns the number of tasks in the summary.
func (s *Summary) TotalTasks() int {
	return len(s.runs)
}

// WriteSummary writes the summary to a writer.
func (r *Report) WriteSummary(w io.Writer) error {
	summary := r.Summarize()

	// Don't write anything if no task was reached
	if summary.TotalTasks() == 0 {
		return nil
	}

	if _, err := fmt.Fprintf(w, "\n"); err != nil {
		return err
	}

	if err := summary.Write(w); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n")

	return err
}

// Write writes the summary to a writer: a header, one line per task in execution order, and the totals.
func (s *Summary) Write(w io.Writer) error {
	colorizer := NewColorizer(s.shouldColor)

	header := fmt.Sprintf("%s  %s  %s",
		colorizer.headingTitleColorizer(runSummaryHeader),
		colorizer.headingTaskColorizer(fmt.Sprintf("%s, %d tasks", s.target, s.TotalTasks())),
		colorizer.colorDuration(s.TotalDuration),
	)

	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "%s%s\n", prefix, strings.Repeat("─", separatorLineLength)); err != nil {
		return err
	}

	width := minTaskColumnWidth
	for _, run := range s.runs {
		width = max(width, len(run.Name)+2)
	}

	for _, run := range s.runs {
		if err := s.writeTaskLine(w, run, width, colorizer); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "%s%s\n", prefix, strings.Repeat("─", separatorLineLength)); err != nil {
		return err
	}

	totals := []struct {
		colorizer func(string) string
		label     string
		count     int
	}{
		{colorizer.successColorizer, successLabel, s.TasksSucceeded},
		{colorizer.failureColorizer, failureLabel, s.TasksFailed},
		{colorizer.skipColorizer, skipLabel, s.TasksSkipped},
	}

	for _, total := range totals {
		if total.count == 0 {
			continue
		}

		if _, err := fmt.Fprintf(w, "%s%s%s%d\n",
			prefix,
			total.colorizer(total.label),
			colorizer.paddingColorizer(padding(total.label, width)),
			total.count,
		); err != nil {
			return err
		}
	}

	return nil
}

func (s *Summary) writeTaskLine(w io.Writer, run JSONRun, width int, colorizer *Colorizer) error {
	resultColorizer := colorizer.defaultColorizer

	switch Result(run.Result) {
	case ResultSucceeded:
		resultColorizer = colorizer.successColorizer
	case ResultFailed:
		resultColorizer = colorizer.failureColorizer
	case ResultSkipped:
		resultColorizer = colorizer.skipColorizer
	}

	result := run.Result
	if run.Reason != nil {
		result += " (" + *run.Reason + ")"
	}

	_, err := fmt.Fprintf(w, "%s%s%s%s  %s\n",
		prefix,
		run.Name,
		colorizer.paddingColorizer(padding(run.Name, width)),
		colorizer.colorDuration(time.Duration(run.DurationMS)*time.Millisecond),
		resultColorizer(result),
	)

	return err
}

func padding(label string, width int) string {
	count := width - len(label)
	if count < 2 {
		return "  "
	}

	return " " + strings.Repeat(padder, count-2) + " "
}
