package report

import (
	"fmt"
	"time"

	"github.com/mgutz/ansi"
)

// Colorizer is a colorizer for the build summary output.
type Colorizer struct {
	headingTitleColorizer func(string) string
	headingTaskColorizer  func(string) string
	successColorizer      func(string) string
	failureColorizer      func(string) string
	skipColorizer         func(string) string
	millisecondColorizer  func(string) string
	secondColorizer       func(string) string
	minuteColorizer       func(string) string
	defaultColorizer      func(string) string
	paddingColorizer      func(string) string
}

func noColor(s string) string { return s }

// NewColorizer creates a new Colorizer.
func NewColorizer(shouldColor bool) *Colorizer {
	if !shouldColor {
		return &Colorizer{
			headingTitleColorizer: noColor,
			headingTaskColorizer:  noColor,
			successColorizer:      noColor,
			failureColorizer:      noColor,
			skipColorizer:         noColor,
			millisecondColorizer:  noColor,
			secondColorizer:       noColor,
			minuteColorizer:       noColor,
			defaultColorizer:      noColor,
			paddingColorizer:      noColor,
		}
	}

	return &Colorizer{
		headingTitleColorizer: ansi.ColorFunc("yellow+bh"),
		headingTaskColorizer:  ansi.ColorFunc("white+bh"),
		successColorizer:      ansi.ColorFunc("green+bh"),
		failureColorizer:      ansi.ColorFunc("red+bh"),
		skipColorizer:         ansi.ColorFunc("blue+bh"),
		millisecondColorizer:  ansi.ColorFunc("cyan+bh"),
		secondColorizer:       ansi.ColorFunc("green+bh"),
		minuteColorizer:       ansi.ColorFunc("yellow+bh"),
		defaultColorizer:      ansi.ColorFunc("white+bh"),
		paddingColorizer:      ansi.ColorFunc("black+h"),
	}
}

// colorDuration returns the duration as a string, colored based on the duration.
func (c *Colorizer) colorDuration(duration time.Duration) string {
	if duration < 0 {
		return c.defaultColorizer("N/A")
	}

	if duration < time.Second {
		return c.millisecondColorizer(fmt.Sprintf("%dms", duration.Milliseconds()))
	}

	if duration < time.Minute {
		return c.secondColorizer(fmt.Sprintf("%.1fs", duration.Seconds()))
	}

	return c.minuteColorizer(fmt.Sprintf("%dm%02ds", int(duration.Minutes()), int(duration.Seconds())%60))
}
