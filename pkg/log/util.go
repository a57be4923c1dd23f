package log

import (
	"regexp"
	"strings"
)

const (
	ansiStart = "\033["
	ansiReset = "\033[0m"

	ansiSeq = "[\u001B\u009B][[\\]()#;?]*(?:(?:(?:[a-zA-Z\\d]*(?:;[a-zA-Z\\d]*)*)?\u0007)|(?:(?:\\d{1,4}(?:;\\d{0,4})*)?[\\dA-PRZcf-ntqry=><~]))"
)

// ansiReg matches escape sequences found in tool output, such as colors and cursor movement.
var ansiReg = regexp.MustCompile(ansiSeq)

// StripANSI returns str without any ANSI escape sequences.
func StripANSI(str string) string {
	if !strings.Contains(str, ansiStart) {
		return str
	}

	return ansiReg.ReplaceAllString(str, "")
}

// TerminateANSI appends a reset sequence if str contains any escape sequence, so that a colored
// subprocess line does not leak its color into the next log entry.
func TerminateANSI(str string) string {
	if strings.Contains(str, ansiStart) {
		str += ansiReset
	}

	return str
}
