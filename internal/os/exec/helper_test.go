package exec_test

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	osexec "os/exec"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kilnworks/kiln/internal/os/exec"
	"github.com/kilnworks/kiln/internal/os/exec/args"
	"github.com/kilnworks/kiln/pkg/log"
	"github.com/kilnworks/kiln/pkg/log/format"
)

const helperEnvVar = "KILN_TEST_HELPER_PROCESS"

type listFlag []string

func (list *listFlag) String() string { return strings.Join(*list, ",") }

func (list *listFlag) Set(val string) error {
	*list = append(*list, val)
	return nil
}

// TestHelperProcess is not a real test. It is re-executed by the tests below as a mock process.
func TestHelperProcess(t *testing.T) {
	if os.Getenv(helperEnvVar) != "1" {
		return
	}

	flags := flag.NewFlagSet("helper", flag.ContinueOnError)

	var (
		sleep    = flags.Int("sleep", 0, "milliseconds to sleep before exiting")
		exitCode = flags.Int("exitcode", 0, "exit code")
		long     = flags.Int("long", 0, "length of a line written to stdout before the other lines")
		spawn    = flags.Int("spawn", 0, "milliseconds a background child sharing stdout sleeps")
		selfKill = flags.Bool("self-kill", false, "kill the process itself instead of exiting")
		outLines listFlag
		errLines listFlag
		envKeys  listFlag
	)

	flags.Var(&outLines, "out", "line to write to stdout")
	flags.Var(&errLines, "err", "line to write to stderr")
	flags.Var(&envKeys, "env", "environment variable to print")

	helperArgs := os.Args
	for i, arg := range helperArgs {
		if arg == "--" {
			helperArgs = helperArgs[i+1:]
			break
		}
	}

	if err := flags.Parse(helperArgs); err != nil {
		os.Exit(2)
	}

	if *spawn > 0 {
		child := osexec.Command(os.Args[0], "-test.run=^TestHelperProcess$", "--", "--sleep", strconv.Itoa(*spawn))
		child.Stdout = os.Stdout

		if err := child.Start(); err != nil {
			os.Exit(2)
		}
	}

	if *long > 0 {
		fmt.Fprintln(os.Stdout, strings.Repeat("x", *long))
	}

	for _, key := range envKeys {
		fmt.Fprintf(os.Stdout, "%s: '%s'\n", key, os.Getenv(key))
	}

	for _, line := range outLines {
		fmt.Fprintln(os.Stdout, line)
	}

	for _, line := range errLines {
		fmt.Fprintln(os.Stderr, line)
	}

	time.Sleep(time.Duration(*sleep) * time.Millisecond)

	if *selfKill {
		if self, err := os.FindProcess(os.Getpid()); err == nil {
			self.Kill() //nolint:errcheck
			time.Sleep(time.Minute)
		}
	}

	os.Exit(*exitCode)
}

// helperProcess returns the path and settings that run TestHelperProcess with the given arguments.
func helperProcess(helperArgs ...string) (string, *exec.Settings) {
	return os.Args[0], &exec.Settings{
		Arguments:            args.New("-test.run=^TestHelperProcess$", "--").Append(helperArgs...),
		EnvironmentVariables: map[string]string{helperEnvVar: "1"},
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func newTestLauncher(opts ...exec.Option) (*exec.Launcher, *syncBuffer) {
	logs := new(syncBuffer)
	logger := log.New(
		log.WithOutput(logs),
		log.WithLevel(log.TraceLevel),
		log.WithFormatter(format.NewPrettyFormatter(format.Options{DisableColors: true})),
	)

	opts = append([]exec.Option{
		exec.WithLogger(logger),
		exec.WithStdout(new(syncBuffer)),
		exec.WithStderr(new(syncBuffer)),
		exec.WithStdin(nil),
	}, opts...)

	return exec.NewLauncher(opts...), logs
}
