package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kilnworks/kiln/internal/errors"
	"github.com/kilnworks/kiln/internal/options"
	"github.com/kilnworks/kiln/internal/task"
	"github.com/urfave/cli/v2"
)

const (
	TasksCommandName = "tasks"

	defaultMarker      = " (default)"
	descriptionPadding = 2
)

// NewTasksCommand returns the command listing the tasks of the build file.
func NewTasksCommand(opts *options.Options) *cli.Command {
	return &cli.Command{
		Name:  TasksCommandName,
		Usage: "List the tasks of the build file.",
		Action: errors.WithPanicHandling(func(c *cli.Context) error {
			b, err := loadBuild(opts)
			if err != nil {
				return err
			}

			if err := b.registry.Err(); err != nil {
				return err
			}

			out := renderTasks(b.registry.Tasks(), b.target(opts, nil), newTaskStyler(shouldColor(opts, opts.Writer)))

			_, err = opts.Writer.Write([]byte(out))

			return errors.New(err)
		}),
	}
}

type taskStyler struct {
	heading     lipgloss.Style
	name        lipgloss.Style
	target      lipgloss.Style
	description lipgloss.Style
}

func newTaskStyler(shouldColor bool) *taskStyler {
	if !shouldColor {
		plain := lipgloss.NewStyle()

		return &taskStyler{heading: plain, name: plain, target: plain, description: plain}
	}

	return &taskStyler{
		heading:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Underline(true),
		name:        lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		target:      lipgloss.NewStyle().Foreground(lipgloss.Color("35")).Bold(true),
		description: lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
	}
}

// renderTasks renders one task per line, the names padded to the longest one.
func renderTasks(tasks []*task.Task, defaultTarget string, styler *taskStyler) string {
	names := make([]string, len(tasks))
	longest := len("Task")

	for i, t := range tasks {
		names[i] = t.Name()
		if strings.EqualFold(names[i], defaultTarget) {
			names[i] += defaultMarker
		}

		longest = max(longest, len(names[i]))
	}

	var buf strings.Builder

	buf.WriteString(styler.heading.Render("Task"))
	buf.WriteString(strings.Repeat(" ", longest-len("Task")+descriptionPadding))
	buf.WriteString(styler.heading.Render("Description"))
	buf.WriteString("\n")

	for i, t := range tasks {
		style := styler.name
		if strings.HasSuffix(names[i], defaultMarker) {
			style = styler.target
		}

		buf.WriteString(style.Render(names[i]))

		if description := t.Description(); description != "" {
			buf.WriteString(strings.Repeat(" ", longest-len(names[i])+descriptionPadding))
			buf.WriteString(styler.description.Render(description))
		}

		buf.WriteString("\n")
	}

	return buf.String()
}
