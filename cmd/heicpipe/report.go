package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/On-Jun9/HeicPipe/pkg/types"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Bold(true).
			Padding(0, 2).
			MarginBottom(1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33"))
)

// renderReport formats the batch result and the write actions for the terminal.
func renderReport(result *types.BatchResult, tasks []types.WriteTask, dryRun bool) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("HeicPipe Summary"))
	b.WriteString("\n")

	written := make(map[int]types.WriteTask, len(tasks))
	for _, task := range tasks {
		written[task.Index] = task
	}

	for i, o := range result.Outcomes {
		switch o.Kind {
		case types.OutcomeSkipped:
			b.WriteString(errorStyle.Render("✗ "+o.OriginalName) + " " + o.SkipReason.Describe() + "\n")
		default:
			line := fmt.Sprintf("✓ %s → %s", o.OriginalName, o.OutputName)
			if o.Kind == types.OutcomePassedThrough {
				line = "✓ " + o.OriginalName + " (already JPEG)"
			}
			b.WriteString(successStyle.Render(line))
			if task, ok := written[i]; ok {
				b.WriteString(" " + describeWrite(task, dryRun))
			}
			b.WriteString("\n")
		}
	}

	s := result.Summary
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("%d converted, %d passed through, %d skipped in %s",
		s.Converted, s.PassedThrough, s.SkippedUnsupported+s.SkippedFailed, s.Duration.Round(time.Millisecond))))
	b.WriteString("\n")

	if warning := result.SummaryWarning(); warning != "" {
		b.WriteString(warnStyle.Render(warning) + "\n")
	}
	if result.Failed {
		b.WriteString(errorStyle.Render(result.FailureMessage) + "\n")
	}

	b.WriteString("\n")
	b.WriteString("Subject: " + result.EmailSubject + "\n")
	b.WriteString("Mail:    " + result.MailtoLink + "\n")
	return b.String()
}

func describeWrite(task types.WriteTask, dryRun bool) string {
	prefix := ""
	if dryRun {
		prefix = "would be "
	}
	switch task.Action {
	case types.WriteActionFailed:
		return errorStyle.Render("[write failed: " + task.Error + "]")
	case types.WriteActionSkipped:
		return warnStyle.Render("[" + prefix + "skipped, " + task.DestPath + " exists]")
	default:
		return infoStyle.Render("[" + prefix + string(task.Action) + " " + task.DestPath + "]")
	}
}
