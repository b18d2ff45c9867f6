// Package display renders run results and learning summaries for the CLI.
package display

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/aletheia-ai/retrace/pkg/memory"
	"github.com/aletheia-ai/retrace/pkg/trace"
)

var (
	header  = color.New(color.Bold, color.FgBlue)
	success = color.New(color.Bold, color.FgGreen)
	failure = color.New(color.Bold, color.FgRed)
	label   = color.New(color.FgCyan)
	accent  = color.New(color.FgYellow)
)

// FormatRun renders one evaluated run: the task, the tool order, and either a
// success line or the mistake list.
func FormatRun(t *trace.ExecutionTrace) string {
	var output strings.Builder

	output.WriteString(header.Sprintf("Run %d", t.RunID) + "\n")
	output.WriteString(strings.Repeat("-", 60) + "\n")
	output.WriteString(fmt.Sprintf("%s %s\n", label.Sprint("Task:"), t.Task))

	tools := t.ToolNames()
	if len(tools) == 0 {
		output.WriteString(fmt.Sprintf("%s (none)\n", label.Sprint("Tools:")))
	} else {
		output.WriteString(fmt.Sprintf("%s %s\n", label.Sprint("Tools:"), strings.Join(tools, ", ")))
	}

	if t.Success {
		output.WriteString(success.Sprint("SUCCESS - no mistakes detected") + "\n")
		return output.String()
	}

	output.WriteString(failure.Sprintf("%d mistake(s) detected", len(t.Mistakes)) + "\n")
	for _, m := range t.Mistakes {
		output.WriteString(fmt.Sprintf("  - [%s] %s\n", accent.Sprint(m.Kind), m.Description))
	}
	return output.String()
}

// FormatSummary renders the learning statistics, the pattern counts, and the
// constraint list.
func FormatSummary(stats memory.Statistics, constraints []memory.Constraint) string {
	var output strings.Builder

	output.WriteString(header.Sprint("Learning Summary") + "\n")
	output.WriteString(strings.Repeat("=", 60) + "\n")
	output.WriteString(fmt.Sprintf("%s %d\n", label.Sprint("Total runs:"), stats.TotalRuns))
	output.WriteString(fmt.Sprintf("%s %d\n", label.Sprint("Successful runs:"), stats.SuccessfulRuns))
	output.WriteString(fmt.Sprintf("%s %d\n", label.Sprint("Total mistakes:"), stats.TotalMistakes))
	output.WriteString(fmt.Sprintf("%s %d\n", label.Sprint("Learned constraints:"), stats.LearnedConstraints))
	output.WriteString(fmt.Sprintf("%s %.2f%%\n", label.Sprint("Improvement (last 5 vs previous 5):"), stats.ImprovementRate))

	if len(stats.MistakePatterns) > 0 {
		output.WriteString("\n" + header.Sprint("Mistake Patterns") + "\n")
		keys := make([]string, 0, len(stats.MistakePatterns))
		for key := range stats.MistakePatterns {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			output.WriteString(fmt.Sprintf("  %s: %d\n", key, stats.MistakePatterns[key]))
		}
	}

	if len(constraints) > 0 {
		output.WriteString("\n" + FormatConstraints(constraints))
	}
	return output.String()
}

// FormatConstraints renders the learned constraints in trigger order.
func FormatConstraints(constraints []memory.Constraint) string {
	var output strings.Builder

	output.WriteString(header.Sprint("Learned Constraints") + "\n")
	output.WriteString(strings.Repeat("=", 60) + "\n")

	if len(constraints) == 0 {
		output.WriteString("No constraints learned yet.\n")
		return output.String()
	}

	for i, c := range constraints {
		output.WriteString(fmt.Sprintf("%d. %s\n", i+1, c.Text))
		output.WriteString(fmt.Sprintf("   %s %s | %s %d | %s %s\n",
			label.Sprint("pattern:"), c.PatternKey,
			label.Sprint("occurrences:"), c.Occurrences,
			label.Sprint("learned:"), c.CreatedAt.Format("2006-01-02 15:04:05")))
	}
	return output.String()
}
