// Package observability provides the process logger constructor and
// formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jmorrow/designdeck/internal/parsing"
	"github.com/jmorrow/designdeck/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxContentPreview is how much artifact content to show before cutting
	maxContentPreview = 50
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintParseResult outputs a human-readable summary of a parse result,
// including per-field validation messages on failure.
func (p *Printer) PrintParseResult(result *parsing.Result) {
	if result == nil {
		return
	}

	var sb strings.Builder

	if !result.OK {
		sb.WriteString(fmt.Sprintf("Error:    %s\n", result.Error))
		if result.Err != nil {
			for _, field := range result.Err.Fields {
				sb.WriteString(fmt.Sprintf("  ⚠ %s: %s\n", field.Field, field.Message))
			}
		}
		sb.WriteString(fmt.Sprintf("Raw size: %d bytes", len(result.Raw)))
		p.printBox("PARSE FAILED", sb.String())
		return
	}

	resp := result.Response
	sb.WriteString(fmt.Sprintf("Strategy: %s\n", result.Strategy))

	message := resp.Message
	if len(message) > maxContentPreview {
		message = message[:maxContentPreview-3] + "..."
	}
	sb.WriteString(fmt.Sprintf("Message:  %s\n", message))

	if resp.Artifact != nil {
		sb.WriteString("\nArtifact:\n")
		sb.WriteString(fmt.Sprintf("  Type:    %s\n", resp.Artifact.Type))
		sb.WriteString(fmt.Sprintf("  Title:   %s\n", resp.Artifact.Title))
		sb.WriteString(fmt.Sprintf("  Status:  %s\n", resp.Artifact.Status))
		content := resp.Artifact.Content
		if len(content) > maxContentPreview {
			content = content[:maxContentPreview-3] + "..."
		}
		sb.WriteString(fmt.Sprintf("  Content: %s\n", content))
	}

	if resp.State != nil {
		sb.WriteString("\nState:\n")
		sb.WriteString(fmt.Sprintf("  Mode:    %s\n", resp.State.Mode))
		if resp.State.PipelineStage != "" {
			sb.WriteString(fmt.Sprintf("  Stage:   %s\n", resp.State.PipelineStage))
		}
		if resp.State.ThresholdPercent != nil {
			sb.WriteString(fmt.Sprintf("  Threshold: %.0f%%\n", *resp.State.ThresholdPercent))
		}
	}

	if len(resp.NextActions) > 0 {
		sb.WriteString(fmt.Sprintf("\nNext actions: %d\n", len(resp.NextActions)))
	}

	p.printBox("PARSED RESPONSE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintArtifact outputs one persisted artifact.
func (p *Printer) PrintArtifact(a *types.Artifact) {
	if a == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Type:     %s\n", a.ArtifactType))
	sb.WriteString(fmt.Sprintf("Title:    %s\n", a.Title))
	sb.WriteString(fmt.Sprintf("Status:   %s", a.Status))
	if a.StaleReason != nil {
		sb.WriteString(fmt.Sprintf(" (%s)", *a.StaleReason))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Version:  %d\n", a.Version))
	if a.ApprovedBy != nil {
		sb.WriteString(fmt.Sprintf("Approved: %s\n", *a.ApprovedBy))
	}

	content := a.Content
	if len(content) > maxContentPreview {
		content = content[:maxContentPreview-3] + "..."
	}
	sb.WriteString(fmt.Sprintf("Content:  %s", content))

	p.printBox("ARTIFACT", sb.String())
}

// PrintApproval outputs the result of an approval cascade.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintApproval(ids []string) {
	if len(ids) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NOTHING TO APPROVE")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Approved %d artifacts:\n\n", len(ids)))
	for _, id := range ids {
		sb.WriteString(fmt.Sprintf("  • %s\n", id))
	}

	p.printBox("APPROVAL CASCADE", strings.TrimSuffix(sb.String(), "\n"))
}
