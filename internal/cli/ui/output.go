package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aki/gen3talk/internal/core/mailbox"
	"github.com/aki/gen3talk/internal/journal"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// SetOutput redirects all UI output and returns a function restoring the
// previous writers
func SetOutput(out, errOut io.Writer) func() {
	oldOut, oldErr := stdout, stderr
	stdout, stderr = out, errOut
	return func() {
		stdout, stderr = oldOut, oldErr
	}
}

// Print functions for consistent output

func Error(format string, args ...interface{}) {
	fmt.Fprintf(stderr, "%s %s\n", ErrorIcon, ErrorStyle.Render(fmt.Sprintf(format, args...)))
}

func Success(format string, args ...interface{}) {
	fmt.Fprintf(stdout, "%s %s\n", SuccessIcon, SuccessStyle.Render(fmt.Sprintf(format, args...)))
}

func Info(format string, args ...interface{}) {
	fmt.Fprintf(stdout, "%s %s\n", InfoIcon, InfoStyle.Render(fmt.Sprintf(format, args...)))
}

func Warning(format string, args ...interface{}) {
	fmt.Fprintf(stdout, "%s %s\n", WarningIcon, WarningStyle.Render(fmt.Sprintf(format, args...)))
}

// Output prints formatted text without a trailing newline
func Output(format string, args ...interface{}) {
	fmt.Fprintf(stdout, format, args...)
}

// OutputLine prints formatted text followed by a newline
func OutputLine(format string, args ...interface{}) {
	fmt.Fprintf(stdout, format+"\n", args...)
}

// PrintEntries displays mailbox files using a table
func PrintEntries(entries []mailbox.Entry) {
	if len(entries) == 0 {
		Info("Mailbox is empty")
		return
	}

	tbl := NewTable("ID", "KIND", "SIZE", "AGE", "NAME")
	for _, e := range entries {
		id := e.ID
		if id == "" {
			id = "-"
		}
		tbl.AddRow(id, string(e.Kind), FormatSize(e.Size), FormatDuration(time.Since(e.ModTime)), e.Name)
	}

	PrintSectionHeader(MailboxIcon, "Mailbox entries", len(entries))
	tbl.Print()
	fmt.Fprintln(stdout)
}

// PrintPending displays the ids with a response waiting
func PrintPending(ids []string) {
	if len(ids) == 0 {
		Info("No pending responses")
		return
	}

	PrintSectionHeader(MailboxIcon, "Pending responses", len(ids))
	for _, id := range ids {
		OutputLine("  %s", BoldStyle.Render(id))
	}
	fmt.Fprintln(stdout)
}

// PrintHistory displays journal entries using a table
func PrintHistory(entries []*journal.Entry) {
	if len(entries) == 0 {
		Info("No rewrites recorded")
		return
	}

	tbl := NewTable("#", "REQUEST", "WHEN", "ORIGINAL", "REWRITTEN")
	for _, e := range entries {
		tbl.AddRow(e.ID, e.RequestID, FormatTime(e.CreatedAt), Truncate(e.Original, 40), Truncate(e.Rewritten, 40))
	}

	PrintSectionHeader(HistoryIcon, "Rewrites", len(entries))
	tbl.Print()
	fmt.Fprintln(stdout)
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis
func Truncate(s string, n int) string {
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}

// FormatSize formats a byte count for display
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%dB", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatDuration formats a duration into a human-readable string
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "< 1m"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

// FormatTime formats a time for display
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := time.Since(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		minutes := int(diff.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("2006-01-02 15:04")
	}
}
