// Package report renders a finished interview session as markdown.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prepdeck-dev/prepdeck/internal/api"
	"github.com/prepdeck-dev/prepdeck/internal/session"
)

// Format produces a markdown document covering the session header, the full
// transcript, and the final report if one was produced. Missing pieces are
// simply omitted rather than erroring.
func Format(arch *session.ArchivedSession) string {
	var b strings.Builder

	sess := arch.Session
	fmt.Fprintf(&b, "# Mock Interview — %s\n\n", orElse(sess.TargetRole, "Untitled role"))

	fmt.Fprintf(&b, "- Session: %s\n", sess.ID)
	if sess.Difficulty != "" {
		fmt.Fprintf(&b, "- Difficulty: %s\n", sess.Difficulty)
	}
	if sess.CareerLevel != "" {
		fmt.Fprintf(&b, "- Career level: %s\n", sess.CareerLevel)
	}
	if len(sess.Interviewers) > 0 {
		var names []string
		for _, iv := range sess.Interviewers {
			if iv.Role != "" {
				names = append(names, fmt.Sprintf("%s (%s)", iv.Name, iv.Role))
			} else {
				names = append(names, iv.Name)
			}
		}
		fmt.Fprintf(&b, "- Panel: %s\n", strings.Join(names, ", "))
	}
	if !arch.CompletedAt.IsZero() {
		fmt.Fprintf(&b, "- Completed: %s\n", arch.CompletedAt.Format("2006-01-02 15:04"))
	}
	b.WriteString("\n")

	if sess.Brief != "" {
		b.WriteString("## Brief\n\n")
		b.WriteString(sess.Brief)
		b.WriteString("\n\n")
	}

	if len(arch.Transcript) > 0 {
		b.WriteString("## Transcript\n\n")
		for _, e := range arch.Transcript {
			writeEntry(&b, e)
		}
	}

	if arch.Report != nil {
		writeSummary(&b, arch.Report.Summary)
	}

	return b.String()
}

func writeEntry(b *strings.Builder, e session.Entry) {
	switch e.Kind {
	case session.EntrySystem:
		fmt.Fprintf(b, "> %s\n\n", e.Text)
	case session.EntryInterviewer:
		fmt.Fprintf(b, "**%s:** %s\n\n", orElse(e.Speaker, "Interviewer"), e.Text)
	case session.EntryUser:
		fmt.Fprintf(b, "**You:** %s\n\n", e.Text)
	case session.EntryFeedback:
		if e.Feedback == nil {
			return
		}
		fmt.Fprintf(b, "**Feedback (%.1f/10):** %s\n\n", e.Feedback.Score, e.Feedback.Summary)
		writeList(b, "Strengths", e.Feedback.Strengths)
		writeList(b, "Improvements", e.Feedback.Improvements)
		if e.PenaltySeconds > 0 {
			fmt.Fprintf(b, "- Penalty: -%ds", e.PenaltySeconds)
			if e.PenaltyReason != "" {
				fmt.Fprintf(b, " (%s)", e.PenaltyReason)
			}
			b.WriteString("\n\n")
		}
	}
}

func writeSummary(b *strings.Builder, s api.ReportSummary) {
	b.WriteString("## Final Report\n\n")
	if s.HireRecommendation != "" {
		fmt.Fprintf(b, "**Recommendation:** %s\n\n", s.HireRecommendation)
	}
	if s.OverallImpression != "" {
		b.WriteString(s.OverallImpression)
		b.WriteString("\n\n")
	}
	writeList(b, "Strengths", s.Strengths)
	writeList(b, "Areas for improvement", s.AreasForImprovement)
	writeList(b, "Next steps", s.NextSteps)
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "- %s:\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "  - %s\n", it)
	}
	b.WriteString("\n")
}

// Write renders the session to {dir}/{sessionID}.md and returns the path.
func Write(dir string, arch *session.ArchivedSession) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(dir, arch.Session.ID+".md")
	if err := os.WriteFile(path, []byte(Format(arch)), 0644); err != nil {
		return "", fmt.Errorf("writing export file: %w", err)
	}
	return path, nil
}

func orElse(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
