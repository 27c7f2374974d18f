// Package testutil provides test helper utilities for prepdeck tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prepdeck-dev/prepdeck/internal/api"
)

// TempConfigDir creates a temporary directory with the given files and
// returns its path. Files is a map of relative path -> content. The
// directory is automatically cleaned up when the test finishes.
func TempConfigDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	for relPath, content := range files {
		absPath := filepath.Join(dir, relPath)
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			t.Fatalf("creating directory for %s: %v", relPath, err)
		}
		if err := os.WriteFile(absPath, []byte(content), 0644); err != nil {
			t.Fatalf("writing %s: %v", relPath, err)
		}
	}

	return dir
}

// StartResponse returns a canned start payload with a two-person panel.
func StartResponse() *api.StartResponse {
	return &api.StartResponse{
		SessionID:    "sess-test",
		SessionBrief: "Panel interview for the target role.",
		Interviewers: []api.Interviewer{
			{Name: "Sarah Chen", Role: "Engineering Manager"},
			{Name: "Marcus Reed", Role: "Staff Engineer"},
		},
		FirstQuestion:    "Tell me about yourself.",
		DurationMinutes:  20,
		RemainingSeconds: 1200,
	}
}

// AnswerResponse returns a canned evaluation that continues the interview.
func AnswerResponse(next string) *api.AnswerResponse {
	return &api.AnswerResponse{
		Feedback: api.Feedback{
			Summary:      "Concise and relevant.",
			Strengths:    []string{"clarity"},
			Improvements: []string{"give a concrete example"},
			Score:        7,
		},
		NextQuestion:    next,
		ShouldContinue:  next != "",
		RoundsCompleted: 1,
	}
}

// FinalReport returns a canned final report.
func FinalReport() *api.FinalReport {
	return &api.FinalReport{Summary: api.ReportSummary{
		OverallImpression:   "Communicates well under time pressure.",
		HireRecommendation:  "Lean hire",
		Strengths:           []string{"communication"},
		AreasForImprovement: []string{"system design depth"},
		NextSteps:           []string{"practice architecture questions"},
	}}
}

// Summaries returns a canned history listing.
func Summaries() []api.SessionSummary {
	return []api.SessionSummary{
		{
			SessionID:          "sess-1",
			TargetRole:         "Backend Engineer",
			Difficulty:         "medium",
			NumInterviewers:    2,
			Status:             "completed",
			HireRecommendation: "Hire",
			Summary:            "Strong fundamentals.",
		},
		{
			SessionID:       "sess-2",
			TargetRole:      "Data Engineer",
			Difficulty:      "hard",
			NumInterviewers: 1,
			Status:          "completed",
			Summary:         "Needs deeper SQL knowledge.",
		},
	}
}
