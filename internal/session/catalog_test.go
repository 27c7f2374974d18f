package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/prepdeck-dev/prepdeck/internal/api"
	"github.com/prepdeck-dev/prepdeck/internal/testutil"
)

func catalogServer(t *testing.T, handler http.HandlerFunc) *Catalog {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := api.NewClient(srv.URL, "tok", 5*time.Second)
	return NewCatalog(client, nil, nil, nil, nil)
}

func TestStartSeedsLiveController(t *testing.T) {
	cat := catalogServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/mock-interview/start" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req api.StartRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.TargetRole != "Data Engineer" || req.NumInterviewers != 2 {
			t.Errorf("request = %+v", req)
		}
		json.NewEncoder(w).Encode(testutil.StartResponse())
	})

	ctrl, err := cat.Start(context.Background(), Settings{
		TargetRole:      "Data Engineer",
		Difficulty:      "medium",
		CareerLevel:     "Entry-level",
		NumInterviewers: 2,
		DurationMinutes: 20,
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(ctrl.Teardown)

	sess := ctrl.Session()
	if sess.ID != "sess-test" || sess.Brief == "" || len(sess.Interviewers) != 2 {
		t.Errorf("session = %+v", sess)
	}
	if sess.History {
		t.Error("live session marked history")
	}
	if ctrl.Question() != "Tell me about yourself." {
		t.Errorf("question = %q", ctrl.Question())
	}
	if ctrl.Remaining() != 1200 {
		t.Errorf("remaining = %d", ctrl.Remaining())
	}
	if ctrl.State() != StateGreeting {
		t.Errorf("state = %v, want greeting before Begin", ctrl.State())
	}
}

func TestStartFailureCreatesNothing(t *testing.T) {
	cat := catalogServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	ctrl, err := cat.Start(context.Background(), Settings{TargetRole: "X"})
	if err == nil {
		t.Fatal("expected error")
	}
	if ctrl != nil {
		t.Error("controller created despite failure")
	}
}

func TestStartDerivesRemainingFromDuration(t *testing.T) {
	cat := catalogServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.StartResponse{
			SessionID:       "s1",
			FirstQuestion:   "Q",
			DurationMinutes: 15,
		})
	})
	ctrl, err := cat.Start(context.Background(), Settings{TargetRole: "X"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(ctrl.Teardown)
	if ctrl.Remaining() != 900 {
		t.Errorf("remaining = %d, want 900", ctrl.Remaining())
	}
}

func TestOpenHistoryPopulatesNoLiveFields(t *testing.T) {
	cat := NewCatalog(nil, nil, nil, nil, nil)
	ctrl := cat.OpenHistory(api.SessionSummary{
		SessionID:  "old-1",
		TargetRole: "SRE",
		Difficulty: "hard",
	})
	t.Cleanup(ctrl.Teardown)

	if ctrl.State() != StateReportOnly {
		t.Errorf("state = %v", ctrl.State())
	}
	sess := ctrl.Session()
	if !sess.History || sess.ID != "old-1" || sess.TargetRole != "SRE" {
		t.Errorf("session = %+v", sess)
	}
	if ctrl.Question() != "" || ctrl.Remaining() != 0 {
		t.Error("history session has live fields")
	}
}

func TestDeleteRemovesFromArchiveToo(t *testing.T) {
	deleted := ""
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			deleted = r.URL.Path
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
	}))
	t.Cleanup(srv.Close)

	arch, err := NewArchive(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("NewArchive: %v", err)
	}
	t.Cleanup(func() { arch.Close() })
	sess := Session{ID: "gone", TargetRole: "X", Difficulty: "easy"}
	if err := arch.SaveCompleted(sess, nil, nil); err != nil {
		t.Fatalf("SaveCompleted: %v", err)
	}

	client := api.NewClient(srv.URL, "tok", 5*time.Second)
	cat := NewCatalog(client, nil, nil, arch, nil)
	if err := cat.Delete(context.Background(), "gone"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted != "/api/mock-interview/gone" {
		t.Errorf("remote delete path = %q", deleted)
	}
	got, err := arch.Get("gone")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Error("archived session survived delete")
	}
}

func TestDeleteFailureLeavesArchiveAlone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not yours", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	arch, err := NewArchive(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("NewArchive: %v", err)
	}
	t.Cleanup(func() { arch.Close() })
	if err := arch.SaveCompleted(Session{ID: "kept"}, nil, nil); err != nil {
		t.Fatalf("SaveCompleted: %v", err)
	}

	client := api.NewClient(srv.URL, "tok", 5*time.Second)
	cat := NewCatalog(client, nil, nil, arch, nil)
	if err := cat.Delete(context.Background(), "kept"); err == nil {
		t.Fatal("expected delete error")
	}
	got, _ := arch.Get("kept")
	if got == nil {
		t.Error("archive entry removed despite remote failure")
	}
}

func TestFetchReportFallsBackToArchive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	arch, err := NewArchive(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("NewArchive: %v", err)
	}
	t.Cleanup(func() { arch.Close() })
	rep := &api.FinalReport{Summary: api.ReportSummary{HireRecommendation: "Hire"}}
	if err := arch.SaveCompleted(Session{ID: "s7"}, nil, rep); err != nil {
		t.Fatalf("SaveCompleted: %v", err)
	}

	client := api.NewClient(srv.URL, "tok", 5*time.Second)
	cat := NewCatalog(client, nil, nil, arch, nil)
	got, err := cat.FetchReport(context.Background(), "s7")
	if err != nil {
		t.Fatalf("FetchReport: %v", err)
	}
	if got == nil || got.Summary.HireRecommendation != "Hire" {
		t.Errorf("report = %+v", got)
	}
}

func TestListPassesThrough(t *testing.T) {
	cat := catalogServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/mock-interview/history" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{"sessions": testutil.Summaries()})
	})
	got, err := cat.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].SessionID != "sess-1" {
		t.Errorf("sessions = %+v", got)
	}
}
