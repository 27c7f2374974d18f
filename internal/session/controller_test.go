package session

import (
	"strings"
	"testing"

	"github.com/prepdeck-dev/prepdeck/internal/api"
	"github.com/prepdeck-dev/prepdeck/internal/testutil"
)

func liveController(t *testing.T, interviewers ...api.Interviewer) *Controller {
	t.Helper()
	if len(interviewers) == 0 {
		interviewers = []api.Interviewer{
			{Name: "Sarah Chen", Role: "Engineering Manager"},
			{Name: "Marcus Reed", Role: "Staff Engineer"},
		}
	}
	sess := Session{
		ID:           "sess-1",
		TargetRole:   "Backend Engineer",
		Difficulty:   "medium",
		Interviewers: interviewers,
	}
	c := NewController(sess, "Tell me about yourself.", 1200, nil, nil, nil)
	t.Cleanup(c.Teardown)
	return c
}

func feedbackResponse(next string, cont bool, penalty int) api.AnswerResponse {
	return api.AnswerResponse{
		Feedback:        api.Feedback{Summary: "solid", Score: 7.5},
		NextQuestion:    next,
		ShouldContinue:  cont,
		RoundsCompleted: 1,
		PenaltySeconds:  penalty,
		PenaltyReason:   "overtime",
	}
}

func countKind(entries []Entry, k EntryKind) int {
	n := 0
	for _, e := range entries {
		if e.Kind == k {
			n++
		}
	}
	return n
}

func TestBeginPlaysGreetingOnce(t *testing.T) {
	c := liveController(t)
	c.Begin()

	tr := c.Transcript()
	if len(tr) != 2 {
		t.Fatalf("transcript after Begin = %d entries, want 2", len(tr))
	}
	if tr[0].Kind != EntrySystem || !strings.Contains(tr[0].Text, "Hi, I'm Sarah Chen, Engineering Manager") {
		t.Errorf("greeting entry = %+v", tr[0])
	}
	if !strings.Contains(tr[0].Text, "Backend Engineer position") {
		t.Errorf("greeting missing target role: %q", tr[0].Text)
	}
	if tr[1].Kind != EntryInterviewer || tr[1].Speaker != "Sarah Chen" || tr[1].Text != "Tell me about yourself." {
		t.Errorf("first question entry = %+v", tr[1])
	}
	if c.State() != StateAwaitingAnswer {
		t.Errorf("state = %v, want awaiting_answer", c.State())
	}

	// Second Begin is a no-op: the greeting never repeats.
	c.Begin()
	if got := len(c.Transcript()); got != 2 {
		t.Errorf("transcript after second Begin = %d entries, want 2", got)
	}
}

func TestBeginFallsBackToRolePlaceholders(t *testing.T) {
	sess := Session{ID: "s", Interviewers: []api.Interviewer{{Role: "Recruiter"}}}
	c := NewController(sess, "Q1", 60, nil, nil, nil)
	t.Cleanup(c.Teardown)
	c.Begin()

	tr := c.Transcript()
	if !strings.Contains(tr[0].Text, "Hi, I'm Interviewer, Recruiter") {
		t.Errorf("greeting = %q", tr[0].Text)
	}
	if !strings.Contains(tr[0].Text, "the this role position") {
		t.Errorf("greeting missing role fallback: %q", tr[0].Text)
	}
}

func TestSubmitEmptyNonSkipRejectedLocally(t *testing.T) {
	c := liveController(t)
	c.Begin()
	before := len(c.Transcript())

	if _, err := c.SubmitAnswer("", false); err != ErrEmptyAnswer {
		t.Fatalf("err = %v, want ErrEmptyAnswer", err)
	}
	if got := len(c.Transcript()); got != before {
		t.Errorf("transcript mutated on rejected submit: %d -> %d", before, got)
	}
	if c.State() != StateAwaitingAnswer {
		t.Errorf("state changed on rejected submit: %v", c.State())
	}
}

func TestSubmitSkipWithEmptyAnswerAccepted(t *testing.T) {
	c := liveController(t)
	c.Begin()

	req, err := c.SubmitAnswer("", true)
	if err != nil {
		t.Fatalf("skip rejected: %v", err)
	}
	if !req.Skipped {
		t.Error("request not marked skipped")
	}
	if req.InterviewerName != "Sarah Chen" {
		t.Errorf("interviewer_name = %q", req.InterviewerName)
	}

	c.ApplyAnswerResult(feedbackResponse("Next?", true, 0))
	tr := c.Transcript()
	user := tr[len(tr)-3]
	if user.Kind != EntryUser || user.Text != "[Skipped]" || !user.Skipped {
		t.Errorf("user entry = %+v, want [Skipped]", user)
	}
}

func TestSubmitWhileSubmittingRejected(t *testing.T) {
	c := liveController(t)
	c.Begin()
	if _, err := c.SubmitAnswer("an answer", false); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := c.SubmitAnswer("another", false); err != ErrNotLive {
		t.Fatalf("second submit err = %v, want ErrNotLive", err)
	}
}

func TestAnswerResultAdvancesRotation(t *testing.T) {
	// Scenario: 1200s, 2 interviewers, answer with a 10 second penalty.
	c := liveController(t)
	c.Begin()
	before := len(c.Transcript())
	remainingBefore := c.Remaining()

	if _, err := c.SubmitAnswer("I led a migration project.", false); err != nil {
		t.Fatalf("submit: %v", err)
	}
	c.ApplyAnswerResult(feedbackResponse("Why this company?", true, 10))

	if got := c.Remaining(); got != remainingBefore-10 {
		t.Errorf("remaining = %d, want %d", got, remainingBefore-10)
	}
	if got := c.CurrentIndex(); got != 1 {
		t.Errorf("currentIndex = %d, want 1", got)
	}
	if got := c.Question(); got != "Why this company?" {
		t.Errorf("question = %q", got)
	}
	if c.State() != StateAwaitingAnswer {
		t.Errorf("state = %v", c.State())
	}

	tr := c.Transcript()
	// user + feedback + next interviewer question
	if got := len(tr) - before; got != 3 {
		t.Fatalf("transcript grew by %d entries, want 3", got)
	}
	if tr[before].Kind != EntryUser || tr[before+1].Kind != EntryFeedback || tr[before+2].Kind != EntryInterviewer {
		t.Errorf("entry kinds = %v %v %v", tr[before].Kind, tr[before+1].Kind, tr[before+2].Kind)
	}
	if tr[before+1].PenaltySeconds != 10 || tr[before+1].PenaltyReason != "overtime" {
		t.Errorf("feedback entry penalty = %+v", tr[before+1])
	}
	if tr[before+2].Speaker != "Marcus Reed" {
		t.Errorf("next question speaker = %q", tr[before+2].Speaker)
	}
}

func TestRotationWrapsPastRosterEnd(t *testing.T) {
	c := liveController(t)
	c.Begin()
	for i, q := range []string{"Q2", "Q3"} {
		if _, err := c.SubmitAnswer("answer", false); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		c.ApplyAnswerResult(feedbackResponse(q, true, 0))
	}
	// Two rotations over a 2-person panel lands back on index 0.
	if got := c.CurrentIndex(); got != 0 {
		t.Errorf("currentIndex = %d, want 0", got)
	}
}

func TestPenaltyNeverDrivesRemainingNegative(t *testing.T) {
	c := liveController(t)
	c.Begin()
	if _, err := c.SubmitAnswer("short", false); err != nil {
		t.Fatalf("submit: %v", err)
	}
	c.ApplyAnswerResult(feedbackResponse("Next?", true, 100000))
	if got := c.Remaining(); got != 0 {
		t.Errorf("remaining = %d, want 0", got)
	}
}

func TestShouldContinueFalseBeginsEnding(t *testing.T) {
	c := liveController(t)
	c.Begin()
	if _, err := c.SubmitAnswer("final answer", false); err != nil {
		t.Fatalf("submit: %v", err)
	}
	c.ApplyAnswerResult(feedbackResponse("", false, 0))

	if c.State() != StateEnding {
		t.Fatalf("state = %v, want ending", c.State())
	}
	assertEndingEvent(t, c, "completed")
}

func TestFailSubmissionPreservesQuestion(t *testing.T) {
	c := liveController(t)
	c.Begin()
	if _, err := c.SubmitAnswer("my answer", false); err != nil {
		t.Fatalf("submit: %v", err)
	}
	before := len(c.Transcript())
	c.FailSubmission(errSentinel)

	tr := c.Transcript()
	if len(tr) != before+1 {
		t.Fatalf("transcript grew by %d, want 1", len(tr)-before)
	}
	last := tr[len(tr)-1]
	if last.Kind != EntrySystem || last.Text != "Failed to send answer." {
		t.Errorf("failure entry = %+v", last)
	}
	if c.State() != StateAwaitingAnswer {
		t.Errorf("state = %v, want awaiting_answer", c.State())
	}
	if c.Question() != "Tell me about yourself." {
		t.Errorf("question changed: %q", c.Question())
	}

	// Retry succeeds afterwards and the result lands normally.
	if _, err := c.SubmitAnswer("my answer", false); err != nil {
		t.Fatalf("retry submit: %v", err)
	}
	c.ApplyAnswerResult(*testutil.AnswerResponse("What interests you here?"))
	if c.Question() != "What interests you here?" {
		t.Errorf("question = %q after retry", c.Question())
	}
}

func TestEndingIsSingleShot(t *testing.T) {
	c := liveController(t)
	c.Begin()

	if !c.BeginEnding("closed") {
		t.Fatal("first BeginEnding did not transition")
	}
	if c.BeginEnding("closed") {
		t.Error("second BeginEnding transitioned again")
	}
	// Expiry racing an explicit close is also absorbed.
	c.onExpire()

	count := 0
	for {
		select {
		case ev := <-c.Events():
			if ev.Kind == EventEndingStarted {
				count++
			}
			continue
		default:
		}
		break
	}
	if count != 1 {
		t.Errorf("EventEndingStarted emitted %d times, want 1", count)
	}
}

func TestExpiryBeginsEnding(t *testing.T) {
	c := liveController(t)
	c.Begin()
	c.onExpire()

	if c.State() != StateEnding {
		t.Fatalf("state = %v, want ending", c.State())
	}
	if c.Remaining() != 0 {
		t.Errorf("remaining = %d, want 0", c.Remaining())
	}
	assertEndingEvent(t, c, "time_expired")

	c.FailReport(errSentinel)
	tr := c.Transcript()
	last := tr[len(tr)-1]
	if last.Text != "Failed to generate final report." {
		t.Errorf("failure entry = %q", last.Text)
	}
	if c.State() != StateEnded {
		t.Errorf("state = %v, want ended", c.State())
	}
}

func TestApplyReportCompletesEnding(t *testing.T) {
	arch := &captureArchiver{}
	sess := Session{ID: "s9", TargetRole: "PM", Interviewers: []api.Interviewer{{Name: "A"}}}
	c := NewController(sess, "Q1", 600, nil, nil, arch)
	t.Cleanup(c.Teardown)
	c.Begin()
	c.BeginEnding("closed")

	rep := testutil.FinalReport()
	c.ApplyReport(rep)

	if c.State() != StateEnded {
		t.Fatalf("state = %v, want ended", c.State())
	}
	if c.Report() != rep {
		t.Error("report not stored")
	}
	if arch.saved != 1 || arch.lastID != "s9" {
		t.Errorf("archive saves = %d id = %q", arch.saved, arch.lastID)
	}
}

func TestApplyNilReportIsFailure(t *testing.T) {
	c := liveController(t)
	c.Begin()
	c.BeginEnding("closed")
	c.ApplyReport(nil)

	if c.State() != StateEnded {
		t.Fatalf("state = %v, want ended", c.State())
	}
	tr := c.Transcript()
	if tr[len(tr)-1].Text != "Failed to generate final report." {
		t.Errorf("failure entry = %q", tr[len(tr)-1].Text)
	}
}

func TestHistorySessionIsInert(t *testing.T) {
	c := NewHistoryController(Session{ID: "old", TargetRole: "QA"}, nil)
	t.Cleanup(c.Teardown)

	if c.State() != StateReportOnly {
		t.Fatalf("state = %v, want report_only", c.State())
	}
	if _, err := c.SubmitAnswer("anything", false); err != ErrNotLive {
		t.Errorf("submit err = %v, want ErrNotLive", err)
	}
	if _, err := c.SubmitAnswer("", true); err != ErrNotLive {
		t.Errorf("skip err = %v, want ErrNotLive", err)
	}
	if c.BeginEnding("closed") {
		t.Error("history session began ending")
	}

	c.FailReport(errSentinel)
	tr := c.Transcript()
	if len(tr) != 1 || tr[0].Text != "Failed to load final report." {
		t.Errorf("transcript = %+v", tr)
	}
	if c.State() != StateReportOnly {
		t.Errorf("state = %v, want report_only after failure", c.State())
	}

	rep := &api.FinalReport{}
	c.ApplyReport(rep)
	if c.Report() != rep {
		t.Error("history report not stored")
	}
}

func TestResultLandingAfterExpiryRecordsTurn(t *testing.T) {
	c := liveController(t)
	c.Begin()
	if _, err := c.SubmitAnswer("an answer", false); err != nil {
		t.Fatalf("submit: %v", err)
	}
	c.onExpire()
	if c.State() != StateEnding {
		t.Fatalf("state = %v, want ending", c.State())
	}
	before := len(c.Transcript())
	q := c.Question()

	c.ApplyAnswerResult(feedbackResponse("Another question?", true, 0))

	tr := c.Transcript()
	if len(tr) != before+2 {
		t.Fatalf("transcript grew by %d, want 2", len(tr)-before)
	}
	user, fb := tr[len(tr)-2], tr[len(tr)-1]
	if user.Kind != EntryUser || user.Text != "an answer" {
		t.Errorf("user entry = %+v", user)
	}
	if fb.Kind != EntryFeedback || fb.Feedback == nil {
		t.Errorf("feedback entry = %+v", fb)
	}
	if c.State() != StateEnding {
		t.Errorf("state = %v, session resumed after expiry", c.State())
	}
	if c.Question() != q {
		t.Errorf("question advanced to %q after expiry", c.Question())
	}

	// A duplicate result records nothing further.
	c.ApplyAnswerResult(feedbackResponse("Again?", true, 0))
	if got := len(c.Transcript()); got != before+2 {
		t.Errorf("transcript = %d entries after duplicate result, want %d", got, before+2)
	}
}

func TestConfirmCloseEmitsNoEndingEvent(t *testing.T) {
	c := liveController(t)
	c.Begin()
	drainEvents(c)

	if !c.ConfirmClose() {
		t.Fatal("ConfirmClose did not begin ending")
	}
	if c.State() != StateEnding {
		t.Fatalf("state = %v, want ending", c.State())
	}
	for {
		select {
		case ev := <-c.Events():
			if ev.Kind == EventEndingStarted {
				t.Fatal("confirmed close emitted an ending event; report would be fetched twice")
			}
		default:
			return
		}
	}
}

func TestCloseRequiresConfirmWhileLive(t *testing.T) {
	c := liveController(t)
	c.Begin()

	if got := c.RequestClose(); got != CloseConfirm {
		t.Fatalf("RequestClose = %v, want CloseConfirm", got)
	}
	// Declining changes nothing; still live, still confirmable.
	if c.State() != StateAwaitingAnswer {
		t.Errorf("state = %v after declined close", c.State())
	}

	if !c.ConfirmClose() {
		t.Error("ConfirmClose did not begin ending")
	}
	if got := c.RequestClose(); got != CloseNow {
		t.Errorf("RequestClose after ending = %v, want CloseNow", got)
	}
}

func TestCloseImmediateWhenEndedOrHistory(t *testing.T) {
	c := liveController(t)
	c.Begin()
	c.BeginEnding("closed")
	if got := c.RequestClose(); got != CloseNow {
		t.Errorf("ended RequestClose = %v, want CloseNow", got)
	}

	h := NewHistoryController(Session{ID: "old"}, nil)
	t.Cleanup(h.Teardown)
	if got := h.RequestClose(); got != CloseNow {
		t.Errorf("history RequestClose = %v, want CloseNow", got)
	}
}

func TestTeardownDropsLateEvents(t *testing.T) {
	c := liveController(t)
	c.Begin()
	c.Teardown()
	drainEvents(c)

	c.onTick(42)
	select {
	case ev := <-c.Events():
		t.Fatalf("event after teardown: %+v", ev)
	default:
	}
}

func TestEventsCarryPanelID(t *testing.T) {
	c := liveController(t)
	c.Begin()
	c.onTick(10)
	select {
	case ev := <-c.Events():
		if ev.Panel != c.PanelID() {
			t.Errorf("event panel = %v, want %v", ev.Panel, c.PanelID())
		}
		if ev.Kind != EventTick || ev.Remaining != 10 {
			t.Errorf("event = %+v", ev)
		}
	default:
		t.Fatal("no event emitted")
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "0:00"},
		{5, "0:05"},
		{59, "0:59"},
		{60, "1:00"},
		{75, "1:15"},
		{600, "10:00"},
		{1199, "19:59"},
		{-3, "0:00"},
	}
	for _, tc := range tests {
		if got := FormatTime(tc.seconds); got != tc.want {
			t.Errorf("FormatTime(%d) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func assertEndingEvent(t *testing.T, c *Controller, reason string) {
	t.Helper()
	for {
		select {
		case ev := <-c.Events():
			if ev.Kind == EventEndingStarted {
				if ev.EndReason != reason {
					t.Errorf("end reason = %q, want %q", ev.EndReason, reason)
				}
				return
			}
		default:
			t.Fatal("no EventEndingStarted emitted")
		}
	}
}

func drainEvents(c *Controller) {
	for {
		select {
		case <-c.Events():
		default:
			return
		}
	}
}

type captureArchiver struct {
	saved  int
	lastID string
}

func (a *captureArchiver) SaveCompleted(sess Session, transcript []Entry, report *api.FinalReport) error {
	a.saved++
	a.lastID = sess.ID
	return nil
}

var errSentinel = errTest("boom")

type errTest string

func (e errTest) Error() string { return string(e) }
