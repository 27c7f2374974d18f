package api

// Interviewer is one member of the generated panel.
type Interviewer struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// StartRequest configures a new mock-interview session.
type StartRequest struct {
	TargetRole      string   `json:"target_role"`
	Difficulty      string   `json:"difficulty"`
	NumInterviewers int      `json:"num_interviewers"`
	DurationMinutes int      `json:"duration_minutes"`
	CareerLevel     string   `json:"career_level"`
	PresentSkills   []string `json:"present_skills"`
	MissingSkills   []string `json:"missing_skills"`
}

// StartResponse seeds a live session.
type StartResponse struct {
	SessionID        string        `json:"session_id"`
	SessionBrief     string        `json:"session_brief"`
	Interviewers     []Interviewer `json:"interviewers"`
	FirstQuestion    string        `json:"first_question"`
	DurationMinutes  int           `json:"duration_minutes"`
	RemainingSeconds int           `json:"remaining_seconds"`
}

// AnswerRequest submits one answer (or skip) for evaluation.
type AnswerRequest struct {
	Answer          string `json:"answer"`
	InterviewerName string `json:"interviewer_name,omitempty"`
	ElapsedSeconds  int    `json:"elapsed_seconds"`
	Skipped         bool   `json:"skipped"`
}

// Feedback is the evaluation of a single answer.
type Feedback struct {
	Summary      string   `json:"summary"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	Score        float64  `json:"score"`
}

// AnswerResponse carries feedback plus the continuation decision.
type AnswerResponse struct {
	SessionID        string   `json:"session_id"`
	Feedback         Feedback `json:"feedback"`
	NextQuestion     string   `json:"next_question"`
	ShouldContinue   bool     `json:"should_continue"`
	RoundsCompleted  int      `json:"rounds_completed"`
	RemainingSeconds int      `json:"remaining_seconds"`
	PenaltySeconds   int      `json:"penalty_seconds"`
	PenaltyReason    string   `json:"penalty_reason"`
}

// ReportSummary is the body of a final interview report.
type ReportSummary struct {
	OverallImpression   string   `json:"overall_impression"`
	HireRecommendation  string   `json:"hire_recommendation"`
	Strengths           []string `json:"strengths"`
	AreasForImprovement []string `json:"areas_for_improvement"`
	NextSteps           []string `json:"next_steps"`
}

// FinalReport is produced once per session at termination.
type FinalReport struct {
	Summary ReportSummary `json:"summary"`
}

type reportResponse struct {
	Report *FinalReport `json:"report"`
}

// SessionSummary is one row of the session history listing.
type SessionSummary struct {
	SessionID          string `json:"session_id"`
	TargetRole         string `json:"target_role"`
	Difficulty         string `json:"difficulty"`
	NumInterviewers    int    `json:"num_interviewers"`
	DurationMinutes    int    `json:"duration_minutes"`
	CareerLevel        string `json:"career_level"`
	Status             string `json:"status"`
	UpdatedAt          string `json:"updated_at"`
	Summary            string `json:"summary"`
	HireRecommendation string `json:"hire_recommendation"`
}

type historyResponse struct {
	Sessions []SessionSummary `json:"sessions"`
}

// TranscribeResponse carries the recognized text for an uploaded recording.
// An empty Text is not an error.
type TranscribeResponse struct {
	Text string `json:"text"`
}
