package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/prepdeck-dev/prepdeck/internal/api"
)

// Archive mirrors completed sessions into a local SQLite database so their
// transcripts and reports stay readable offline after the remote copy is
// deleted.
type Archive struct {
	db *sql.DB
}

// ArchivedSession is one locally stored completed session.
type ArchivedSession struct {
	Session     Session
	Transcript  []Entry
	Report      *api.FinalReport
	CompletedAt time.Time
}

// NewArchive opens the SQLite database at dbPath and creates tables if they
// don't exist.
func NewArchive(dbPath string) (*Archive, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if err := createArchiveTables(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create archive tables: %w", err)
	}
	return &Archive{db: db}, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

func createArchiveTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		target_role TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		career_level TEXT,
		brief TEXT,
		interviewers TEXT NOT NULL,
		report TEXT,
		completed_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS transcript (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		kind INTEGER NOT NULL,
		speaker TEXT,
		text TEXT,
		skipped INTEGER DEFAULT 0,
		feedback TEXT,
		penalty_seconds INTEGER DEFAULT 0,
		penalty_reason TEXT,
		at DATETIME,
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveCompleted stores (or replaces) a finished session, its transcript and
// its final report.
func (a *Archive) SaveCompleted(sess Session, transcript []Entry, report *api.FinalReport) error {
	interviewers, err := json.Marshal(sess.Interviewers)
	if err != nil {
		return fmt.Errorf("marshal interviewers: %w", err)
	}
	var reportJSON []byte
	if report != nil {
		reportJSON, err = json.Marshal(report)
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
	}

	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT OR REPLACE INTO sessions
		 (id, target_role, difficulty, career_level, brief, interviewers, report, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.TargetRole, sess.Difficulty, sess.CareerLevel,
		sess.Brief, string(interviewers), string(reportJSON), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM transcript WHERE session_id = ?`, sess.ID); err != nil {
		return fmt.Errorf("clear transcript: %w", err)
	}
	for i, e := range transcript {
		var feedbackJSON []byte
		if e.Feedback != nil {
			feedbackJSON, err = json.Marshal(e.Feedback)
			if err != nil {
				return fmt.Errorf("marshal feedback: %w", err)
			}
		}
		_, err = tx.Exec(
			`INSERT INTO transcript
			 (session_id, position, kind, speaker, text, skipped, feedback, penalty_seconds, penalty_reason, at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sess.ID, i, int(e.Kind), e.Speaker, e.Text, e.Skipped,
			string(feedbackJSON), e.PenaltySeconds, e.PenaltyReason, e.At,
		)
		if err != nil {
			return fmt.Errorf("insert transcript entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive tx: %w", err)
	}
	return nil
}

// Get returns the archived session with the given id, or nil if absent.
func (a *Archive) Get(id string) (*ArchivedSession, error) {
	row := a.db.QueryRow(
		`SELECT id, target_role, difficulty, career_level, brief, interviewers, report, completed_at
		 FROM sessions WHERE id = ?`, id,
	)

	var out ArchivedSession
	var interviewers, reportJSON string
	err := row.Scan(
		&out.Session.ID, &out.Session.TargetRole, &out.Session.Difficulty,
		&out.Session.CareerLevel, &out.Session.Brief, &interviewers,
		&reportJSON, &out.CompletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}
	out.Session.History = true

	if err := json.Unmarshal([]byte(interviewers), &out.Session.Interviewers); err != nil {
		return nil, fmt.Errorf("unmarshal interviewers: %w", err)
	}
	if reportJSON != "" {
		var rep api.FinalReport
		if err := json.Unmarshal([]byte(reportJSON), &rep); err != nil {
			return nil, fmt.Errorf("unmarshal report: %w", err)
		}
		out.Report = &rep
	}

	rows, err := a.db.Query(
		`SELECT kind, speaker, text, skipped, feedback, penalty_seconds, penalty_reason, at
		 FROM transcript WHERE session_id = ? ORDER BY position`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("query transcript: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e Entry
		var kind int
		var feedbackJSON string
		if err := rows.Scan(&kind, &e.Speaker, &e.Text, &e.Skipped, &feedbackJSON, &e.PenaltySeconds, &e.PenaltyReason, &e.At); err != nil {
			return nil, fmt.Errorf("scan transcript entry: %w", err)
		}
		e.Kind = EntryKind(kind)
		if feedbackJSON != "" {
			var fb api.Feedback
			if err := json.Unmarshal([]byte(feedbackJSON), &fb); err != nil {
				return nil, fmt.Errorf("unmarshal feedback: %w", err)
			}
			e.Feedback = &fb
		}
		out.Transcript = append(out.Transcript, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	return &out, nil
}

// Delete removes a session and its transcript from the archive. Deleting an
// absent id is not an error.
func (a *Archive) Delete(id string) error {
	if _, err := a.db.Exec(`DELETE FROM transcript WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("delete transcript: %w", err)
	}
	if _, err := a.db.Exec(`DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// List returns all archived sessions, most recently completed first, without
// their transcripts.
func (a *Archive) List() ([]ArchivedSession, error) {
	rows, err := a.db.Query(
		`SELECT id, target_role, difficulty, career_level, brief, interviewers, report, completed_at
		 FROM sessions ORDER BY completed_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []ArchivedSession
	for rows.Next() {
		var s ArchivedSession
		var interviewers, reportJSON string
		if err := rows.Scan(&s.Session.ID, &s.Session.TargetRole, &s.Session.Difficulty,
			&s.Session.CareerLevel, &s.Session.Brief, &interviewers, &reportJSON, &s.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		s.Session.History = true
		if err := json.Unmarshal([]byte(interviewers), &s.Session.Interviewers); err != nil {
			return nil, fmt.Errorf("unmarshal interviewers: %w", err)
		}
		if reportJSON != "" {
			var rep api.FinalReport
			if err := json.Unmarshal([]byte(reportJSON), &rep); err != nil {
				return nil, fmt.Errorf("unmarshal report: %w", err)
			}
			s.Report = &rep
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read sessions: %w", err)
	}
	return out, nil
}
