package session

import (
	"context"
	"fmt"

	"github.com/prepdeck-dev/prepdeck/internal/api"
	"github.com/prepdeck-dev/prepdeck/internal/log"
	"github.com/prepdeck-dev/prepdeck/internal/speech"
)

// Catalog lists, starts, opens and deletes sessions. It seeds live
// controllers from start responses and read-only controllers from history
// rows.
type Catalog struct {
	client          *api.Client
	speaker         *speech.Speaker
	logger          *log.Logger
	archive         *Archive
	preferredVoices []string
}

// NewCatalog wires the remote client and the shared panel resources.
// speaker, logger and archive may each be nil.
func NewCatalog(client *api.Client, speaker *speech.Speaker, logger *log.Logger, archive *Archive, preferredVoices []string) *Catalog {
	return &Catalog{
		client:          client,
		speaker:         speaker,
		logger:          logger,
		archive:         archive,
		preferredVoices: preferredVoices,
	}
}

// List fetches the session history in whatever order the service returns it.
func (c *Catalog) List(ctx context.Context) ([]api.SessionSummary, error) {
	return c.client.ListSessions(ctx)
}

// Start requests a new session and builds a live controller from the
// response. On failure no controller is created and catalog state is
// unchanged.
func (c *Catalog) Start(ctx context.Context, settings Settings) (*Controller, error) {
	res, err := c.client.StartSession(ctx, api.StartRequest{
		TargetRole:      settings.TargetRole,
		Difficulty:      settings.Difficulty,
		NumInterviewers: settings.NumInterviewers,
		DurationMinutes: settings.DurationMinutes,
		CareerLevel:     settings.CareerLevel,
		PresentSkills:   settings.PresentSkills,
		MissingSkills:   settings.MissingSkills,
	})
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	sess := Session{
		ID:           res.SessionID,
		Brief:        res.SessionBrief,
		TargetRole:   settings.TargetRole,
		Difficulty:   settings.Difficulty,
		CareerLevel:  settings.CareerLevel,
		Interviewers: res.Interviewers,
	}

	if c.speaker != nil {
		names := make([]string, len(res.Interviewers))
		for i, iv := range res.Interviewers {
			names[i] = iv.Name
		}
		c.speaker.AssignVoices(names, c.preferredVoices)
	}

	remaining := res.RemainingSeconds
	if remaining <= 0 {
		remaining = res.DurationMinutes * 60
	}
	return NewController(sess, res.FirstQuestion, remaining, c.speaker, c.logger, c.archive), nil
}

// OpenHistory builds a read-only controller from a history row. No live
// fields are populated.
func (c *Catalog) OpenHistory(sum api.SessionSummary) *Controller {
	return NewHistoryController(Session{
		ID:          sum.SessionID,
		TargetRole:  sum.TargetRole,
		Difficulty:  sum.Difficulty,
		CareerLevel: sum.CareerLevel,
	}, c.logger)
}

// FetchReport loads the final report for a session, falling back to the
// local archive when the remote copy is unavailable.
func (c *Catalog) FetchReport(ctx context.Context, id string) (*api.FinalReport, error) {
	report, err := c.client.FetchReport(ctx, id)
	if err == nil && report != nil {
		return report, nil
	}
	if c.archive != nil {
		if archived, aerr := c.archive.Get(id); aerr == nil && archived != nil && archived.Report != nil {
			return archived.Report, nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("fetch report: %w", err)
	}
	return nil, nil
}

// Delete removes a session remotely and from the local archive. The caller
// confirms with the user before invoking this; on failure the listed
// collection is left as-is for re-fetch.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	if err := c.client.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if c.archive != nil {
		_ = c.archive.Delete(id)
	}
	if c.logger != nil {
		_ = c.logger.Append(log.LogEvent{Event: log.EventSessionDeleted, SessionID: id})
	}
	return nil
}
