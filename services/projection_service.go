package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ovationhq/arts_academy/models"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// CalendarEvent is the time-boxed display form of one ClassSession. It is
// derived on every read and never persisted; edits go back to the session
// record, never to the event.
type CalendarEvent struct {
	ID      uuid.UUID           `json:"id"`
	Title   string              `json:"title"`
	Start   time.Time           `json:"start"`
	End     time.Time           `json:"end"`
	Color   string              `json:"color"`
	Session models.ClassSession `json:"session"`
}

// SkippedSession reports a session that could not be projected onto the
// calendar, so malformed upstream data is surfaced instead of silently
// disappearing from view.
type SkippedSession struct {
	SessionID uuid.UUID `json:"session_id"`
	Reason    string    `json:"reason"`
}

// ProjectSessions turns session records into calendar events. Records with a
// non-positive duration or an unparseable date, time or timezone are excluded
// from the result and reported as skipped; the projection itself never fails.
func ProjectSessions(sessions []models.ClassSession) ([]CalendarEvent, []SkippedSession) {
	events := make([]CalendarEvent, 0, len(sessions))
	var skipped []SkippedSession

	for _, session := range sessions {
		event, err := projectSession(session)
		if err != nil {
			skipped = append(skipped, SkippedSession{SessionID: session.ID, Reason: err.Error()})
			continue
		}
		events = append(events, event)
	}
	return events, skipped
}

func projectSession(session models.ClassSession) (CalendarEvent, error) {
	if session.DurationMinutes <= 0 {
		return CalendarEvent{}, fmt.Errorf("duration must be positive, got %d", session.DurationMinutes)
	}

	start, err := SessionStart(session)
	if err != nil {
		return CalendarEvent{}, err
	}

	return CalendarEvent{
		ID:      session.ID,
		Title:   session.Title,
		Start:   start,
		End:     start.Add(time.Duration(session.DurationMinutes) * time.Minute),
		Color:   ColorForSession(session.Category, session.Status),
		Session: session,
	}, nil
}

// SessionStart combines the session's start date and time-of-day into an
// absolute instant in the session's declared timezone.
func SessionStart(session models.ClassSession) (time.Time, error) {
	loc, err := time.LoadLocation(session.Timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q", session.Timezone)
	}

	start, err := time.ParseInLocation(DateLayout+" "+TimeLayout, session.StartDate+" "+session.StartTime, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start %q %q", session.StartDate, session.StartTime)
	}
	return start, nil
}
