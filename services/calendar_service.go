package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ovationhq/arts_academy/models"
)

type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

var (
	ErrUnknownGranularity  = errors.New("granularity must be day, week or month")
	ErrSessionNotDisplayed = errors.New("session is not on the visible calendar")
	ErrSessionNotMovable   = errors.New("completed or cancelled classes cannot be moved")
	ErrCalendarClosed      = errors.New("calendar view has been closed")
)

// CalendarView tracks the visible time window: a granularity and an anchor
// date. Navigation moves the anchor by one unit of the current granularity;
// switching granularity keeps the anchor and recomputes the window around it.
type CalendarView struct {
	Granularity Granularity
	Anchor      time.Time

	now func() time.Time
}

// NewCalendarView starts on the week containing today.
func NewCalendarView(now func() time.Time) *CalendarView {
	if now == nil {
		now = time.Now
	}
	v := &CalendarView{Granularity: GranularityWeek, now: now}
	v.Anchor = midnight(now())
	return v
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (v *CalendarView) Next() { v.shift(1) }

func (v *CalendarView) Prev() { v.shift(-1) }

func (v *CalendarView) Today() { v.Anchor = midnight(v.now()) }

func (v *CalendarView) shift(units int) {
	switch v.Granularity {
	case GranularityDay:
		v.Anchor = v.Anchor.AddDate(0, 0, units)
	case GranularityMonth:
		v.Anchor = v.Anchor.AddDate(0, units, 0)
	default:
		v.Anchor = v.Anchor.AddDate(0, 0, 7*units)
	}
}

func (v *CalendarView) SetGranularity(g Granularity) error {
	switch g {
	case GranularityDay, GranularityWeek, GranularityMonth:
		v.Granularity = g
		return nil
	default:
		return ErrUnknownGranularity
	}
}

// SetAnchor moves the view to the window containing the given date.
func (v *CalendarView) SetAnchor(t time.Time) { v.Anchor = midnight(t) }

// Window returns the half-open interval [start, end) currently visible.
// Week windows start on Monday; month windows cover the calendar month
// containing the anchor.
func (v *CalendarView) Window() (time.Time, time.Time) {
	anchor := midnight(v.Anchor)
	switch v.Granularity {
	case GranularityDay:
		return anchor, anchor.AddDate(0, 0, 1)
	case GranularityMonth:
		first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
		return first, first.AddDate(0, 1, 0)
	default:
		offset := (int(anchor.Weekday()) + 6) % 7
		monday := anchor.AddDate(0, 0, -offset)
		return monday, monday.AddDate(0, 0, 7)
	}
}

// FilterVisible keeps the events whose interval overlaps the visible window.
func (v *CalendarView) FilterVisible(events []CalendarEvent) []CalendarEvent {
	start, end := v.Window()
	visible := make([]CalendarEvent, 0, len(events))
	for _, ev := range events {
		if ev.Start.Before(end) && ev.End.After(start) {
			visible = append(visible, ev)
		}
	}
	return visible
}

// CalendarController owns one scheduling screen: the view state plus a cache
// of projected events, refreshed from the store. All mutations are delegated
// to the store; the cache only ever holds disposable projections.
type CalendarController struct {
	View *CalendarView

	mu      sync.Mutex
	store   ScheduleStore
	events  map[uuid.UUID]*CalendarEvent
	skipped []SkippedSession
	closed  bool
}

func NewCalendarController(store ScheduleStore, now func() time.Time) *CalendarController {
	return &CalendarController{
		View:   NewCalendarView(now),
		store:  store,
		events: make(map[uuid.UUID]*CalendarEvent),
	}
}

// Refresh re-reads the visible window from the store and rebuilds the event
// cache. Stale projections from before any mutation are discarded wholesale.
func (c *CalendarController) Refresh(ctx context.Context) error {
	start, end := c.View.Window()
	filter := SessionFilter{
		FromDate: start.Format(DateLayout),
		ToDate:   end.AddDate(0, 0, -1).Format(DateLayout),
	}

	sessions, err := c.store.ListSessions(ctx, filter)
	if err != nil {
		return err
	}

	events, skipped := ProjectSessions(sessions)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCalendarClosed
	}
	c.events = make(map[uuid.UUID]*CalendarEvent, len(events))
	for i := range events {
		ev := events[i]
		c.events[ev.ID] = &ev
	}
	c.skipped = skipped
	return nil
}

// VisibleEvents returns the cached events inside the current window, ordered
// by start instant.
func (c *CalendarController) VisibleEvents() []CalendarEvent {
	c.mu.Lock()
	all := make([]CalendarEvent, 0, len(c.events))
	for _, ev := range c.events {
		all = append(all, *ev)
	}
	c.mu.Unlock()

	sort.Slice(all, func(i, j int) bool { return all[i].Start.Before(all[j].Start) })
	return c.View.FilterVisible(all)
}

// Skipped reports the sessions excluded from the last refresh.
func (c *CalendarController) Skipped() []SkippedSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]SkippedSession, len(c.skipped))
	copy(out, c.skipped)
	return out
}

// DropEvent handles a drag of an event to a new date/time slot. The cached
// event is moved optimistically before the store call; if the store rejects
// the reschedule, the event is put back on its prior slot. Results arriving
// after Close are discarded rather than applied to a torn-down view.
func (c *CalendarController) DropEvent(ctx context.Context, sessionID uuid.UUID, newStartDate, newStartTime string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrCalendarClosed
	}

	ev, ok := c.events[sessionID]
	if !ok {
		c.mu.Unlock()
		return ErrSessionNotDisplayed
	}
	if ev.Session.Status == models.SessionCompleted || ev.Session.Status == models.SessionCancelled {
		c.mu.Unlock()
		return ErrSessionNotMovable
	}

	priorDate, priorTime := ev.Session.StartDate, ev.Session.StartTime

	moved := ev.Session
	moved.StartDate = newStartDate
	moved.StartTime = newStartTime
	optimistic, err := projectSession(moved)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	*ev = optimistic
	c.mu.Unlock()

	storeErr := c.store.RescheduleSession(ctx, sessionID, newStartDate, newStartTime)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		// The view is gone; neither confirm nor revert on its behalf.
		return storeErr
	}
	if storeErr != nil {
		if ev, ok := c.events[sessionID]; ok {
			reverted := ev.Session
			reverted.StartDate = priorDate
			reverted.StartTime = priorTime
			if original, err := projectSession(reverted); err == nil {
				*ev = original
			}
		}
		return storeErr
	}
	return nil
}

// Close tears the view down; late mutation results are ignored afterwards.
func (c *CalendarController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}
