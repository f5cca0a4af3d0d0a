package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ovationhq/arts_academy/models"
)

type scheduleStoreStub struct {
	mu sync.Mutex

	sessions  []models.ClassSession
	vacations []models.VacationPeriod

	listErr       error
	rescheduleErr error
	cancelErr     error

	rescheduleCalls int
	cancelCalls     int

	lastRescheduleID   uuid.UUID
	lastRescheduleDate string
	lastRescheduleTime string

	onReschedule func()
	onCancel     func()
}

func (s *scheduleStoreStub) ListSessions(ctx context.Context, filter SessionFilter) ([]models.ClassSession, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.ClassSession, len(s.sessions))
	copy(out, s.sessions)
	return out, nil
}

func (s *scheduleStoreStub) RescheduleSession(ctx context.Context, sessionID uuid.UUID, newStartDate, newStartTime string) error {
	s.mu.Lock()
	s.rescheduleCalls++
	s.lastRescheduleID = sessionID
	s.lastRescheduleDate = newStartDate
	s.lastRescheduleTime = newStartTime
	hook := s.onReschedule
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	return s.rescheduleErr
}

func (s *scheduleStoreStub) CancelSession(ctx context.Context, sessionID uuid.UUID, reason string) error {
	s.mu.Lock()
	s.cancelCalls++
	hook := s.onCancel
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	return s.cancelErr
}

func (s *scheduleStoreStub) ListVacationPeriods(ctx context.Context, instructorID uuid.UUID) ([]models.VacationPeriod, error) {
	return s.vacations, nil
}

func fixedNow() time.Time {
	return time.Date(2024, 6, 11, 14, 0, 0, 0, time.UTC) // a Tuesday
}

func TestCalendarView_InitialState(t *testing.T) {
	v := NewCalendarView(fixedNow)
	if v.Granularity != GranularityWeek {
		t.Errorf("initial granularity = %q, want week", v.Granularity)
	}
	if !v.Anchor.Equal(time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("initial anchor = %v, want today at midnight", v.Anchor)
	}
}

func TestCalendarView_Navigation(t *testing.T) {
	tests := []struct {
		name        string
		granularity Granularity
		move        func(*CalendarView)
		wantAnchor  time.Time
	}{
		{
			name:        "next week",
			granularity: GranularityWeek,
			move:        func(v *CalendarView) { v.Next() },
			wantAnchor:  time.Date(2024, 6, 18, 0, 0, 0, 0, time.UTC),
		},
		{
			name:        "prev week",
			granularity: GranularityWeek,
			move:        func(v *CalendarView) { v.Prev() },
			wantAnchor:  time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC),
		},
		{
			name:        "next day",
			granularity: GranularityDay,
			move:        func(v *CalendarView) { v.Next() },
			wantAnchor:  time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			name:        "prev month",
			granularity: GranularityMonth,
			move:        func(v *CalendarView) { v.Prev() },
			wantAnchor:  time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC),
		},
		{
			name:        "today resets after navigation",
			granularity: GranularityWeek,
			move:        func(v *CalendarView) { v.Next(); v.Next(); v.Today() },
			wantAnchor:  time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := NewCalendarView(fixedNow)
			if err := v.SetGranularity(tc.granularity); err != nil {
				t.Fatalf("SetGranularity: %v", err)
			}
			tc.move(v)
			if !v.Anchor.Equal(tc.wantAnchor) {
				t.Errorf("anchor = %v, want %v", v.Anchor, tc.wantAnchor)
			}
		})
	}
}

func TestCalendarView_SetGranularityRejectsUnknown(t *testing.T) {
	v := NewCalendarView(fixedNow)
	if err := v.SetGranularity("fortnight"); !errors.Is(err, ErrUnknownGranularity) {
		t.Fatalf("expected ErrUnknownGranularity, got %v", err)
	}
	if v.Granularity != GranularityWeek {
		t.Errorf("granularity changed to %q on rejected input", v.Granularity)
	}
}

func TestCalendarView_Window(t *testing.T) {
	tests := []struct {
		name        string
		granularity Granularity
		wantStart   time.Time
		wantEnd     time.Time
	}{
		{
			name:        "week snaps to monday",
			granularity: GranularityWeek,
			wantStart:   time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
			wantEnd:     time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC),
		},
		{
			name:        "day covers anchor date",
			granularity: GranularityDay,
			wantStart:   time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC),
			wantEnd:     time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			name:        "month covers calendar month",
			granularity: GranularityMonth,
			wantStart:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:     time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := NewCalendarView(fixedNow)
			if err := v.SetGranularity(tc.granularity); err != nil {
				t.Fatalf("SetGranularity: %v", err)
			}
			start, end := v.Window()
			if !start.Equal(tc.wantStart) || !end.Equal(tc.wantEnd) {
				t.Errorf("window = [%v, %v), want [%v, %v)", start, end, tc.wantStart, tc.wantEnd)
			}
		})
	}
}

func TestCalendarView_GranularitySwitchKeepsAnchor(t *testing.T) {
	v := NewCalendarView(fixedNow)
	if err := v.SetGranularity(GranularityMonth); err != nil {
		t.Fatalf("SetGranularity: %v", err)
	}
	if err := v.SetGranularity(GranularityWeek); err != nil {
		t.Fatalf("SetGranularity: %v", err)
	}
	start, end := v.Window()
	if v.Anchor.Before(start) || !v.Anchor.Before(end) {
		t.Errorf("anchor %v fell outside recomputed window [%v, %v)", v.Anchor, start, end)
	}
}

func TestCalendarController_VisibleEvents(t *testing.T) {
	instructor := uuid.New()
	inWindow := testSession("Morning Rehearsal", "2024-06-11", "09:00", 60, instructor, models.SessionScheduled)
	outOfWindow := testSession("Winter Gala Prep", "2024-12-02", "09:00", 60, instructor, models.SessionScheduled)
	store := &scheduleStoreStub{sessions: []models.ClassSession{outOfWindow, inWindow}}

	c := NewCalendarController(store, fixedNow)
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	visible := c.VisibleEvents()
	if len(visible) != 1 {
		t.Fatalf("expected 1 visible event, got %d", len(visible))
	}
	ev := visible[0]
	if ev.Title != "Morning Rehearsal" {
		t.Errorf("visible event = %q", ev.Title)
	}
	wantStart := time.Date(2024, 6, 11, 9, 0, 0, 0, time.UTC)
	if !ev.Start.Equal(wantStart) || !ev.End.Equal(wantStart.Add(time.Hour)) {
		t.Errorf("event spans [%v, %v), want [%v, %v)", ev.Start, ev.End, wantStart, wantStart.Add(time.Hour))
	}
}

func TestCalendarController_DropEvent_RejectsFinishedSessions(t *testing.T) {
	for _, status := range []string{models.SessionCompleted, models.SessionCancelled} {
		t.Run(status, func(t *testing.T) {
			session := testSession("Jazz Technique", "2024-06-12", "11:00", 60, uuid.New(), status)
			store := &scheduleStoreStub{sessions: []models.ClassSession{session}}

			c := NewCalendarController(store, fixedNow)
			if err := c.Refresh(context.Background()); err != nil {
				t.Fatalf("Refresh: %v", err)
			}

			err := c.DropEvent(context.Background(), session.ID, "2024-06-13", "11:00")
			if !errors.Is(err, ErrSessionNotMovable) {
				t.Fatalf("expected ErrSessionNotMovable, got %v", err)
			}
			if store.rescheduleCalls != 0 {
				t.Errorf("store was called %d times for an immovable session", store.rescheduleCalls)
			}
		})
	}
}

func TestCalendarController_DropEvent_MovesOptimistically(t *testing.T) {
	session := testSession("Ballet Barre", "2024-06-12", "11:00", 60, uuid.New(), models.SessionScheduled)
	store := &scheduleStoreStub{sessions: []models.ClassSession{session}}

	c := NewCalendarController(store, fixedNow)
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if err := c.DropEvent(context.Background(), session.ID, "2024-06-13", "15:30"); err != nil {
		t.Fatalf("DropEvent: %v", err)
	}
	if store.rescheduleCalls != 1 || store.lastRescheduleDate != "2024-06-13" || store.lastRescheduleTime != "15:30" {
		t.Fatalf("store saw calls=%d date=%q time=%q", store.rescheduleCalls, store.lastRescheduleDate, store.lastRescheduleTime)
	}

	visible := c.VisibleEvents()
	if len(visible) != 1 {
		t.Fatalf("expected 1 visible event, got %d", len(visible))
	}
	want := time.Date(2024, 6, 13, 15, 30, 0, 0, time.UTC)
	if !visible[0].Start.Equal(want) {
		t.Errorf("event start = %v, want %v", visible[0].Start, want)
	}
}

func TestCalendarController_DropEvent_RevertsOnStoreFailure(t *testing.T) {
	session := testSession("Ballet Barre", "2024-06-12", "11:00", 60, uuid.New(), models.SessionScheduled)
	store := &scheduleStoreStub{
		sessions:      []models.ClassSession{session},
		rescheduleErr: errors.New("instructor is double-booked in that slot"),
	}

	c := NewCalendarController(store, fixedNow)
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	err := c.DropEvent(context.Background(), session.ID, "2024-06-13", "15:30")
	if err == nil {
		t.Fatal("expected the store rejection to surface")
	}

	visible := c.VisibleEvents()
	if len(visible) != 1 {
		t.Fatalf("expected 1 visible event, got %d", len(visible))
	}
	want := time.Date(2024, 6, 12, 11, 0, 0, 0, time.UTC)
	if !visible[0].Start.Equal(want) {
		t.Errorf("event was not reverted: start = %v, want %v", visible[0].Start, want)
	}
	if visible[0].Session.StartDate != "2024-06-12" || visible[0].Session.StartTime != "11:00" {
		t.Errorf("session fields not reverted: %q %q", visible[0].Session.StartDate, visible[0].Session.StartTime)
	}
}

func TestCalendarController_DropEvent_UnknownSession(t *testing.T) {
	store := &scheduleStoreStub{}
	c := NewCalendarController(store, fixedNow)
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if err := c.DropEvent(context.Background(), uuid.New(), "2024-06-13", "15:30"); !errors.Is(err, ErrSessionNotDisplayed) {
		t.Fatalf("expected ErrSessionNotDisplayed, got %v", err)
	}
	if store.rescheduleCalls != 0 {
		t.Errorf("store called for unknown session")
	}
}

func TestCalendarController_IgnoresResultAfterClose(t *testing.T) {
	session := testSession("Ballet Barre", "2024-06-12", "11:00", 60, uuid.New(), models.SessionScheduled)
	store := &scheduleStoreStub{
		sessions:      []models.ClassSession{session},
		rescheduleErr: errors.New("transient failure"),
	}

	c := NewCalendarController(store, fixedNow)
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	// The view is torn down while the mutation is in flight; the late failure
	// must not be applied (no revert) to a closed view.
	store.onReschedule = c.Close

	if err := c.DropEvent(context.Background(), session.ID, "2024-06-13", "15:30"); err == nil {
		t.Fatal("expected the store error to be returned")
	}

	if err := c.Refresh(context.Background()); !errors.Is(err, ErrCalendarClosed) {
		t.Fatalf("expected ErrCalendarClosed after Close, got %v", err)
	}
	if err := c.DropEvent(context.Background(), session.ID, "2024-06-14", "10:00"); !errors.Is(err, ErrCalendarClosed) {
		t.Fatalf("expected ErrCalendarClosed for drops after Close, got %v", err)
	}
}
