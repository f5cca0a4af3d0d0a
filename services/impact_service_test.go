package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/ovationhq/arts_academy/models"
)

func testVacation(instructorID uuid.UUID, start, end string) models.VacationPeriod {
	return models.VacationPeriod{
		ID:           uuid.New(),
		InstructorID: instructorID,
		StartDate:    start,
		EndDate:      end,
	}
}

func TestResolveImpactedSessions_EndToEnd(t *testing.T) {
	i1 := uuid.New()
	i2 := uuid.New()
	vacation := testVacation(i1, "2024-06-10", "2024-06-14")

	s1 := testSession("S1", "2024-06-11", "09:00", 60, i1, models.SessionScheduled)
	s2 := testSession("S2", "2024-06-12", "09:00", 60, i2, models.SessionScheduled)
	s3 := testSession("S3", "2024-06-13", "09:00", 60, i1, models.SessionCancelled)

	impacted := ResolveImpactedSessions([]models.ClassSession{s1, s2, s3}, vacation)

	if len(impacted) != 1 {
		t.Fatalf("expected exactly 1 impacted session, got %d", len(impacted))
	}
	if impacted[0].Session.ID != s1.ID {
		t.Errorf("impacted session = %q, want S1", impacted[0].Session.Title)
	}
	if impacted[0].State != ResolutionPending {
		t.Errorf("state = %q, want pending", impacted[0].State)
	}
	if impacted[0].Vacation.ID != vacation.ID {
		t.Errorf("impacted session not tied back to its vacation period")
	}
}

func TestResolveImpactedSessions_Selection(t *testing.T) {
	instructor := uuid.New()
	other := uuid.New()
	vacation := testVacation(instructor, "2024-06-10", "2024-06-14")

	secondary := testSession("Secondary", "2024-06-12", "10:00", 60, other, models.SessionScheduled)
	secondary.SecondaryInstructorID = &instructor

	tests := []struct {
		name    string
		session models.ClassSession
		want    bool
	}{
		{"inside range", testSession("A", "2024-06-12", "09:00", 60, instructor, models.SessionScheduled), true},
		{"first day of range", testSession("B", "2024-06-10", "09:00", 60, instructor, models.SessionScheduled), true},
		{"last day of range", testSession("C", "2024-06-14", "23:00", 60, instructor, models.SessionScheduled), true},
		{"day before range", testSession("D", "2024-06-09", "09:00", 60, instructor, models.SessionScheduled), false},
		{"day after range", testSession("E", "2024-06-15", "09:00", 60, instructor, models.SessionScheduled), false},
		{"other instructor", testSession("F", "2024-06-12", "09:00", 60, other, models.SessionScheduled), false},
		{"secondary instructor assignment", secondary, true},
		{"already cancelled", testSession("G", "2024-06-12", "09:00", 60, instructor, models.SessionCancelled), false},
		{"ongoing still counts", testSession("H", "2024-06-12", "09:00", 60, instructor, models.SessionOngoing), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			impacted := ResolveImpactedSessions([]models.ClassSession{tc.session}, vacation)
			if got := len(impacted) == 1; got != tc.want {
				t.Errorf("included = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestResolveImpactedSessions_OrderedAndIdempotent(t *testing.T) {
	instructor := uuid.New()
	vacation := testVacation(instructor, "2024-06-10", "2024-06-14")

	late := testSession("Late", "2024-06-12", "16:00", 60, instructor, models.SessionScheduled)
	early := testSession("Early", "2024-06-12", "08:00", 60, instructor, models.SessionScheduled)
	prior := testSession("Prior", "2024-06-10", "12:00", 60, instructor, models.SessionScheduled)
	sessions := []models.ClassSession{late, early, prior}

	first := ResolveImpactedSessions(sessions, vacation)
	second := ResolveImpactedSessions(sessions, vacation)

	wantOrder := []string{"Prior", "Early", "Late"}
	if len(first) != len(wantOrder) {
		t.Fatalf("expected %d impacted sessions, got %d", len(wantOrder), len(first))
	}
	for i, title := range wantOrder {
		if first[i].Session.Title != title {
			t.Errorf("position %d = %q, want %q", i, first[i].Session.Title, title)
		}
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("resolving the same inputs twice produced different output")
	}
}

func TestImpactWorkflow_CancelAdvancesOnlyAfterStoreSuccess(t *testing.T) {
	instructor := uuid.New()
	vacation := testVacation(instructor, "2024-06-10", "2024-06-14")
	session := testSession("Ballet Barre", "2024-06-11", "09:00", 60, instructor, models.SessionScheduled)
	store := &scheduleStoreStub{}

	w := NewImpactWorkflow(store, []models.ClassSession{session}, vacation)
	if w.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", w.Pending())
	}

	if err := w.CancelItem(context.Background(), session.ID, "instructor on leave"); err != nil {
		t.Fatalf("CancelItem: %v", err)
	}
	if store.cancelCalls != 1 {
		t.Errorf("store cancel calls = %d, want 1", store.cancelCalls)
	}

	items := w.Items()
	if items[0].State != ResolutionCancelled {
		t.Errorf("state = %q, want cancelled", items[0].State)
	}
	if !w.Resolved() {
		t.Error("workflow with no pending items should report resolved")
	}

	// A fresh resolve over the mutated store data excludes the cancelled session.
	session.Status = models.SessionCancelled
	if got := ResolveImpactedSessions([]models.ClassSession{session}, vacation); len(got) != 0 {
		t.Errorf("cancelled session reappeared in a fresh resolve: %d items", len(got))
	}
}

func TestImpactWorkflow_FailureKeepsItemPendingAndRetryable(t *testing.T) {
	instructor := uuid.New()
	vacation := testVacation(instructor, "2024-06-10", "2024-06-14")
	a := testSession("A", "2024-06-11", "09:00", 60, instructor, models.SessionScheduled)
	b := testSession("B", "2024-06-12", "09:00", 60, instructor, models.SessionScheduled)
	store := &scheduleStoreStub{rescheduleErr: errors.New("slot conflict")}

	w := NewImpactWorkflow(store, []models.ClassSession{a, b}, vacation)

	if err := w.RescheduleItem(context.Background(), a.ID, "2024-06-17", "09:00"); err == nil {
		t.Fatal("expected the store rejection to surface")
	}

	items := w.Items()
	if items[0].State != ResolutionPending {
		t.Errorf("failed item state = %q, want pending", items[0].State)
	}
	if items[0].LastError == "" {
		t.Error("failed item should carry its error")
	}

	// One failure never blocks the rest of the batch.
	if err := w.CancelItem(context.Background(), b.ID, "no cover available"); err != nil {
		t.Fatalf("second item blocked by first failure: %v", err)
	}

	// The failed item stays retryable.
	store.rescheduleErr = nil
	if err := w.RescheduleItem(context.Background(), a.ID, "2024-06-17", "09:00"); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if w.Pending() != 0 {
		t.Errorf("pending = %d after full remediation", w.Pending())
	}
}

func TestImpactWorkflow_RejectsDoubleSubmission(t *testing.T) {
	instructor := uuid.New()
	vacation := testVacation(instructor, "2024-06-10", "2024-06-14")
	session := testSession("A", "2024-06-11", "09:00", 60, instructor, models.SessionScheduled)

	started := make(chan struct{})
	release := make(chan struct{})
	store := &scheduleStoreStub{}
	store.onCancel = func() {
		close(started)
		<-release
	}

	w := NewImpactWorkflow(store, []models.ClassSession{session}, vacation)

	done := make(chan error, 1)
	go func() {
		done <- w.CancelItem(context.Background(), session.ID, "first attempt")
	}()

	<-started
	if err := w.RescheduleItem(context.Background(), session.ID, "2024-06-17", "09:00"); !errors.Is(err, ErrResolutionInFlight) {
		t.Fatalf("expected ErrResolutionInFlight while first attempt is in flight, got %v", err)
	}
	close(release)

	if err := <-done; err != nil {
		t.Fatalf("first attempt failed: %v", err)
	}
	if err := w.CancelItem(context.Background(), session.ID, "again"); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved after terminal state, got %v", err)
	}
	if store.rescheduleCalls != 0 {
		t.Errorf("reschedule reached the store despite the guard")
	}
}

func TestImpactWorkflow_UnknownSession(t *testing.T) {
	instructor := uuid.New()
	vacation := testVacation(instructor, "2024-06-10", "2024-06-14")
	w := NewImpactWorkflow(&scheduleStoreStub{}, nil, vacation)

	if err := w.CancelItem(context.Background(), uuid.New(), "oops"); !errors.Is(err, ErrUnknownImpactedSession) {
		t.Fatalf("expected ErrUnknownImpactedSession, got %v", err)
	}
}

func TestImpactWorkflow_CloseWithPendingIsAllowed(t *testing.T) {
	instructor := uuid.New()
	vacation := testVacation(instructor, "2024-06-10", "2024-06-14")
	session := testSession("A", "2024-06-11", "09:00", 60, instructor, models.SessionScheduled)
	store := &scheduleStoreStub{}

	w := NewImpactWorkflow(store, []models.ClassSession{session}, vacation)
	w.Close()

	if err := w.CancelItem(context.Background(), session.ID, "too late"); !errors.Is(err, ErrWorkflowClosed) {
		t.Fatalf("expected ErrWorkflowClosed, got %v", err)
	}
	if store.cancelCalls != 0 {
		t.Errorf("store mutated through a closed workflow")
	}
	if w.Pending() != 1 {
		t.Errorf("pending after close = %d; dismissal must not fabricate resolutions", w.Pending())
	}
}

func TestWorkflowRegistry(t *testing.T) {
	instructor := uuid.New()
	vacation := testVacation(instructor, "2024-06-10", "2024-06-14")
	session := testSession("A", "2024-06-11", "09:00", 60, instructor, models.SessionScheduled)
	reg := NewWorkflowRegistry()
	store := &scheduleStoreStub{}

	w := reg.Open(store, []models.ClassSession{session}, vacation)
	if got, ok := reg.Get(w.ID); !ok || got != w {
		t.Fatal("open workflow not retrievable by id")
	}

	reg.Discard(w.ID)
	if _, ok := reg.Get(w.ID); ok {
		t.Error("discarded workflow still registered")
	}
	if err := w.CancelItem(context.Background(), session.ID, "x"); !errors.Is(err, ErrWorkflowClosed) {
		t.Errorf("discarded workflow accepted a mutation: %v", err)
	}
}
