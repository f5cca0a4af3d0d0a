package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/ovationhq/arts_academy/models"
)

type ResolutionState string

const (
	ResolutionPending     ResolutionState = "pending"
	ResolutionCancelled   ResolutionState = "cancelled"
	ResolutionRescheduled ResolutionState = "rescheduled"
)

// submissionTag guards one impacted session against concurrent remediation
// attempts. Items are independent, so the tag lives per item rather than on
// the workflow.
type submissionTag int

const (
	submissionIdle submissionTag = iota
	submissionInFlight
	submissionDone
)

var (
	ErrResolutionInFlight     = errors.New("a remediation for this session is already in progress")
	ErrAlreadyResolved        = errors.New("this session has already been resolved")
	ErrUnknownImpactedSession = errors.New("session is not part of this vacation resolution")
	ErrWorkflowClosed         = errors.New("this vacation resolution has been closed")
)

// ImpactedSession ties one class session to the vacation period it collides
// with, tracking its remediation toward a terminal state.
type ImpactedSession struct {
	Session   models.ClassSession   `json:"session"`
	Vacation  models.VacationPeriod `json:"vacation"`
	State     ResolutionState       `json:"state"`
	LastError string                `json:"last_error,omitempty"`

	tag submissionTag
}

// ResolveImpactedSessions computes the sessions hit by an instructor vacation:
// any non-cancelled session taught by the vacationing instructor (primary or
// secondary) whose date falls inside the inclusive vacation range. Overlap is
// checked at whole-day granularity on purpose, because vacations are declared
// as whole-day ranges; do not sharpen this to time-of-day. The result is a
// snapshot ordered by start date then start time.
func ResolveImpactedSessions(sessions []models.ClassSession, vacation models.VacationPeriod) []ImpactedSession {
	var impacted []ImpactedSession
	for _, session := range sessions {
		if session.Status == models.SessionCancelled {
			continue
		}
		if !session.AssignedTo(vacation.InstructorID) {
			continue
		}
		// ISO date strings order the same way the dates do.
		if session.StartDate < vacation.StartDate || session.StartDate > vacation.EndDate {
			continue
		}
		impacted = append(impacted, ImpactedSession{
			Session:  session,
			Vacation: vacation,
			State:    ResolutionPending,
		})
	}

	sort.SliceStable(impacted, func(i, j int) bool {
		a, b := impacted[i].Session, impacted[j].Session
		if a.StartDate != b.StartDate {
			return a.StartDate < b.StartDate
		}
		return a.StartTime < b.StartTime
	})
	return impacted
}

// ImpactWorkflow drives one vacation's impacted sessions to a terminal state.
// Each item is remediated independently: a failure leaves that item pending
// and retryable without blocking the rest of the batch, and an item's local
// state only advances once the store confirms the mutation.
type ImpactWorkflow struct {
	ID       uuid.UUID
	Vacation models.VacationPeriod

	mu     sync.Mutex
	store  ScheduleStore
	items  []*ImpactedSession
	index  map[uuid.UUID]*ImpactedSession
	closed bool
}

func NewImpactWorkflow(store ScheduleStore, sessions []models.ClassSession, vacation models.VacationPeriod) *ImpactWorkflow {
	resolved := ResolveImpactedSessions(sessions, vacation)
	w := &ImpactWorkflow{
		ID:       uuid.New(),
		Vacation: vacation,
		store:    store,
		index:    make(map[uuid.UUID]*ImpactedSession, len(resolved)),
	}
	for i := range resolved {
		item := resolved[i]
		w.items = append(w.items, &item)
		w.index[item.Session.ID] = &item
	}
	return w
}

// Items returns a snapshot of the batch in presentation order.
func (w *ImpactWorkflow) Items() []ImpactedSession {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]ImpactedSession, 0, len(w.items))
	for _, item := range w.items {
		out = append(out, *item)
	}
	return out
}

// Pending counts the items still awaiting remediation.
func (w *ImpactWorkflow) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, item := range w.items {
		if item.State == ResolutionPending {
			n++
		}
	}
	return n
}

// Resolved reports whether every item reached a terminal state.
func (w *ImpactWorkflow) Resolved() bool {
	return w.Pending() == 0
}

// CancelItem cancels one impacted session through the store. The item moves
// to Cancelled only after the store confirms.
func (w *ImpactWorkflow) CancelItem(ctx context.Context, sessionID uuid.UUID, reason string) error {
	item, err := w.begin(sessionID)
	if err != nil {
		return err
	}
	storeErr := w.store.CancelSession(ctx, sessionID, reason)
	return w.finish(item, ResolutionCancelled, storeErr)
}

// RescheduleItem moves one impacted session to a new slot through the store.
// The item moves to Rescheduled only after the store confirms.
func (w *ImpactWorkflow) RescheduleItem(ctx context.Context, sessionID uuid.UUID, newStartDate, newStartTime string) error {
	item, err := w.begin(sessionID)
	if err != nil {
		return err
	}
	storeErr := w.store.RescheduleSession(ctx, sessionID, newStartDate, newStartTime)
	return w.finish(item, ResolutionRescheduled, storeErr)
}

func (w *ImpactWorkflow) begin(sessionID uuid.UUID) (*ImpactedSession, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, ErrWorkflowClosed
	}
	item, ok := w.index[sessionID]
	if !ok {
		return nil, ErrUnknownImpactedSession
	}
	if item.State != ResolutionPending {
		return nil, ErrAlreadyResolved
	}
	if item.tag == submissionInFlight {
		return nil, ErrResolutionInFlight
	}
	item.tag = submissionInFlight
	return item, nil
}

func (w *ImpactWorkflow) finish(item *ImpactedSession, terminal ResolutionState, storeErr error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		// Late result for a dismissed workflow; leave no trace.
		item.tag = submissionIdle
		return storeErr
	}
	if storeErr != nil {
		item.tag = submissionIdle
		item.LastError = storeErr.Error()
		return storeErr
	}
	item.tag = submissionDone
	item.State = terminal
	item.LastError = ""
	return nil
}

// Close dismisses the workflow. Closing with pending items is an allowed user
// override; the pending sessions simply stay on the calendar unremediated.
func (w *ImpactWorkflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
}

// WorkflowRegistry keeps the open resolution batches so the HTTP layer can
// drive one batch across several requests.
type WorkflowRegistry struct {
	mu    sync.Mutex
	flows map[uuid.UUID]*ImpactWorkflow
}

func NewWorkflowRegistry() *WorkflowRegistry {
	return &WorkflowRegistry{flows: make(map[uuid.UUID]*ImpactWorkflow)}
}

func (r *WorkflowRegistry) Open(store ScheduleStore, sessions []models.ClassSession, vacation models.VacationPeriod) *ImpactWorkflow {
	w := NewImpactWorkflow(store, sessions, vacation)
	r.mu.Lock()
	r.flows[w.ID] = w
	r.mu.Unlock()
	return w
}

func (r *WorkflowRegistry) Get(id uuid.UUID) (*ImpactWorkflow, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.flows[id]
	return w, ok
}

// Discard closes and forgets a workflow.
func (r *WorkflowRegistry) Discard(id uuid.UUID) {
	r.mu.Lock()
	w, ok := r.flows[id]
	delete(r.flows, id)
	r.mu.Unlock()
	if ok {
		w.Close()
	}
}
