package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/ovationhq/arts_academy/models"
)

// SessionFilter narrows ListSessions queries. Date bounds are inclusive
// "2006-01-02" strings matched against the session's start date.
type SessionFilter struct {
	InstructorID *uuid.UUID
	Category     string
	Status       string
	FromDate     string
	ToDate       string
}

// ScheduleStore is the system of record for class sessions and instructor
// vacations. The calendar layer never mutates sessions directly; every write
// goes through this contract so slot validation stays with the store.
type ScheduleStore interface {
	ListSessions(ctx context.Context, filter SessionFilter) ([]models.ClassSession, error)
	RescheduleSession(ctx context.Context, sessionID uuid.UUID, newStartDate, newStartTime string) error
	CancelSession(ctx context.Context, sessionID uuid.UUID, reason string) error
	ListVacationPeriods(ctx context.Context, instructorID uuid.UUID) ([]models.VacationPeriod, error)
}
