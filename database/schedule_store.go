package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ovationhq/arts_academy/models"
	"github.com/ovationhq/arts_academy/services"
	"gorm.io/gorm"
)

var (
	ErrSessionNotFound = errors.New("class session not found")
	ErrSessionFinal    = errors.New("only scheduled sessions can be changed")
	ErrSlotInPast      = errors.New("the new slot is in the past")
	ErrInstructorBusy  = errors.New("the instructor already has a class in that slot")
)

// GormScheduleStore is the system of record behind the calendar. Slot
// validation (past slots, instructor double-booking) lives here so the
// calendar layer stays a pure projection and intent layer.
type GormScheduleStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewScheduleStore(db *gorm.DB, now func() time.Time) *GormScheduleStore {
	if now == nil {
		now = time.Now
	}
	return &GormScheduleStore{db: db, now: now}
}

func (s *GormScheduleStore) ListSessions(ctx context.Context, filter services.SessionFilter) ([]models.ClassSession, error) {
	q := s.db.WithContext(ctx).Model(&models.ClassSession{})

	if filter.InstructorID != nil {
		q = q.Where("instructor_id = ? OR secondary_instructor_id = ?", *filter.InstructorID, *filter.InstructorID)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.FromDate != "" {
		q = q.Where("start_date >= ?", filter.FromDate)
	}
	if filter.ToDate != "" {
		q = q.Where("start_date <= ?", filter.ToDate)
	}

	var sessions []models.ClassSession
	if err := q.Order("start_date, start_time").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *GormScheduleStore) RescheduleSession(ctx context.Context, sessionID uuid.UUID, newStartDate, newStartTime string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session models.ClassSession
		if err := tx.First(&session, "id = ?", sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return err
		}
		if session.Status != models.SessionScheduled {
			return ErrSessionFinal
		}

		loc, err := time.LoadLocation(session.Timezone)
		if err != nil {
			return fmt.Errorf("session has invalid timezone %q", session.Timezone)
		}
		newStart, err := time.ParseInLocation("2006-01-02 15:04", newStartDate+" "+newStartTime, loc)
		if err != nil {
			return fmt.Errorf("invalid slot %q %q", newStartDate, newStartTime)
		}
		if newStart.Before(s.now()) {
			return ErrSlotInPast
		}

		busy, err := s.instructorBusy(tx, session, newStart)
		if err != nil {
			return err
		}
		if busy {
			return ErrInstructorBusy
		}

		session.StartDate = newStartDate
		session.StartTime = newStartTime
		session.VacationImpacted = false
		session.CancelReason = nil
		return tx.Save(&session).Error
	})
}

// instructorBusy checks the target slot against every other non-cancelled
// session taught by the same instructors on that date.
func (s *GormScheduleStore) instructorBusy(tx *gorm.DB, session models.ClassSession, newStart time.Time) (bool, error) {
	instructorIDs := []uuid.UUID{session.InstructorID}
	if session.SecondaryInstructorID != nil {
		instructorIDs = append(instructorIDs, *session.SecondaryInstructorID)
	}

	var others []models.ClassSession
	err := tx.
		Where("id <> ? AND status <> ? AND start_date = ?", session.ID, models.SessionCancelled, newStart.Format("2006-01-02")).
		Where("instructor_id IN ? OR secondary_instructor_id IN ?", instructorIDs, instructorIDs).
		Find(&others).Error
	if err != nil {
		return false, err
	}

	newEnd := newStart.Add(time.Duration(session.DurationMinutes) * time.Minute)
	for _, other := range others {
		otherStart, err := services.SessionStart(other)
		if err != nil {
			continue // malformed rows cannot be compared; the calendar skips them too
		}
		otherEnd := otherStart.Add(time.Duration(other.DurationMinutes) * time.Minute)
		if newStart.Before(otherEnd) && otherStart.Before(newEnd) {
			return true, nil
		}
	}
	return false, nil
}

func (s *GormScheduleStore) CancelSession(ctx context.Context, sessionID uuid.UUID, reason string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session models.ClassSession
		if err := tx.First(&session, "id = ?", sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return err
		}
		if session.Status != models.SessionScheduled {
			return ErrSessionFinal
		}

		session.Status = models.SessionCancelled
		session.CancelReason = &reason
		return tx.Save(&session).Error
	})
}

func (s *GormScheduleStore) ListVacationPeriods(ctx context.Context, instructorID uuid.UUID) ([]models.VacationPeriod, error) {
	var periods []models.VacationPeriod
	err := s.db.WithContext(ctx).
		Where("instructor_id = ?", instructorID).
		Order("start_date").
		Find(&periods).Error
	if err != nil {
		return nil, err
	}
	return periods, nil
}

// FlagVacationImpacts marks the sessions hit by a newly declared vacation so
// they show up flagged until each one is cancelled or rescheduled.
func (s *GormScheduleStore) FlagVacationImpacts(ctx context.Context, vacation models.VacationPeriod) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.ClassSession{}).
		Where("start_date BETWEEN ? AND ?", vacation.StartDate, vacation.EndDate).
		Where("instructor_id = ? OR secondary_instructor_id = ?", vacation.InstructorID, vacation.InstructorID).
		Where("status <> ?", models.SessionCancelled).
		Update("vacation_impacted", true)
	return res.RowsAffected, res.Error
}
