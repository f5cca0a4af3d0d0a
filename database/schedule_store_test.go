package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ovationhq/arts_academy/models"
	"github.com/ovationhq/arts_academy/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// The production schema relies on Postgres' gen_random_uuid(), so the sqlite
// test schema is declared by hand with ids supplied by the tests.
const testSchema = `
CREATE TABLE class_sessions (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	course_id TEXT,
	start_date TEXT NOT NULL,
	start_time TEXT NOT NULL,
	duration_minutes INTEGER NOT NULL,
	timezone TEXT NOT NULL DEFAULT 'UTC',
	category TEXT NOT NULL DEFAULT 'general',
	instructor_id TEXT NOT NULL,
	secondary_instructor_id TEXT,
	status TEXT NOT NULL DEFAULT 'scheduled',
	cancel_reason TEXT,
	vacation_impacted NUMERIC DEFAULT false,
	room TEXT,
	meeting_link TEXT,
	created_at DATETIME,
	updated_at DATETIME
);
CREATE TABLE vacation_periods (
	id TEXT PRIMARY KEY,
	instructor_id TEXT NOT NULL,
	start_date TEXT NOT NULL,
	end_date TEXT NOT NULL,
	reason TEXT,
	created_at DATETIME,
	updated_at DATETIME
);
`

func storeNow() time.Time {
	return time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
}

func newTestStore(t *testing.T) (*GormScheduleStore, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.Exec(testSchema).Error; err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return NewScheduleStore(db, storeNow), db
}

func seedSession(t *testing.T, db *gorm.DB, title, date, startTime string, minutes int, instructorID uuid.UUID, status string) models.ClassSession {
	t.Helper()
	session := models.ClassSession{
		ID:              uuid.New(),
		Title:           title,
		StartDate:       date,
		StartTime:       startTime,
		DurationMinutes: minutes,
		Timezone:        "UTC",
		Category:        "ballet",
		InstructorID:    instructorID,
		Status:          status,
	}
	if err := db.Create(&session).Error; err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
	return session
}

func TestScheduleStore_RescheduleSession(t *testing.T) {
	store, db := newTestStore(t)
	instructor := uuid.New()
	session := seedSession(t, db, "Ballet Barre", "2024-06-12", "11:00", 60, instructor, models.SessionScheduled)
	db.Model(&session).Updates(map[string]interface{}{"vacation_impacted": true, "cancel_reason": nil})

	err := store.RescheduleSession(context.Background(), session.ID, "2024-06-17", "09:30")
	if err != nil {
		t.Fatalf("RescheduleSession: %v", err)
	}

	var got models.ClassSession
	if err := db.First(&got, "id = ?", session.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.StartDate != "2024-06-17" || got.StartTime != "09:30" {
		t.Errorf("slot = %q %q, want 2024-06-17 09:30", got.StartDate, got.StartTime)
	}
	if got.Status != models.SessionScheduled {
		t.Errorf("status = %q, want scheduled", got.Status)
	}
	if got.VacationImpacted {
		t.Error("reschedule must clear the vacation-impact flag")
	}
}

func TestScheduleStore_RescheduleRejectsPastSlot(t *testing.T) {
	store, db := newTestStore(t)
	session := seedSession(t, db, "Ballet Barre", "2024-06-12", "11:00", 60, uuid.New(), models.SessionScheduled)

	err := store.RescheduleSession(context.Background(), session.ID, "2024-05-20", "11:00")
	if !errors.Is(err, ErrSlotInPast) {
		t.Fatalf("expected ErrSlotInPast, got %v", err)
	}

	var got models.ClassSession
	db.First(&got, "id = ?", session.ID)
	if got.StartDate != "2024-06-12" {
		t.Errorf("session moved despite rejection: %q", got.StartDate)
	}
}

func TestScheduleStore_RescheduleRejectsDoubleBooking(t *testing.T) {
	store, db := newTestStore(t)
	instructor := uuid.New()
	session := seedSession(t, db, "Ballet Barre", "2024-06-12", "11:00", 60, instructor, models.SessionScheduled)
	seedSession(t, db, "Jazz Technique", "2024-06-13", "10:00", 90, instructor, models.SessionScheduled)

	// 10:30 lands inside Jazz Technique's 10:00-11:30.
	err := store.RescheduleSession(context.Background(), session.ID, "2024-06-13", "10:30")
	if !errors.Is(err, ErrInstructorBusy) {
		t.Fatalf("expected ErrInstructorBusy, got %v", err)
	}

	// 11:30 starts exactly when the other class ends; half-open intervals do not collide.
	if err := store.RescheduleSession(context.Background(), session.ID, "2024-06-13", "11:30"); err != nil {
		t.Fatalf("back-to-back slots should be allowed: %v", err)
	}
}

func TestScheduleStore_RescheduleIgnoresCancelledConflicts(t *testing.T) {
	store, db := newTestStore(t)
	instructor := uuid.New()
	session := seedSession(t, db, "Ballet Barre", "2024-06-12", "11:00", 60, instructor, models.SessionScheduled)
	seedSession(t, db, "Cancelled Class", "2024-06-13", "10:00", 90, instructor, models.SessionCancelled)

	if err := store.RescheduleSession(context.Background(), session.ID, "2024-06-13", "10:30"); err != nil {
		t.Fatalf("cancelled sessions must not block the slot: %v", err)
	}
}

func TestScheduleStore_MutationsRequireScheduledStatus(t *testing.T) {
	store, db := newTestStore(t)
	instructor := uuid.New()

	for _, status := range []string{models.SessionCompleted, models.SessionCancelled, models.SessionOngoing} {
		session := seedSession(t, db, "Final "+status, "2024-06-12", "11:00", 60, instructor, status)
		if err := store.RescheduleSession(context.Background(), session.ID, "2024-06-17", "09:00"); !errors.Is(err, ErrSessionFinal) {
			t.Errorf("reschedule of %s session: got %v, want ErrSessionFinal", status, err)
		}
		if err := store.CancelSession(context.Background(), session.ID, "x"); !errors.Is(err, ErrSessionFinal) {
			t.Errorf("cancel of %s session: got %v, want ErrSessionFinal", status, err)
		}
	}

	if err := store.CancelSession(context.Background(), uuid.New(), "x"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestScheduleStore_CancelSession(t *testing.T) {
	store, db := newTestStore(t)
	session := seedSession(t, db, "Ballet Barre", "2024-06-12", "11:00", 60, uuid.New(), models.SessionScheduled)

	if err := store.CancelSession(context.Background(), session.ID, "instructor on vacation"); err != nil {
		t.Fatalf("CancelSession: %v", err)
	}

	var got models.ClassSession
	db.First(&got, "id = ?", session.ID)
	if got.Status != models.SessionCancelled {
		t.Errorf("status = %q, want cancelled", got.Status)
	}
	if got.CancelReason == nil || *got.CancelReason != "instructor on vacation" {
		t.Errorf("cancel reason = %v", got.CancelReason)
	}
}

func TestScheduleStore_ListSessionsFilters(t *testing.T) {
	store, db := newTestStore(t)
	i1 := uuid.New()
	i2 := uuid.New()

	seedSession(t, db, "Week A", "2024-06-11", "09:00", 60, i1, models.SessionScheduled)
	assisted := seedSession(t, db, "Assisted", "2024-06-12", "09:00", 60, i2, models.SessionScheduled)
	db.Model(&assisted).Update("secondary_instructor_id", i1)
	seedSession(t, db, "Other Week", "2024-07-01", "09:00", 60, i1, models.SessionScheduled)
	seedSession(t, db, "Other Instructor", "2024-06-12", "10:00", 60, i2, models.SessionScheduled)

	sessions, err := store.ListSessions(context.Background(), services.SessionFilter{
		InstructorID: &i1,
		FromDate:     "2024-06-10",
		ToDate:       "2024-06-16",
	})
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}

	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].Title != "Week A" || sessions[1].Title != "Assisted" {
		t.Errorf("wrong order or selection: %q, %q", sessions[0].Title, sessions[1].Title)
	}
}

func TestScheduleStore_FlagVacationImpacts(t *testing.T) {
	store, db := newTestStore(t)
	instructor := uuid.New()

	inside := seedSession(t, db, "Inside", "2024-06-11", "09:00", 60, instructor, models.SessionScheduled)
	outside := seedSession(t, db, "Outside", "2024-06-20", "09:00", 60, instructor, models.SessionScheduled)
	cancelled := seedSession(t, db, "Cancelled", "2024-06-12", "09:00", 60, instructor, models.SessionCancelled)

	vacation := models.VacationPeriod{
		ID:           uuid.New(),
		InstructorID: instructor,
		StartDate:    "2024-06-10",
		EndDate:      "2024-06-14",
	}

	flagged, err := store.FlagVacationImpacts(context.Background(), vacation)
	if err != nil {
		t.Fatalf("FlagVacationImpacts: %v", err)
	}
	if flagged != 1 {
		t.Errorf("flagged = %d, want 1", flagged)
	}

	for _, tc := range []struct {
		id   uuid.UUID
		want bool
	}{{inside.ID, true}, {outside.ID, false}, {cancelled.ID, false}} {
		var got models.ClassSession
		db.First(&got, "id = ?", tc.id)
		if got.VacationImpacted != tc.want {
			t.Errorf("session %s impacted = %v, want %v", got.Title, got.VacationImpacted, tc.want)
		}
	}
}

func TestScheduleStore_ListVacationPeriods(t *testing.T) {
	store, db := newTestStore(t)
	instructor := uuid.New()

	for _, dates := range [][2]string{{"2024-08-01", "2024-08-10"}, {"2024-06-10", "2024-06-14"}} {
		period := models.VacationPeriod{
			ID:           uuid.New(),
			InstructorID: instructor,
			StartDate:    dates[0],
			EndDate:      dates[1],
		}
		if err := db.Create(&period).Error; err != nil {
			t.Fatalf("seed vacation: %v", err)
		}
	}
	other := models.VacationPeriod{ID: uuid.New(), InstructorID: uuid.New(), StartDate: "2024-06-01", EndDate: "2024-06-02"}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("seed vacation: %v", err)
	}

	periods, err := store.ListVacationPeriods(context.Background(), instructor)
	if err != nil {
		t.Fatalf("ListVacationPeriods: %v", err)
	}
	if len(periods) != 2 {
		t.Fatalf("expected 2 periods, got %d", len(periods))
	}
	if periods[0].StartDate != "2024-06-10" {
		t.Errorf("periods not ordered by start date: first = %s", periods[0].StartDate)
	}
}
