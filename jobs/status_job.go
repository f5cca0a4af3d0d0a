package jobs

import (
	"log"
	"time"

	"github.com/ovationhq/arts_academy/database"
	"github.com/ovationhq/arts_academy/models"
	"github.com/ovationhq/arts_academy/services"
)

// SweepSessionStatuses moves sessions along scheduled -> ongoing -> completed
// as the wall clock passes their start and end. Cancelled sessions are never
// touched. Records with unparseable date or timezone data are skipped and
// logged; they also show up in the calendar's skipped list.
func SweepSessionStatuses() {
	log.Println("Running job: SweepSessionStatuses...")

	now := time.Now()
	today := now.UTC().Format(services.DateLayout)

	var sessions []models.ClassSession
	err := database.DB.
		Where("status IN ? AND start_date <= ?", []string{models.SessionScheduled, models.SessionOngoing}, today).
		Find(&sessions).Error
	if err != nil {
		log.Printf("Error fetching sessions for status sweep: %v", err)
		return
	}

	var started, completed int
	for _, session := range sessions {
		start, err := services.SessionStart(session)
		if err != nil {
			log.Printf("Skipping session %s in status sweep: %v", session.ID, err)
			continue
		}
		end := start.Add(time.Duration(session.DurationMinutes) * time.Minute)

		switch {
		case session.Status == models.SessionScheduled && !now.Before(start) && now.Before(end):
			database.DB.Model(&models.ClassSession{}).Where("id = ?", session.ID).Update("status", models.SessionOngoing)
			started++
		case !now.Before(end):
			database.DB.Model(&models.ClassSession{}).Where("id = ?", session.ID).Update("status", models.SessionCompleted)
			completed++
		}
	}

	if started > 0 || completed > 0 {
		log.Printf("Status sweep: %d session(s) started, %d completed.", started, completed)
	}
}
