package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/ovationhq/arts_academy/database"
	"github.com/ovationhq/arts_academy/models"
	"github.com/ovationhq/arts_academy/notifications"
	"github.com/ovationhq/arts_academy/services"
)

// SendClassReminders emails everyone in a class starting roughly an hour
// from now. The window matches the cron cadence so each class is only
// reminded once.
func SendClassReminders() {
	log.Println("Running job: SendClassReminders...")

	now := time.Now()
	lowerBound := now.Add(60 * time.Minute)
	upperBound := now.Add(65 * time.Minute)
	today := now.UTC().Format(services.DateLayout)
	tomorrow := now.UTC().AddDate(0, 0, 1).Format(services.DateLayout)

	var sessions []models.ClassSession
	err := database.DB.
		Preload("Instructor").
		Preload("Students").
		Where("status = ? AND start_date IN ?", models.SessionScheduled, []string{today, tomorrow}).
		Find(&sessions).Error
	if err != nil {
		log.Printf("Error checking for upcoming classes: %v", err)
		return
	}

	for _, session := range sessions {
		start, err := services.SessionStart(session)
		if err != nil {
			continue
		}
		if start.Before(lowerBound) || !start.Before(upperBound) {
			continue
		}

		location := "at the studio"
		if session.Room != nil {
			location = "in " + *session.Room
		}
		if session.MeetingLink != nil {
			location = fmt.Sprintf("online: <a href='%s'>Join Class</a>", *session.MeetingLink)
		}

		emailSubject := "Reminder: " + session.Title + " Starts in 1 Hour!"
		emailBody := fmt.Sprintf(
			"<h1>Class Reminder</h1><p>Hi there,</p><p>%s is scheduled to start at %s, %s.</p>",
			session.Title,
			start.Format(time.Kitchen),
			location,
		)

		go notifications.SendEmail(session.Instructor.FullName, session.Instructor.Email, emailSubject, emailBody)
		for _, student := range session.Students {
			go notifications.SendEmail(student.FullName, student.Email, emailSubject, emailBody)
		}
		log.Printf("Sent reminders for session %s", session.ID)
	}
}
