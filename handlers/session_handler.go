package handlers

import (
	"errors"
	"time"

	config "github.com/ovationhq/arts_academy/configs"
	"github.com/ovationhq/arts_academy/database"
	"github.com/ovationhq/arts_academy/models"
	"github.com/ovationhq/arts_academy/services"
	"github.com/ovationhq/arts_academy/utils"
	"github.com/ovationhq/arts_academy/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Title                 string  `json:"title" validate:"required,min=3"`
	CourseID              *string `json:"course_id" validate:"omitempty,uuid"`
	StartDate             string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	StartTime             string  `json:"start_time" validate:"required,datetime=15:04"`
	DurationMinutes       int     `json:"duration_minutes" validate:"required,gt=0"`
	Timezone              string  `json:"timezone"`
	Category              string  `json:"category"`
	InstructorID          string  `json:"instructor_id" validate:"required,uuid"`
	SecondaryInstructorID *string `json:"secondary_instructor_id" validate:"omitempty,uuid"`
	Room                  *string `json:"room"`
	MeetingLink           *string `json:"meeting_link"`
}

func CreateSession(c *fiber.Ctx) error {
	var req CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	timezone := req.Timezone
	if timezone == "" {
		timezone = "UTC"
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown timezone"})
	}

	instructorID, _ := uuid.Parse(req.InstructorID)
	var instructor models.User
	if err := database.DB.First(&instructor, "id = ? AND role = ?", instructorID, "instructor").Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Instructor not found"})
	}

	session := models.ClassSession{
		Title:           req.Title,
		StartDate:       req.StartDate,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Timezone:        timezone,
		InstructorID:    instructorID,
		Room:            req.Room,
		MeetingLink:     req.MeetingLink,
		Status:          models.SessionScheduled,
	}
	if req.Category != "" {
		session.Category = req.Category
	}
	if req.CourseID != nil {
		courseID, _ := uuid.Parse(*req.CourseID)
		var course models.Course
		if err := database.DB.First(&course, "id = ?", courseID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
		}
		session.CourseID = &courseID
	}
	if req.SecondaryInstructorID != nil {
		secondaryID, _ := uuid.Parse(*req.SecondaryInstructorID)
		session.SecondaryInstructorID = &secondaryID
	}

	// Online classes with no room get a generated meeting link.
	if session.Room == nil && session.MeetingLink == nil {
		code, err := utils.GenerateUniqueMeetingCode(database.DB)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate meeting link"})
		}
		link := config.Config("MEETING_BASE_URL") + "/" + code
		session.MeetingLink = &link
	}

	if err := database.DB.Create(&session).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create session"})
	}

	websocket.NotifyScheduleChange(session.ID, "created")

	return c.Status(fiber.StatusCreated).JSON(session)
}

// ListSessions exposes the session records behind the calendar, filterable
// by instructor, category, status and date range.
func ListSessions(c *fiber.Ctx) error {
	filter := services.SessionFilter{
		Category: c.Query("category"),
		Status:   c.Query("status"),
		FromDate: c.Query("from"),
		ToDate:   c.Query("to"),
	}
	if raw := c.Query("instructor_id"); raw != "" {
		instructorID, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid instructor id"})
		}
		filter.InstructorID = &instructorID
	}

	sessions, err := scheduleStore().ListSessions(c.Context(), filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch sessions"})
	}
	return c.JSON(sessions)
}

func GetSession(c *fiber.Ctx) error {
	var session models.ClassSession
	err := database.DB.
		Preload("Course.Category").
		Preload("Instructor").
		Preload("Students").
		First(&session, "id = ?", c.Params("sessionId")).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Class session not found"})
	}
	return c.JSON(session)
}

// GetMyTeachingSessions lists the sessions an instructor teaches.
func GetMyTeachingSessions(c *fiber.Ctx) error {
	instructorID := currentUserID(c)
	sessions, err := scheduleStore().ListSessions(c.Context(), services.SessionFilter{
		InstructorID: &instructorID,
		FromDate:     c.Query("from"),
		ToDate:       c.Query("to"),
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch sessions"})
	}
	return c.JSON(sessions)
}

// GetMyEnrolledSessions lists the sessions a student is enrolled in.
func GetMyEnrolledSessions(c *fiber.Ctx) error {
	var sessions []models.ClassSession
	err := database.DB.
		Joins("JOIN session_students ss ON ss.class_session_id = class_sessions.id").
		Where("ss.user_id = ?", currentUserID(c)).
		Order("start_date, start_time").
		Find(&sessions).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch sessions"})
	}
	return c.JSON(sessions)
}

type EnrollStudentsRequest struct {
	StudentIDs []string `json:"student_ids" validate:"required,min=1,dive,uuid"`
}

func EnrollStudents(c *fiber.Ctx) error {
	var session models.ClassSession
	if err := database.DB.First(&session, "id = ?", c.Params("sessionId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Class session not found"})
	}
	if session.Status == models.SessionCancelled || session.Status == models.SessionCompleted {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot enroll students in a finished class"})
	}

	var req EnrollStudentsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var students []*models.User
	if err := database.DB.Where("id IN ? AND role = ?", req.StudentIDs, "student").Find(&students).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to look up students"})
	}
	if len(students) != len(req.StudentIDs) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "One or more students were not found"})
	}

	if err := database.DB.Model(&session).Association("Students").Append(students); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to enroll students"})
	}

	return c.JSON(fiber.Map{"message": "Students enrolled successfully."})
}

type CancelSessionRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

// CancelSession cancels a single session outside of any vacation workflow.
func CancelSession(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("sessionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	var req CancelSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var session models.ClassSession
	if err := database.DB.First(&session, "id = ?", sessionID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Class session not found"})
	}
	if currentUserRole(c) != "admin" && !session.AssignedTo(currentUserID(c)) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not teach this class"})
	}

	if err := scheduleStore().CancelSession(c.Context(), sessionID, req.Reason); err != nil {
		if errors.Is(err, database.ErrSessionFinal) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to cancel the class"})
	}

	websocket.NotifyScheduleChange(sessionID, "cancelled")

	return c.JSON(fiber.Map{"message": "Class cancelled."})
}
