package handlers

import (
	"errors"
	"log"

	"github.com/ovationhq/arts_academy/database"
	"github.com/ovationhq/arts_academy/models"
	"github.com/ovationhq/arts_academy/services"
	"github.com/ovationhq/arts_academy/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// workflows holds the vacation resolutions currently open in some admin's or
// instructor's browser. They are in-memory only; the durable effect of every
// decision is written straight back to the session records.
var workflows = services.NewWorkflowRegistry()

type CreateVacationRequest struct {
	StartDate string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string  `json:"end_date" validate:"required,datetime=2006-01-02"`
	Reason    *string `json:"reason"`
}

func CreateVacationPeriod(c *fiber.Ctx) error {
	var req CreateVacationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.EndDate < req.StartDate {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "End date must not be before start date"})
	}

	vacation := models.VacationPeriod{
		InstructorID: currentUserID(c),
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Reason:       req.Reason,
	}
	if err := database.DB.Create(&vacation).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create vacation period"})
	}

	flagged, err := scheduleStore().FlagVacationImpacts(c.Context(), vacation)
	if err != nil {
		log.Printf("Error flagging impacted sessions for vacation %s: %v", vacation.ID, err)
	} else if flagged > 0 {
		websocket.NotifyScheduleChange(uuid.Nil, "vacation_declared")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"vacation":          vacation,
		"impacted_sessions": flagged,
	})
}

func GetMyVacationPeriods(c *fiber.Ctx) error {
	periods, err := scheduleStore().ListVacationPeriods(c.Context(), currentUserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch vacation periods"})
	}
	return c.JSON(periods)
}

func GetInstructorVacationPeriods(c *fiber.Ctx) error {
	instructorID, err := uuid.Parse(c.Params("instructorId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid instructor id"})
	}
	periods, err := scheduleStore().ListVacationPeriods(c.Context(), instructorID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch vacation periods"})
	}
	return c.JSON(periods)
}

func DeleteVacationPeriod(c *fiber.Ctx) error {
	vacation, status, err := loadVacationForCaller(c)
	if err != nil {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	if err := database.DB.Delete(&models.VacationPeriod{}, "id = ?", vacation.ID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete vacation period"})
	}
	return c.JSON(fiber.Map{"message": "Vacation period deleted."})
}

func loadVacationForCaller(c *fiber.Ctx) (models.VacationPeriod, int, error) {
	vacationID, err := uuid.Parse(c.Params("vacationId"))
	if err != nil {
		return models.VacationPeriod{}, fiber.StatusBadRequest, errors.New("invalid vacation id")
	}

	var vacation models.VacationPeriod
	if err := database.DB.First(&vacation, "id = ?", vacationID).Error; err != nil {
		return models.VacationPeriod{}, fiber.StatusNotFound, errors.New("vacation period not found")
	}
	if currentUserRole(c) != "admin" && vacation.InstructorID != currentUserID(c) {
		return models.VacationPeriod{}, fiber.StatusForbidden, errors.New("this is not your vacation period")
	}
	return vacation, fiber.StatusOK, nil
}

// impactedSessionsFor takes a fresh snapshot of the sessions hit by a
// vacation. Snapshots are recomputed on every call; earlier remediations are
// reflected because the store is re-read.
func impactedSessionsFor(c *fiber.Ctx, vacation models.VacationPeriod) ([]models.ClassSession, error) {
	return scheduleStore().ListSessions(c.Context(), services.SessionFilter{
		InstructorID: &vacation.InstructorID,
		FromDate:     vacation.StartDate,
		ToDate:       vacation.EndDate,
	})
}

// GetVacationImpact previews which sessions collide with a vacation period.
func GetVacationImpact(c *fiber.Ctx) error {
	vacation, status, err := loadVacationForCaller(c)
	if err != nil {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	sessions, err := impactedSessionsFor(c, vacation)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch sessions"})
	}

	return c.JSON(fiber.Map{
		"vacation": vacation,
		"impacted": services.ResolveImpactedSessions(sessions, vacation),
	})
}

// OpenImpactWorkflow starts a resolution batch for one vacation period. Every
// impacted session must then be cancelled or rescheduled item by item.
func OpenImpactWorkflow(c *fiber.Ctx) error {
	vacation, status, err := loadVacationForCaller(c)
	if err != nil {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	sessions, err := impactedSessionsFor(c, vacation)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch sessions"})
	}

	w := workflows.Open(scheduleStore(), sessions, vacation)
	log.Printf("Opened impact workflow %s for vacation %s with %d item(s)", w.ID, vacation.ID, w.Pending())

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"workflow_id": w.ID,
		"items":       w.Items(),
	})
}

func GetImpactWorkflow(c *fiber.Ctx) error {
	w, status, err := loadWorkflowForCaller(c)
	if err != nil {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{
		"workflow_id": w.ID,
		"items":       w.Items(),
		"pending":     w.Pending(),
		"resolved":    w.Resolved(),
	})
}

type ResolveImpactRequest struct {
	Action       string `json:"action" validate:"required,oneof=cancel reschedule"`
	Reason       string `json:"reason"`
	NewStartDate string `json:"new_start_date" validate:"omitempty,datetime=2006-01-02"`
	NewStartTime string `json:"new_start_time" validate:"omitempty,datetime=15:04"`
}

// ResolveImpactedSession remediates one item of an open workflow. Failures
// are per item: the session stays pending and can be retried while the rest
// of the batch proceeds.
func ResolveImpactedSession(c *fiber.Ctx) error {
	w, status, err := loadWorkflowForCaller(c)
	if err != nil {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	sessionID, err := uuid.Parse(c.Params("sessionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	var req ResolveImpactRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var resolveErr error
	outcome := "rescheduled"
	switch req.Action {
	case "cancel":
		outcome = "cancelled"
		reason := req.Reason
		if reason == "" {
			reason = "Instructor unavailable: vacation"
		}
		resolveErr = w.CancelItem(c.Context(), sessionID, reason)
	case "reschedule":
		if req.NewStartDate == "" || req.NewStartTime == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "A new date and time are required to reschedule"})
		}
		resolveErr = w.RescheduleItem(c.Context(), sessionID, req.NewStartDate, req.NewStartTime)
	}

	if resolveErr != nil {
		switch {
		case errors.Is(resolveErr, services.ErrUnknownImpactedSession):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": resolveErr.Error()})
		case errors.Is(resolveErr, services.ErrResolutionInFlight),
			errors.Is(resolveErr, services.ErrAlreadyResolved),
			errors.Is(resolveErr, services.ErrWorkflowClosed):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": resolveErr.Error()})
		case errors.Is(resolveErr, database.ErrSlotInPast), errors.Is(resolveErr, database.ErrInstructorBusy):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": resolveErr.Error()})
		default:
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": resolveErr.Error()})
		}
	}

	websocket.NotifyScheduleChange(sessionID, outcome)

	return c.JSON(fiber.Map{
		"message":  "Session " + outcome + " successfully.",
		"pending":  w.Pending(),
		"resolved": w.Resolved(),
	})
}

// DismissImpactWorkflow closes a workflow, pending items included. That is an
// explicit user override; unresolved sessions keep their impact flag.
func DismissImpactWorkflow(c *fiber.Ctx) error {
	w, status, err := loadWorkflowForCaller(c)
	if err != nil {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	pending := w.Pending()
	workflows.Discard(w.ID)
	if pending > 0 {
		log.Printf("Impact workflow %s dismissed with %d pending item(s)", w.ID, pending)
	}

	return c.JSON(fiber.Map{"message": "Workflow dismissed.", "pending_left": pending})
}

func loadWorkflowForCaller(c *fiber.Ctx) (*services.ImpactWorkflow, int, error) {
	workflowID, err := uuid.Parse(c.Params("workflowId"))
	if err != nil {
		return nil, fiber.StatusBadRequest, errors.New("invalid workflow id")
	}
	w, ok := workflows.Get(workflowID)
	if !ok {
		return nil, fiber.StatusNotFound, errors.New("workflow not found or already dismissed")
	}
	if currentUserRole(c) != "admin" && w.Vacation.InstructorID != currentUserID(c) {
		return nil, fiber.StatusForbidden, errors.New("this workflow belongs to another instructor")
	}
	return w, fiber.StatusOK, nil
}
