package handlers

import (
	"github.com/ovationhq/arts_academy/database"
	"github.com/ovationhq/arts_academy/models"
	"github.com/ovationhq/arts_academy/notifications"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecordPayment books a manual payment against a student, typically entered
// by the front desk. Online checkout is not part of this service.
type RecordPaymentRequest struct {
	StudentID string  `json:"student_id" validate:"required,uuid"`
	CourseID  *string `json:"course_id" validate:"omitempty,uuid"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Currency  string  `json:"currency" validate:"omitempty,iso4217"`
	Method    string  `json:"method" validate:"required,oneof=cash card bank_transfer"`
	Note      *string `json:"note"`
}

func RecordPayment(c *fiber.Ctx) error {
	var req RecordPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	studentID, _ := uuid.Parse(req.StudentID)
	var student models.User
	if err := database.DB.First(&student, "id = ?", studentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	payment := models.Payment{
		StudentID: studentID,
		Amount:    req.Amount,
		Currency:  currency,
		Method:    req.Method,
		Status:    "completed",
		Note:      req.Note,
	}
	if req.CourseID != nil {
		courseID, _ := uuid.Parse(*req.CourseID)
		payment.CourseID = &courseID
	}

	if err := database.DB.Create(&payment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record payment"})
	}

	go notifications.SendEmail(
		student.FullName,
		student.Email,
		"Payment Received",
		"<h1>Thank you!</h1><p>We have recorded your payment. A receipt is available in your portal.</p>",
	)

	return c.Status(fiber.StatusCreated).JSON(payment)
}

func ListPayments(c *fiber.Ctx) error {
	query := database.DB.Preload("Student").Preload("Course").Order("created_at desc")
	if studentID := c.Query("student_id"); studentID != "" {
		query = query.Where("student_id = ?", studentID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var payments []models.Payment
	if err := query.Find(&payments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch payments"})
	}
	return c.JSON(payments)
}

func GetMyPayments(c *fiber.Ctx) error {
	userID := currentUserID(c)

	// Parents see their children's payments alongside their own.
	var familyIDs []uuid.UUID
	familyIDs = append(familyIDs, userID)
	if currentUserRole(c) == "parent" {
		var childIDs []uuid.UUID
		database.DB.Model(&models.User{}).Where("parent_id = ?", userID).Pluck("id", &childIDs)
		familyIDs = append(familyIDs, childIDs...)
	}

	var payments []models.Payment
	err := database.DB.
		Preload("Course").
		Where("student_id IN ?", familyIDs).
		Order("created_at desc").
		Find(&payments).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch payments"})
	}
	return c.JSON(payments)
}

type RefundRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

func RequestRefund(c *fiber.Ctx) error {
	var payment models.Payment
	if err := database.DB.First(&payment, "id = ?", c.Params("paymentId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment not found"})
	}
	if payment.StudentID != currentUserID(c) && currentUserRole(c) != "admin" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This is not your payment"})
	}
	if payment.RefundStatus != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A refund has already been requested for this payment"})
	}

	var req RefundRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	requested := "requested"
	payment.RefundStatus = &requested
	payment.RefundReason = &req.Reason
	database.DB.Save(&payment)

	return c.JSON(fiber.Map{"message": "Refund request submitted for review."})
}

type ReviewRefundRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approved denied"`
}

func ReviewRefund(c *fiber.Ctx) error {
	var payment models.Payment
	if err := database.DB.Preload("Student").First(&payment, "id = ?", c.Params("paymentId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment not found"})
	}
	if payment.RefundStatus == nil || *payment.RefundStatus != "requested" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "This payment has no pending refund request"})
	}

	var req ReviewRefundRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		payment.RefundStatus = &req.Decision
		if req.Decision == "approved" {
			payment.Status = "refunded"
			// Refunds go to the student's credit balance, not back to the
			// original payment method.
			if err := tx.Model(&models.User{}).
				Where("id = ?", payment.StudentID).
				Update("credit_balance", gorm.Expr("credit_balance + ?", payment.Amount)).Error; err != nil {
				return err
			}
		}
		return tx.Save(&payment).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process refund"})
	}

	go notifications.SendEmail(
		payment.Student.FullName,
		payment.Student.Email,
		"Update on Your Refund Request",
		"<h1>Refund Update</h1><p>Your refund request has been "+req.Decision+".</p>",
	)

	return c.JSON(payment)
}
