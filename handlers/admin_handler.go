package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ovationhq/arts_academy/database"
	"github.com/ovationhq/arts_academy/models"
	"github.com/ovationhq/arts_academy/notifications"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func GetAllUsers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	search := strings.TrimSpace(c.Query("search"))
	role := c.Query("role")
	offset := (page - 1) * limit

	var users []models.User
	var totalUsers int64

	query := database.DB.Model(&models.User{})
	countQuery := database.DB.Model(&models.User{})

	if search != "" {
		searchTerm := "%" + search + "%"
		query = query.Where("full_name ILIKE ? OR email ILIKE ?", searchTerm, searchTerm)
		countQuery = countQuery.Where("full_name ILIKE ? OR email ILIKE ?", searchTerm, searchTerm)
	}
	if role != "" {
		query = query.Where("role = ?", role)
		countQuery = countQuery.Where("role = ?", role)
	}

	countQuery.Count(&totalUsers)
	query.Offset(offset).Limit(limit).Find(&users)

	return c.JSON(fiber.Map{
		"data": users,
		"meta": fiber.Map{
			"total_users":  totalUsers,
			"total_pages":  int(math.Ceil(float64(totalUsers) / float64(limit))),
			"current_page": page,
		},
	})
}

func ToggleUserStatus(c *fiber.Ctx) error {
	userID := c.Params("userId")
	type Request struct {
		IsActive bool `json:"is_active"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	result := database.DB.Model(&models.User{}).Where("id = ?", userID).Update("is_active", req.IsActive)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(fiber.Map{"message": "User status updated successfully."})
}

type PromoteInstructorRequest struct {
	Headline    *string `json:"headline"`
	Bio         *string `json:"bio"`
	Disciplines *string `json:"disciplines"`
}

// PromoteToInstructor turns an existing account into teaching staff and
// creates the matching instructor profile.
func PromoteToInstructor(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	var req PromoteInstructorRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	if user.Role == "instructor" {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "User is already an instructor"})
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		user.Role = "instructor"
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		profile := models.Instructor{
			UserID:      user.ID,
			Headline:    req.Headline,
			Bio:         req.Bio,
			Disciplines: req.Disciplines,
			Status:      "active",
		}
		return tx.Create(&profile).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to promote user"})
	}

	go notifications.SendEmail(
		user.FullName,
		user.Email,
		"Welcome to the Teaching Staff!",
		"<h1>Congratulations!</h1><p>Your account now has instructor access. You can manage your classes and declare vacation periods from your dashboard.</p>",
	)

	return c.JSON(fiber.Map{"message": "User promoted to instructor."})
}

func ListInstructors(c *fiber.Ctx) error {
	var instructors []models.Instructor
	if err := database.DB.Preload("User").Where("status = ?", "active").Find(&instructors).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(instructors)
}

type LinkChildRequest struct {
	ChildID string `json:"child_id" validate:"required,uuid"`
}

// LinkChildToParent attaches a student account to a parent account so the
// parent can follow schedules and payments.
func LinkChildToParent(c *fiber.Ctx) error {
	parentID, err := uuid.Parse(c.Params("parentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid parent id"})
	}

	var req LinkChildRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var parent models.User
	if err := database.DB.First(&parent, "id = ? AND role = ?", parentID, "parent").Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Parent not found"})
	}

	childID, _ := uuid.Parse(req.ChildID)
	result := database.DB.Model(&models.User{}).
		Where("id = ? AND role = ?", childID, "student").
		Update("parent_id", parentID)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to link accounts"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}

	return c.JSON(fiber.Map{"message": "Accounts linked successfully."})
}

// GenerateTransactionReport exports completed payments as CSV for the books.
func GenerateTransactionReport(c *fiber.Ctx) error {
	startDateStr := c.Query("start_date", time.Now().AddDate(0, -1, 0).Format("2006-01-02"))
	endDateStr := c.Query("end_date", time.Now().Format("2006-01-02"))

	startDate, err := time.Parse("2006-01-02", startDateStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid start_date format. Use YYYY-MM-DD."})
	}
	endDate, err := time.Parse("2006-01-02", endDateStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid end_date format. Use YYYY-MM-DD."})
	}
	endDate = endDate.Add(23*time.Hour + 59*time.Minute + 59*time.Second)

	var payments []models.Payment
	database.DB.
		Preload("Student").
		Preload("Course").
		Where("status = ? AND created_at BETWEEN ? AND ?", "completed", startDate, endDate).
		Order("created_at desc").
		Find(&payments)

	b := new(bytes.Buffer)
	w := csv.NewWriter(b)

	headers := []string{"Payment ID", "Date", "Student Name", "Amount", "Currency", "Method", "Course"}
	if err := w.Write(headers); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to write CSV header"})
	}

	for _, p := range payments {
		courseTitle := ""
		if p.CourseID != nil {
			courseTitle = p.Course.Title
		}
		row := []string{
			p.ID.String(),
			p.CreatedAt.Format("2006-01-02 15:04"),
			p.Student.FullName,
			fmt.Sprintf("%.2f", p.Amount),
			p.Currency,
			p.Method,
			courseTitle,
		}
		if err := w.Write(row); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to write CSV row"})
		}
	}
	w.Flush()

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s_to_%s.csv\"", startDate.Format("2006-01-02"), endDate.Format("2006-01-02")))

	return c.Send(b.Bytes())
}
