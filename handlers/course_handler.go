package handlers

import (
	"github.com/ovationhq/arts_academy/database"
	"github.com/ovationhq/arts_academy/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CategoryRequest struct {
	Name  string  `json:"name" validate:"required,min=2"`
	Color *string `json:"color" validate:"omitempty,hexcolor"`
}

func CreateCourseCategory(c *fiber.Ctx) error {
	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	category := models.CourseCategory{Name: req.Name, Color: req.Color}
	if err := database.DB.Create(&category).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create category"})
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

func ListCourseCategories(c *fiber.Ctx) error {
	var categories []models.CourseCategory
	database.DB.Order("name").Find(&categories)
	return c.JSON(categories)
}

func UpdateCourseCategory(c *fiber.Ctx) error {
	var category models.CourseCategory
	if err := database.DB.Where("id = ?", c.Params("categoryId")).First(&category).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Category not found"})
	}

	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	category.Name = req.Name
	category.Color = req.Color
	database.DB.Save(&category)

	return c.JSON(category)
}

func DeleteCourseCategory(c *fiber.Ctx) error {
	result := database.DB.Delete(&models.CourseCategory{}, "id = ?", c.Params("categoryId"))
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete category"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Category not found"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type CourseRequest struct {
	Title        string  `json:"title" validate:"required,min=3"`
	Description  *string `json:"description"`
	CategoryID   *string `json:"category_id" validate:"omitempty,uuid"`
	PricePerTerm float64 `json:"price_per_term" validate:"gte=0"`
}

func CreateCourse(c *fiber.Ctx) error {
	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	course := models.Course{
		Title:        req.Title,
		Description:  req.Description,
		PricePerTerm: req.PricePerTerm,
		IsActive:     true,
	}
	if req.CategoryID != nil {
		categoryID, _ := uuid.Parse(*req.CategoryID)
		var category models.CourseCategory
		if err := database.DB.First(&category, "id = ?", categoryID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Category not found"})
		}
		course.CategoryID = &categoryID
	}

	if err := database.DB.Create(&course).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create course"})
	}
	return c.Status(fiber.StatusCreated).JSON(course)
}

// ListCourses is the public catalog; only active courses are shown.
func ListCourses(c *fiber.Ctx) error {
	query := database.DB.Preload("Category").Where("is_active = ?", true)
	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	var courses []models.Course
	if err := query.Order("title").Find(&courses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch courses"})
	}
	return c.JSON(courses)
}

func GetCourse(c *fiber.Ctx) error {
	var course models.Course
	if err := database.DB.Preload("Category").First(&course, "id = ?", c.Params("courseId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}
	return c.JSON(course)
}

func UpdateCourse(c *fiber.Ctx) error {
	var course models.Course
	if err := database.DB.First(&course, "id = ?", c.Params("courseId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	type UpdateRequest struct {
		Title        *string  `json:"title" validate:"omitempty,min=3"`
		Description  *string  `json:"description"`
		CategoryID   *string  `json:"category_id" validate:"omitempty,uuid"`
		PricePerTerm *float64 `json:"price_per_term" validate:"omitempty,gte=0"`
		IsActive     *bool    `json:"is_active"`
	}
	var req UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = req.Description
	}
	if req.CategoryID != nil {
		categoryID, _ := uuid.Parse(*req.CategoryID)
		course.CategoryID = &categoryID
	}
	if req.PricePerTerm != nil {
		course.PricePerTerm = *req.PricePerTerm
	}
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}
	database.DB.Save(&course)

	return c.JSON(course)
}
