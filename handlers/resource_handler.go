package handlers

import (
	"context"
	"fmt"
	"time"

	config "github.com/ovationhq/arts_academy/configs"
	"github.com/ovationhq/arts_academy/database"
	"github.com/ovationhq/arts_academy/models"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// UploadResource attaches sheet music, choreography notes or other course
// material. Instructors can only upload to courses they teach a class in.
func UploadResource(c *fiber.Ctx) error {
	uploaderID := currentUserID(c)
	courseID, err := uuid.Parse(c.Params("courseId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course id"})
	}

	var course models.Course
	if err := database.DB.First(&course, "id = ?", courseID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	if currentUserRole(c) != "admin" {
		var taught int64
		database.DB.Model(&models.ClassSession{}).
			Where("course_id = ? AND (instructor_id = ? OR secondary_instructor_id = ?)", courseID, uploaderID, uploaderID).
			Count(&taught)
		if taught == 0 {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not teach a class in this course."})
		}
	}

	file, err := c.FormFile("resource")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Resource file is required."})
	}

	audience := c.FormValue("audience", "all")
	if audience != "all" && audience != "students" && audience != "staff" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Audience must be all, students or staff."})
	}
	title := c.FormValue("title", file.Filename)

	cld, _ := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadResult, err := cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:   "academy_resources",
		PublicID: fmt.Sprintf("course_%s_%s", courseID, file.Filename),
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload file."})
	}

	resource := models.Resource{
		CourseID:   &courseID,
		UploaderID: uploaderID,
		Title:      title,
		FileName:   file.Filename,
		FileURL:    uploadResult.SecureURL,
		Audience:   audience,
		UploadedAt: time.Now(),
	}
	database.DB.Create(&resource)

	return c.Status(fiber.StatusCreated).JSON(resource)
}

// GetCourseResources lists the materials a caller may see for a course.
// Students and parents only see resources published to them.
func GetCourseResources(c *fiber.Ctx) error {
	courseID := c.Params("courseId")

	var course models.Course
	if err := database.DB.First(&course, "id = ?", courseID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	query := database.DB.Preload("Uploader").Where("course_id = ?", courseID)
	switch currentUserRole(c) {
	case "admin", "instructor":
	default:
		query = query.Where("audience IN ?", []string{"all", "students"})
	}

	var resources []models.Resource
	query.Order("uploaded_at desc").Find(&resources)

	return c.JSON(resources)
}

func DeleteResource(c *fiber.Ctx) error {
	var resource models.Resource
	if err := database.DB.First(&resource, "id = ?", c.Params("resourceId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Resource not found"})
	}
	if currentUserRole(c) != "admin" && resource.UploaderID != currentUserID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You did not upload this resource"})
	}

	if err := database.DB.Delete(&resource).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete resource"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
