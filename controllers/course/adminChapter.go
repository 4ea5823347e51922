package controllers

import (
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
)

// AdminCreateChapter adds a chapter to a course
func AdminCreateChapter(c *fiber.Ctx) error {
	if _, ok := c.Locals("currentUser").(*models.User); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	reqData, ok := c.Locals("validatedChapter").(*struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		OrderIndex  *int   `json:"order_index"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Append at the end when no explicit position is given
	orderIndex := 0
	if reqData.OrderIndex != nil {
		orderIndex = *reqData.OrderIndex
	} else {
		var count int64
		database.Database.Db.Model(&courseModels.Chapter{}).Where("course_id = ? AND is_deleted = ?", course.ID, false).Count(&count)
		orderIndex = int(count)
	}

	chapter := courseModels.Chapter{
		CourseID:    course.ID,
		Title:       reqData.Title,
		Description: reqData.Description,
		OrderIndex:  orderIndex,
	}

	if err := database.Database.Db.Create(&chapter).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create chapter!", nil)
	}

	// Keep enrollment chapter totals in line with the course outline
	database.Database.Db.Model(&courseModels.Enrollment{}).
		Where("course_id = ? AND is_deleted = ?", course.ID, false).
		Update("total_chapters", gormChapterCount(course.ID))

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Chapter created successfully!", chapter)
}

func gormChapterCount(courseID uint) int {
	var count int64
	database.Database.Db.Model(&courseModels.Chapter{}).Where("course_id = ? AND is_deleted = ?", courseID, false).Count(&count)
	return int(count)
}

// AdminUpdateChapter updates a chapter
func AdminUpdateChapter(c *fiber.Ctx) error {
	if _, ok := c.Locals("currentUser").(*models.User); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	chapterID := c.Locals("chapterID").(int)

	var chapter courseModels.Chapter
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", chapterID, false).First(&chapter).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Chapter not found!", nil)
	}

	reqData, ok := c.Locals("validatedChapterUpdate").(*struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		OrderIndex  *int   `json:"order_index"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Title != "" {
		chapter.Title = reqData.Title
	}
	if reqData.Description != "" {
		chapter.Description = reqData.Description
	}
	if reqData.OrderIndex != nil {
		chapter.OrderIndex = *reqData.OrderIndex
	}

	if err := database.Database.Db.Save(&chapter).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update chapter!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Chapter updated successfully!", chapter)
}

// AdminDeleteChapter soft deletes a chapter
func AdminDeleteChapter(c *fiber.Ctx) error {
	if _, ok := c.Locals("currentUser").(*models.User); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	chapterID := c.Locals("chapterID").(int)

	var chapter courseModels.Chapter
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", chapterID, false).First(&chapter).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Chapter not found!", nil)
	}

	chapter.IsDeleted = true
	if err := database.Database.Db.Save(&chapter).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete chapter!", nil)
	}

	database.Database.Db.Model(&courseModels.Enrollment{}).
		Where("course_id = ? AND is_deleted = ?", chapter.CourseID, false).
		Update("total_chapters", gormChapterCount(chapter.CourseID))

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Chapter deleted successfully!", nil)
}

// AdminGetChapters lists a course's chapters in order
func AdminGetChapters(c *fiber.Ctx) error {
	if _, ok := c.Locals("currentUser").(*models.User); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var chapters []courseModels.Chapter
	if err := database.Database.Db.Where("course_id = ? AND is_deleted = ?", courseID, false).Order("order_index asc").Find(&chapters).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch chapters!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Chapters fetched successfully!", fiber.Map{
		"course":   course,
		"chapters": chapters,
	})
}
