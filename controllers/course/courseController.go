package controllers

import (
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
)

func GetAllCourses(c *fiber.Ctx) error {
	// Retrieve userId from JWT middleware
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	// Check if user exists
	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	// Retrieve validated pagination request
	reqData, ok := c.Locals("validatedCourseList").(*struct {
		Page   *int   `json:"page"`
		Limit  *int   `json:"limit"`
		Search string `json:"search"`
	})

	// Set default pagination
	page := 1
	limit := 10
	search := ""
	if ok {
		if reqData.Page != nil {
			page = *reqData.Page
		}
		if reqData.Limit != nil {
			limit = *reqData.Limit
		}
		search = reqData.Search
	}
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&courseModels.Course{}).
		Where("is_deleted = ? AND status = ? AND is_published = ?", false, courseModels.CourseStatusActive, true)
	if search != "" {
		db = db.Where("title ILIKE ?", "%"+search+"%")
	}

	// Get total count
	var total int64
	db.Count(&total)

	// Fetch paginated data
	var courses []courseModels.Course
	if err := db.Offset(offset).Limit(limit).Order("created_at desc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	// Prepare response
	response := map[string]interface{}{
		"courses": courses,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", response)
}

func GetCourseDetails(c *fiber.Ctx) error {
	// Retrieve userId from JWT middleware
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var chapters []courseModels.Chapter
	if err := database.Database.Db.Where("course_id = ? AND is_deleted = ?", courseID, false).Order("order_index asc").Find(&chapters).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch chapters!", nil)
	}

	type ChapterOverview struct {
		courseModels.Chapter
		LessonCount int64 `json:"lesson_count"`
		HasQuiz     bool  `json:"has_quiz"`
	}

	chapterList := make([]ChapterOverview, len(chapters))
	for i, chapter := range chapters {
		var lessonCount int64
		database.Database.Db.Model(&courseModels.Lesson{}).
			Where("chapter_id = ? AND is_deleted = ? AND is_published = ?", chapter.ID, false, true).
			Count(&lessonCount)

		var quizCount int64
		database.Database.Db.Model(&courseModels.MCQQuestion{}).
			Where("chapter_id = ? AND is_active = ? AND is_deleted = ?", chapter.ID, true, false).
			Count(&quizCount)

		chapterList[i] = ChapterOverview{
			Chapter:     chapter,
			LessonCount: lessonCount,
			HasQuiz:     quizCount > 0,
		}
	}

	var enrolled bool
	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userId, courseID, false).First(&enrollment).Error; err == nil {
		enrolled = true
	}

	response := fiber.Map{
		"course":      course,
		"chapters":    chapterList,
		"is_enrolled": enrolled,
	}
	if enrolled {
		response["enrollment"] = enrollment
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course details fetched successfully!", response)
}
