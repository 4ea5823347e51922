package controllers

import (
	"errors"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var errLessonAlreadyCompleted = errors.New("lesson already completed")

// upsertLessonCompletion adds a lesson to the user's completed set for the
// chapter and refreshes the derived chapter flags. A chapter with no active
// quiz counts its MCQ as passed once all lessons are done.
func upsertLessonCompletion(db *gorm.DB, userID, courseID uint, chapter *courseModels.Chapter, lessonID uint) (*courseModels.ChapterProgress, error) {
	var progress courseModels.ChapterProgress
	if err := db.Where("user_id = ? AND chapter_id = ? AND is_deleted = ?", userID, chapter.ID, false).First(&progress).Error; err != nil {
		progress = courseModels.ChapterProgress{UserID: userID, CourseID: courseID, ChapterID: chapter.ID}
	}

	ids := progress.CompletedLessonIDs()
	for _, id := range ids {
		if id == lessonID {
			return nil, errLessonAlreadyCompleted
		}
	}
	ids = append(ids, lessonID)
	progress.SetCompletedLessonIDs(ids)

	var totalLessons int64
	db.Model(&courseModels.Lesson{}).Where("chapter_id = ? AND is_deleted = ? AND is_published = ?", chapter.ID, false, true).Count(&totalLessons)
	progress.LessonCompleted = len(ids) >= int(totalLessons)

	if progress.LessonCompleted && !progress.MCQPassed {
		var mcqCount int64
		db.Model(&courseModels.MCQQuestion{}).Where("chapter_id = ? AND is_deleted = ? AND is_active = ?", chapter.ID, false, true).Count(&mcqCount)
		if mcqCount == 0 {
			progress.MCQPassed = true
		}
	}
	progress.Completed = progress.LessonCompleted && progress.MCQPassed

	if err := db.Save(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

// chapterUnlockedForUser checks the lock rule against stored progress rows
func chapterUnlockedForUser(db *gorm.DB, userID uint, chapter *courseModels.Chapter) bool {
	var prev courseModels.Chapter
	err := db.Where("course_id = ? AND order_index < ? AND is_deleted = ?", chapter.CourseID, chapter.OrderIndex, false).
		Order("order_index desc").First(&prev).Error
	if err != nil {
		// No earlier chapter: this is the first one
		return true
	}

	var prevProgress courseModels.ChapterProgress
	if err := db.Where("user_id = ? AND chapter_id = ? AND is_deleted = ?", userID, prev.ID, false).First(&prevProgress).Error; err != nil {
		return false
	}
	return prevProgress.MCQPassed
}

// GetChapterLessons lists a chapter's published lessons with completion flags
func GetChapterLessons(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)
	chapterID := c.Locals("chapterID").(int)

	// Check enrollment
	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
	}

	var chapter courseModels.Chapter
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", chapterID, courseID, false).First(&chapter).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Chapter not found!", nil)
	}

	if !chapterUnlockedForUser(database.Database.Db, userID, &chapter) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Chapter is locked! Pass the previous chapter's quiz first.", nil)
	}

	var lessons []courseModels.Lesson
	if err := database.Database.Db.Where("chapter_id = ? AND is_deleted = ? AND is_published = ?", chapterID, false, true).
		Order("order_index asc").Find(&lessons).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch lessons!", nil)
	}

	var progress courseModels.ChapterProgress
	completedSet := make(map[uint]bool)
	if err := database.Database.Db.Where("user_id = ? AND chapter_id = ? AND is_deleted = ?", userID, chapterID, false).First(&progress).Error; err == nil {
		for _, id := range progress.CompletedLessonIDs() {
			completedSet[id] = true
		}
	}

	type LessonWithCompletion struct {
		courseModels.Lesson
		IsCompleted bool `json:"is_completed"`
	}

	result := make([]LessonWithCompletion, len(lessons))
	for i, lesson := range lessons {
		result[i] = LessonWithCompletion{Lesson: lesson, IsCompleted: completedSet[lesson.ID]}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lessons fetched successfully!", fiber.Map{
		"lessons": result,
		"total":   len(result),
	})
}

// CompleteLesson marks a lesson as completed in the user's chapter progress
func CompleteLesson(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)
	lessonID := c.Locals("lessonID").(int)

	// Check if course exists and is published
	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found or not published!", nil)
	}

	// Check if lesson exists
	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ? AND is_published = ?", lessonID, courseID, false, true).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	// Check enrollment
	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
	}

	var chapter courseModels.Chapter
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", lesson.ChapterID, false).First(&chapter).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Chapter not found!", nil)
	}

	if !chapterUnlockedForUser(database.Database.Db, userID, &chapter) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Chapter is locked! Pass the previous chapter's quiz first.", nil)
	}

	progress, err := upsertLessonCompletion(database.Database.Db, userID, uint(courseID), &chapter, lesson.ID)
	if err != nil {
		if err == errLessonAlreadyCompleted {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Lesson already marked as completed!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark lesson as completed!", nil)
	}

	// Update enrollment aggregates and run completion detection
	updateEnrollmentProgress(database.Database.Db, Artifacts, utils.Mail, userID, uint(courseID))

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson marked as completed successfully!", progress)
}
