package controllers

import (
	"encoding/json"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MCQAnswer is one answered question in a quiz submission
type MCQAnswer struct {
	QuestionID        uint   `json:"question_id"`
	SelectedOptionIDs []uint `json:"selected_option_ids"`
}

// GetChapterMCQs returns a chapter's quiz questions with answers hidden
func GetChapterMCQs(c *fiber.Ctx) error {
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

	var questions []courseModels.MCQQuestion
	if err := database.Database.Db.Where("chapter_id = ? AND is_deleted = ? AND is_active = ?", chapterID, false, true).
		Order("order_index asc").Find(&questions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch quiz questions!", nil)
	}

	type QuestionWithOptions struct {
		courseModels.MCQQuestion
		Options []courseModels.MCQOption `json:"options"`
	}

	result := make([]QuestionWithOptions, len(questions))
	for i, q := range questions {
		var options []courseModels.MCQOption
		database.Database.Db.Where("question_id = ? AND is_deleted = ?", q.ID, false).Order("order_index asc").Find(&options)
		// Don't show answers to students
		for j := range options {
			options[j].IsCorrect = false
		}
		result[i] = QuestionWithOptions{MCQQuestion: q, Options: options}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched successfully!", fiber.Map{
		"questions": result,
		"total":     len(result),
	})
}

// SubmitChapterMCQ evaluates a chapter quiz submission. The quiz may only be
// attempted when the chapter is unlocked, all its lessons are completed, and
// it has not already been passed.
func SubmitChapterMCQ(c *fiber.Ctx) error {
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

	var progress courseModels.ChapterProgress
	if err := database.Database.Db.Where("user_id = ? AND chapter_id = ? AND is_deleted = ?", userID, chapterID, false).First(&progress).Error; err != nil {
		progress = courseModels.ChapterProgress{UserID: userID, CourseID: uint(courseID), ChapterID: uint(chapterID)}
	}

	if progress.MCQPassed {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Quiz already passed!", nil)
	}

	var totalLessons int64
	database.Database.Db.Model(&courseModels.Lesson{}).Where("chapter_id = ? AND is_deleted = ? AND is_published = ?", chapterID, false, true).Count(&totalLessons)
	if len(progress.CompletedLessonIDs()) < int(totalLessons) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Complete all lessons in this chapter before attempting the quiz!", nil)
	}

	reqData := new(struct {
		Answers []MCQAnswer `json:"answers"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	if len(reqData.Answers) == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Please answer at least one question!", nil)
	}

	var questions []courseModels.MCQQuestion
	database.Database.Db.Where("chapter_id = ? AND is_deleted = ? AND is_active = ?", chapterID, false, true).Find(&questions)
	if len(questions) == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "This chapter has no active quiz!", nil)
	}

	score, maxScore, passed := scoreQuizSubmission(database.Database.Db, questions, reqData.Answers)

	var attemptCount int64
	database.Database.Db.Model(&courseModels.MCQAttempt{}).Where("user_id = ? AND chapter_id = ? AND is_deleted = ?", userID, chapterID, false).Count(&attemptCount)

	selectedJSON, _ := json.Marshal(reqData.Answers)
	attempt := courseModels.MCQAttempt{
		UserID:          userID,
		ChapterID:       uint(chapterID),
		SelectedOptions: datatypes.JSON(selectedJSON),
		Score:           score,
		MaxScore:        maxScore,
		Passed:          passed,
		AttemptNumber:   int(attemptCount) + 1,
	}
	if err := database.Database.Db.Create(&attempt).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit quiz!", nil)
	}

	if passed {
		progress.MCQPassed = true
		progress.LessonCompleted = true
		progress.Completed = true
		if err := database.Database.Db.Save(&progress).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update progress!", nil)
		}

		// Update enrollment aggregates and run completion detection
		updateEnrollmentProgress(database.Database.Db, Artifacts, utils.Mail, userID, uint(courseID))
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz submitted!", fiber.Map{
		"attempt":   attempt,
		"passed":    passed,
		"score":     score,
		"max_score": maxScore,
	})
}

// scoreQuizSubmission marks each question right when the selected option set
// exactly matches the correct option set; the quiz passes when every
// question is right
func scoreQuizSubmission(db *gorm.DB, questions []courseModels.MCQQuestion, answers []MCQAnswer) (score, maxScore int, passed bool) {
	answersByQuestion := make(map[uint][]uint, len(answers))
	for _, a := range answers {
		answersByQuestion[a.QuestionID] = a.SelectedOptionIDs
	}

	maxScore = len(questions)
	for _, q := range questions {
		var correctOptions []courseModels.MCQOption
		db.Where("question_id = ? AND is_correct = ? AND is_deleted = ?", q.ID, true, false).Find(&correctOptions)

		correctSet := make(map[uint]bool, len(correctOptions))
		for _, opt := range correctOptions {
			correctSet[opt.ID] = true
		}

		selected := answersByQuestion[q.ID]
		if len(selected) != len(correctSet) {
			continue
		}
		match := true
		for _, id := range selected {
			if !correctSet[id] {
				match = false
				break
			}
		}
		if match {
			score++
		}
	}

	passed = score == maxScore && maxScore > 0
	return score, maxScore, passed
}
