package controllers

import (
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
)

// AdminCreateMCQ adds a quiz question with options to a chapter
func AdminCreateMCQ(c *fiber.Ctx) error {
	if _, ok := c.Locals("currentUser").(*models.User); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	chapterID := c.Locals("chapterID").(int)

	var chapter courseModels.Chapter
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", chapterID, false).First(&chapter).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Chapter not found!", nil)
	}

	reqData, ok := c.Locals("validatedMCQ").(*struct {
		QuestionText string `json:"question_text"`
		OrderIndex   *int   `json:"order_index"`
		Options      []struct {
			OptionText string `json:"option_text"`
			IsCorrect  bool   `json:"is_correct"`
		} `json:"options"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	orderIndex := 0
	if reqData.OrderIndex != nil {
		orderIndex = *reqData.OrderIndex
	} else {
		var count int64
		database.Database.Db.Model(&courseModels.MCQQuestion{}).Where("chapter_id = ? AND is_deleted = ?", chapter.ID, false).Count(&count)
		orderIndex = int(count)
	}

	question := courseModels.MCQQuestion{
		ChapterID:    chapter.ID,
		QuestionText: reqData.QuestionText,
		OrderIndex:   orderIndex,
		IsActive:     true,
	}

	tx := database.Database.Db.Begin()
	if err := tx.Create(&question).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create question!", nil)
	}

	options := make([]courseModels.MCQOption, len(reqData.Options))
	for i, opt := range reqData.Options {
		options[i] = courseModels.MCQOption{
			QuestionID: question.ID,
			OptionText: opt.OptionText,
			IsCorrect:  opt.IsCorrect,
			OrderIndex: i,
		}
	}
	if err := tx.Create(&options).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create options!", nil)
	}
	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question created successfully!", fiber.Map{
		"question": question,
		"options":  options,
	})
}

// AdminUpdateMCQ updates question text or toggles it active
func AdminUpdateMCQ(c *fiber.Ctx) error {
	if _, ok := c.Locals("currentUser").(*models.User); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	questionID := c.Locals("questionID").(int)

	var question courseModels.MCQQuestion
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", questionID, false).First(&question).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}

	reqData, ok := c.Locals("validatedMCQUpdate").(*struct {
		QuestionText string `json:"question_text"`
		OrderIndex   *int   `json:"order_index"`
		IsActive     *bool  `json:"is_active"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.QuestionText != "" {
		question.QuestionText = reqData.QuestionText
	}
	if reqData.OrderIndex != nil {
		question.OrderIndex = *reqData.OrderIndex
	}
	if reqData.IsActive != nil {
		question.IsActive = *reqData.IsActive
	}

	if err := database.Database.Db.Save(&question).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update question!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question updated successfully!", question)
}

// AdminDeleteMCQ soft deletes a question and its options
func AdminDeleteMCQ(c *fiber.Ctx) error {
	if _, ok := c.Locals("currentUser").(*models.User); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	questionID := c.Locals("questionID").(int)

	var question courseModels.MCQQuestion
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", questionID, false).First(&question).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}

	tx := database.Database.Db.Begin()
	question.IsDeleted = true
	question.IsActive = false
	if err := tx.Save(&question).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete question!", nil)
	}
	if err := tx.Model(&courseModels.MCQOption{}).Where("question_id = ?", question.ID).Update("is_deleted", true).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete options!", nil)
	}
	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question deleted successfully!", nil)
}

// AdminGetChapterMCQs lists a chapter's questions with answers visible
func AdminGetChapterMCQs(c *fiber.Ctx) error {
	if _, ok := c.Locals("currentUser").(*models.User); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	chapterID := c.Locals("chapterID").(int)

	var chapter courseModels.Chapter
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", chapterID, false).First(&chapter).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Chapter not found!", nil)
	}

	var questions []courseModels.MCQQuestion
	if err := database.Database.Db.Where("chapter_id = ? AND is_deleted = ?", chapterID, false).Order("order_index asc").Find(&questions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch questions!", nil)
	}

	type QuestionWithOptions struct {
		courseModels.MCQQuestion
		Options []courseModels.MCQOption `json:"options"`
	}

	result := make([]QuestionWithOptions, len(questions))
	for i, q := range questions {
		var options []courseModels.MCQOption
		database.Database.Db.Where("question_id = ? AND is_deleted = ?", q.ID, false).Order("order_index asc").Find(&options)
		result[i] = QuestionWithOptions{MCQQuestion: q, Options: options}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Questions fetched successfully!", fiber.Map{
		"questions": result,
	})
}
