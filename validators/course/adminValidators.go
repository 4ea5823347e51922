package courseValidator

import (
	"strings"

	"lms/middleware"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
)

func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			Duration     int64  `json:"duration"`
			ThumbnailURL string `json:"thumbnail_url"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		// Validate Title
		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		} else if len(strings.TrimSpace(reqData.Title)) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		// Validate Description
		if strings.TrimSpace(reqData.Description) == "" {
			errors["description"] = "Description is required!"
		} else if len(strings.TrimSpace(reqData.Description)) < 5 {
			errors["description"] = "Description must be at least 5 characters long!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

func UpdateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		reqData := new(struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			Duration     int64  `json:"duration"`
			ThumbnailURL string `json:"thumbnail_url"`
			Status       string `json:"status"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.Status != "" {
			switch reqData.Status {
			case courseModels.CourseStatusDraft, courseModels.CourseStatusActive, courseModels.CourseStatusInactive:
			default:
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course status!", nil)
			}
		}

		c.Locals("courseID", courseID)
		c.Locals("validatedCourseUpdate", reqData)
		return c.Next()
	}
}

func CreateChapter() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		reqData := new(struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			OrderIndex  *int   `json:"order_index"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		}
		if reqData.OrderIndex != nil && *reqData.OrderIndex < 0 {
			errors["order_index"] = "Order index cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("validatedChapter", reqData)
		return c.Next()
	}
}

func UpdateChapter() fiber.Handler {
	return func(c *fiber.Ctx) error {
		chapterID, ok := parseIDParam(c, "chapter_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Chapter ID!", nil)
		}

		reqData := new(struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			OrderIndex  *int   `json:"order_index"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.OrderIndex != nil && *reqData.OrderIndex < 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Order index cannot be negative!", nil)
		}

		c.Locals("chapterID", chapterID)
		c.Locals("validatedChapterUpdate", reqData)
		return c.Next()
	}
}

func CreateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		chapterID, ok := parseIDParam(c, "chapter_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Chapter ID!", nil)
		}

		reqData := new(struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			ContentType string `json:"content_type"`
			TextContent string `json:"text_content"`
			VideoURL    string `json:"video_url"`
			ImageURL    string `json:"image_url"`
			OrderIndex  *int   `json:"order_index"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		}

		switch reqData.ContentType {
		case courseModels.LessonTypeText:
			if strings.TrimSpace(reqData.TextContent) == "" {
				errors["text_content"] = "Text content is required for text lessons!"
			}
		case courseModels.LessonTypeVideo:
			if strings.TrimSpace(reqData.VideoURL) == "" {
				errors["video_url"] = "Video URL is required for video lessons!"
			}
		case courseModels.LessonTypeImage:
			if strings.TrimSpace(reqData.ImageURL) == "" {
				errors["image_url"] = "Image URL is required for image lessons!"
			}
		default:
			errors["content_type"] = "Content type must be TEXT, VIDEO or IMAGE!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("chapterID", chapterID)
		c.Locals("validatedLesson", reqData)
		return c.Next()
	}
}

func UpdateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lessonID, ok := parseIDParam(c, "lesson_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Lesson ID!", nil)
		}

		reqData := new(struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			ContentType string `json:"content_type"`
			TextContent string `json:"text_content"`
			VideoURL    string `json:"video_url"`
			ImageURL    string `json:"image_url"`
			OrderIndex  *int   `json:"order_index"`
			IsPublished *bool  `json:"is_published"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.ContentType != "" {
			switch reqData.ContentType {
			case courseModels.LessonTypeText, courseModels.LessonTypeVideo, courseModels.LessonTypeImage:
			default:
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Content type must be TEXT, VIDEO or IMAGE!", nil)
			}
		}

		c.Locals("lessonID", lessonID)
		c.Locals("validatedLessonUpdate", reqData)
		return c.Next()
	}
}

func CreateMCQ() fiber.Handler {
	return func(c *fiber.Ctx) error {
		chapterID, ok := parseIDParam(c, "chapter_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Chapter ID!", nil)
		}

		reqData := new(struct {
			QuestionText string `json:"question_text"`
			OrderIndex   *int   `json:"order_index"`
			Options      []struct {
				OptionText string `json:"option_text"`
				IsCorrect  bool   `json:"is_correct"`
			} `json:"options"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.QuestionText) == "" {
			errors["question_text"] = "Question text is required!"
		}

		if len(reqData.Options) < 2 {
			errors["options"] = "A question needs at least 2 options!"
		} else {
			correct := 0
			for _, opt := range reqData.Options {
				if strings.TrimSpace(opt.OptionText) == "" {
					errors["options"] = "Option text cannot be empty!"
				}
				if opt.IsCorrect {
					correct++
				}
			}
			if correct == 0 {
				errors["options"] = "A question needs at least one correct option!"
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("chapterID", chapterID)
		c.Locals("validatedMCQ", reqData)
		return c.Next()
	}
}

func UpdateMCQ() fiber.Handler {
	return func(c *fiber.Ctx) error {
		questionID, ok := parseIDParam(c, "question_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Question ID!", nil)
		}

		reqData := new(struct {
			QuestionText string `json:"question_text"`
			OrderIndex   *int   `json:"order_index"`
			IsActive     *bool  `json:"is_active"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		c.Locals("questionID", questionID)
		c.Locals("validatedMCQUpdate", reqData)
		return c.Next()
	}
}

func EnrolledUsersQuery() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		page := c.QueryInt("page", 1)
		limit := c.QueryInt("limit", 10)
		if page < 1 || limit < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Page and limit must be greater than 0!", nil)
		}

		progressFilter := c.Query("progress_filter")
		switch progressFilter {
		case "", "completed", "in_progress", "not_started":
		default:
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Progress filter must be completed, in_progress or not_started!", nil)
		}

		reqData := new(struct {
			Page           *int   `json:"page"`
			Limit          *int   `json:"limit"`
			Search         string `json:"search"`
			ProgressFilter string `json:"progress_filter"`
			HasCertificate *bool  `json:"has_certificate"`
		})
		reqData.Page = &page
		reqData.Limit = &limit
		reqData.Search = strings.TrimSpace(c.Query("search"))
		reqData.ProgressFilter = progressFilter

		switch c.Query("has_certificate") {
		case "true":
			v := true
			reqData.HasCertificate = &v
		case "false":
			v := false
			reqData.HasCertificate = &v
		}

		c.Locals("courseID", courseID)
		c.Locals("validatedEnrolledUsersQuery", reqData)
		return c.Next()
	}
}

func PaginationQuery() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page := c.QueryInt("page", 1)
		limit := c.QueryInt("limit", 10)
		if page < 1 || limit < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Page and limit must be greater than 0!", nil)
		}

		reqData := new(struct {
			Page  *int `json:"page"`
			Limit *int `json:"limit"`
		})
		reqData.Page = &page
		reqData.Limit = &limit

		c.Locals("validatedList", reqData)
		return c.Next()
	}
}

func AuditLogQuery() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page := c.QueryInt("page", 1)
		limit := c.QueryInt("limit", 10)
		if page < 1 || limit < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Page and limit must be greater than 0!", nil)
		}

		reqData := new(struct {
			Page   *int   `json:"page"`
			Limit  *int   `json:"limit"`
			Action string `json:"action"`
		})
		reqData.Page = &page
		reqData.Limit = &limit
		reqData.Action = strings.TrimSpace(c.Query("action"))

		c.Locals("validatedAuditLogQuery", reqData)
		return c.Next()
	}
}
