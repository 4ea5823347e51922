package courseValidator

import (
	"strconv"
	"strings"

	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

// parseIDParam validates a positive integer route parameter
func parseIDParam(c *fiber.Ctx, name string) (int, bool) {
	raw := strings.TrimSpace(c.Params(name))
	if raw == "" {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func CourseID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		c.Locals("courseID", courseID)
		return c.Next()
	}
}

func CourseChapter() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		chapterID, ok := parseIDParam(c, "chapter_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Chapter ID!", nil)
		}

		c.Locals("courseID", courseID)
		c.Locals("chapterID", chapterID)
		return c.Next()
	}
}

func CourseLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		lessonID, ok := parseIDParam(c, "lesson_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Lesson ID!", nil)
		}

		c.Locals("courseID", courseID)
		c.Locals("lessonID", lessonID)
		return c.Next()
	}
}

func ChapterID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		chapterID, ok := parseIDParam(c, "chapter_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Chapter ID!", nil)
		}

		c.Locals("chapterID", chapterID)
		return c.Next()
	}
}

func LessonID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lessonID, ok := parseIDParam(c, "lesson_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Lesson ID!", nil)
		}

		c.Locals("lessonID", lessonID)
		return c.Next()
	}
}

func QuestionID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		questionID, ok := parseIDParam(c, "question_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Question ID!", nil)
		}

		c.Locals("questionID", questionID)
		return c.Next()
	}
}

func CourseUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		userID, ok := parseIDParam(c, "user_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid User ID!", nil)
		}

		c.Locals("courseID", courseID)
		c.Locals("targetUserID", userID)
		return c.Next()
	}
}

func EnrollCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		reqData := new(struct {
			BatchTag string `json:"batch_tag"`
		})
		// Body is optional for enrollment
		if len(c.Body()) > 0 {
			if err := c.BodyParser(reqData); err != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
			}
		}

		c.Locals("courseID", courseID)
		c.Locals("validatedEnroll", reqData)
		return c.Next()
	}
}

func EnrollmentList() fiber.Handler {
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

		c.Locals("validatedEnrollmentList", reqData)
		return c.Next()
	}
}

func CourseList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page := c.QueryInt("page", 1)
		limit := c.QueryInt("limit", 10)
		search := strings.TrimSpace(c.Query("search"))

		if page < 1 || limit < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Page and limit must be greater than 0!", nil)
		}

		reqData := new(struct {
			Page   *int   `json:"page"`
			Limit  *int   `json:"limit"`
			Search string `json:"search"`
		})
		reqData.Page = &page
		reqData.Limit = &limit
		reqData.Search = search

		c.Locals("validatedCourseList", reqData)
		return c.Next()
	}
}
