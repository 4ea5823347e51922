package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all user-facing course routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/courses")

	// Course listing and details (published courses)
	courseGroup.Get("/list", middleware.JWTMiddleware, validators.CourseList(), controllers.GetAllCourses)
	courseGroup.Get("/:id", middleware.JWTMiddleware, validators.CourseID(), controllers.GetCourseDetails)

	// Enrollment
	courseGroup.Post("/:id/enroll", middleware.JWTMiddleware, validators.EnrollCourse(), controllers.EnrollInCourse)

	// Lessons
	courseGroup.Get("/:id/chapters/:chapter_id/lessons", middleware.JWTMiddleware, validators.CourseChapter(), controllers.GetChapterLessons)
	courseGroup.Post("/:id/lessons/:lesson_id/complete", middleware.JWTMiddleware, validators.CourseLesson(), controllers.CompleteLesson)

	// Chapter quizzes
	courseGroup.Get("/:id/chapters/:chapter_id/mcq", middleware.JWTMiddleware, validators.CourseChapter(), controllers.GetChapterMCQs)
	courseGroup.Post("/:id/chapters/:chapter_id/mcq/submit", middleware.JWTMiddleware, validators.CourseChapter(), controllers.SubmitChapterMCQ)

	// Progress tracking
	courseGroup.Get("/:id/progress", middleware.JWTMiddleware, validators.CourseID(), controllers.GetCourseProgress)

	// Certificate request
	courseGroup.Post("/:id/certificate/request", middleware.JWTMiddleware, validators.CourseID(), controllers.RequestCertificate)

	// User enrollments and certificates
	userGroup := app.Group("/user")
	userGroup.Get("/enrollments", middleware.JWTMiddleware, validators.EnrollmentList(), controllers.GetEnrollments)
	userGroup.Get("/certificates", middleware.JWTMiddleware, controllers.GetUserCertificates)
}
