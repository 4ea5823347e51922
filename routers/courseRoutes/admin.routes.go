package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	"lms/models"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up course management routes for admins
func SetupAdminCourseRoutes(app *fiber.App) {
	adminOnly := middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)

	adminGroup := app.Group("/admin", middleware.JWTMiddleware, adminOnly)

	// Course management
	adminGroup.Post("/courses", validators.CreateCourse(), controllers.AdminCreateCourse)
	adminGroup.Get("/courses", validators.CourseList(), controllers.AdminGetCourses)
	adminGroup.Put("/courses/:id", validators.UpdateCourse(), controllers.AdminUpdateCourse)
	adminGroup.Post("/courses/:id/publish", validators.CourseID(), controllers.AdminPublishCourse)
	adminGroup.Delete("/courses/:id", validators.CourseID(), controllers.AdminDeleteCourse)

	// Chapter management
	adminGroup.Post("/courses/:id/chapters", validators.CreateChapter(), controllers.AdminCreateChapter)
	adminGroup.Get("/courses/:id/chapters", validators.CourseID(), controllers.AdminGetChapters)
	adminGroup.Put("/chapters/:chapter_id", validators.UpdateChapter(), controllers.AdminUpdateChapter)
	adminGroup.Delete("/chapters/:chapter_id", validators.ChapterID(), controllers.AdminDeleteChapter)

	// Lesson management
	adminGroup.Post("/chapters/:chapter_id/lessons", validators.CreateLesson(), controllers.AdminCreateLesson)
	adminGroup.Put("/lessons/:lesson_id", validators.UpdateLesson(), controllers.AdminUpdateLesson)
	adminGroup.Delete("/lessons/:lesson_id", validators.LessonID(), controllers.AdminDeleteLesson)

	// Quiz management
	adminGroup.Post("/chapters/:chapter_id/mcq", validators.CreateMCQ(), controllers.AdminCreateMCQ)
	adminGroup.Get("/chapters/:chapter_id/mcq", validators.ChapterID(), controllers.AdminGetChapterMCQs)
	adminGroup.Put("/mcq/:question_id", validators.UpdateMCQ(), controllers.AdminUpdateMCQ)
	adminGroup.Delete("/mcq/:question_id", validators.QuestionID(), controllers.AdminDeleteMCQ)

	// Dashboards
	adminGroup.Get("/certificates/pending", validators.PaginationQuery(), controllers.AdminGetPendingCertificates)
	adminGroup.Get("/audit-logs", validators.AuditLogQuery(), controllers.AdminGetAuditLogs)
	adminGroup.Get("/courses/:id/users/:user_id/progress", validators.CourseUser(), controllers.AdminGetStudentProgress)

	// Enrollment overview and admin-triggered issuance live on the course
	// paths themselves, so the role gate is applied per route
	app.Get("/courses/:id/enrolled-users", middleware.JWTMiddleware, adminOnly, validators.EnrolledUsersQuery(), controllers.AdminGetEnrolledUsers)
	app.Post("/courses/:id/users/:user_id/certificate", middleware.JWTMiddleware, adminOnly, validators.CourseUser(), controllers.AdminIssueCertificate)
}
