package certificateRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	"lms/models"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCertificateRoutes sets up certificate lifecycle routes
func SetupCertificateRoutes(app *fiber.App) {
	adminOnly := middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)

	certGroup := app.Group("/certificates")

	// Public verification, no auth
	certGroup.Get("/verify/:code", controllers.VerifyCertificate)

	// Authenticated download for students and admins
	certGroup.Get("/:certificate_id/download", middleware.JWTMiddleware, validators.CertificateID(), controllers.DownloadCertificate)

	// Approval state machine entry points
	certGroup.Post("/approve", middleware.JWTMiddleware, adminOnly, validators.ApproveCertificate(), controllers.ApproveCertificateHandler)
	certGroup.Post("/reject", middleware.JWTMiddleware, adminOnly, validators.RejectCertificates(), controllers.RejectCertificatesHandler)

	// Lifecycle management
	certGroup.Post("/:certificate_id/send-email", middleware.JWTMiddleware, adminOnly, validators.CertificateID(), controllers.SendCertificateEmail)
	certGroup.Post("/:certificate_id/revoke", middleware.JWTMiddleware, adminOnly, validators.RevokeCertificate(), controllers.RevokeCertificateHandler)
	certGroup.Post("/:certificate_id/reinstate", middleware.JWTMiddleware, adminOnly, validators.CertificateID(), controllers.ReinstateCertificateHandler)
	certGroup.Post("/bulk", middleware.JWTMiddleware, adminOnly, validators.BulkCertificateAction(), controllers.BulkCertificateAction)
}
