package controllers

import (
	"errors"
	"strings"

	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// RequestCertificate lets a student trigger issuance for a completed course
func RequestCertificate(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)

	// Check enrollment and completion
	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
	}

	if enrollment.Status != courseModels.EnrollmentCompleted {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Please complete the course before requesting a certificate!", nil)
	}

	result, err := IssueCertificate(database.Database.Db, Artifacts, utils.Mail, userID, uint(courseID), &user)
	if err != nil {
		return issuanceErrorResponse(c, err)
	}
	if result.AlreadyExists {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Certificate already exists!", fiber.Map{
			"certificate": result.Certificate,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate issued successfully!", result.Certificate)
}

// AdminIssueCertificate issues a certificate for a student on admin request
func AdminIssueCertificate(c *fiber.Ctx) error {
	actor, ok := c.Locals("currentUser").(*models.User)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)
	targetUserID := c.Locals("targetUserID").(int)

	report, err := ComputeCourseProgress(database.Database.Db, nil, nil, uint(targetUserID), uint(courseID))
	if err != nil {
		if err == ErrCourseNotFound {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to compute progress!", nil)
	}
	if !report.CourseCompleted {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Student has not completed this course!", nil)
	}

	result, err := IssueCertificate(database.Database.Db, Artifacts, utils.Mail, uint(targetUserID), uint(courseID), actor)
	if err != nil {
		return issuanceErrorResponse(c, err)
	}
	if result.AlreadyExists {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Certificate already exists!", fiber.Map{
			"certificate": result.Certificate,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate issued successfully!", result.Certificate)
}

func issuanceErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	case errors.Is(err, ErrCourseNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	default:
		// Artifact generation and reachability failures are upstream errors
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Failed to generate certificate!", nil)
	}
}

// VerifyCertificate is the public verification endpoint keyed by code
func VerifyCertificate(c *fiber.Ctx) error {
	code := strings.TrimSpace(c.Params("code"))
	if code == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Certificate code is required!", nil)
	}

	var cert courseModels.Certificate
	if err := database.Database.Db.Where("certificate_code = ? AND is_deleted = ?", code, false).First(&cert).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate not found!", nil)
	}

	var course courseModels.Course
	database.Database.Db.Where("id = ?", cert.CourseID).First(&course)
	var student models.User
	database.Database.Db.Where("id = ?", cert.UserID).First(&student)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate verified successfully!", fiber.Map{
		"certificate_code": cert.CertificateCode,
		"student_name":     student.Name,
		"course_title":     course.Title,
		"status":           cert.Status,
		"issued_at":        cert.IssuedAt,
		"artifact_url":     cert.ArtifactURL,
		"revoked_at":       cert.RevokedAt,
	})
}

// DownloadCertificate returns the artifact link and counts the download
func DownloadCertificate(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	certID := c.Locals("certificateID").(int)

	var cert courseModels.Certificate
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", certID, false).First(&cert).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate not found!", nil)
	}

	// Students can only download their own certificate; admins can download any
	var requester models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&requester).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}
	if cert.UserID != userID && requester.Role == models.RoleUser {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You can only download your own certificate!", nil)
	}

	database.Database.Db.Model(&courseModels.Certificate{}).Where("id = ?", cert.ID).
		UpdateColumn("download_count", gorm.Expr("download_count + 1"))
	cert.DownloadCount++

	var course courseModels.Course
	database.Database.Db.Where("id = ?", cert.CourseID).First(&course)

	RecordAuditLog(database.Database.Db, course.ID, course.Title, courseModels.AuditActionCertDownloaded, requester.ID, requester.Name, map[string]interface{}{
		"certificate_id":   cert.ID,
		"certificate_code": cert.CertificateCode,
		"download_count":   cert.DownloadCount,
	}, nil)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate download link fetched successfully!", fiber.Map{
		"artifact_url":   cert.ArtifactURL,
		"download_count": cert.DownloadCount,
	})
}

// SendCertificateEmail emails the certificate to its owner and counts the send
func SendCertificateEmail(c *fiber.Ctx) error {
	actor, ok := c.Locals("currentUser").(*models.User)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	certID := c.Locals("certificateID").(int)

	if err := sendCertificateCopy(database.Database.Db, utils.Mail, uint(certID), actor); err != nil {
		if err == ErrCertificateNotFound {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to send certificate email!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate email sent successfully!", nil)
}

// sendCertificateCopy dispatches a certificate copy email and increments the
// email counter. The email itself is best-effort.
func sendCertificateCopy(db *gorm.DB, mailer utils.Notifier, certID uint, actor *models.User) error {
	var cert courseModels.Certificate
	if err := db.Where("id = ? AND is_deleted = ?", certID, false).First(&cert).Error; err != nil {
		return ErrCertificateNotFound
	}

	var course courseModels.Course
	db.Where("id = ?", cert.CourseID).First(&course)
	var student models.User
	db.Where("id = ?", cert.UserID).First(&student)

	if mailer != nil && student.Email != "" {
		mailer.CertificateCopy(student.Email, student.Name, course.Title, cert.ArtifactURL, nil)
	}

	db.Model(&courseModels.Certificate{}).Where("id = ?", cert.ID).
		UpdateColumn("email_count", gorm.Expr("email_count + 1"))

	RecordAuditLog(db, course.ID, course.Title, courseModels.AuditActionCertEmailed, actor.ID, actor.Name, map[string]interface{}{
		"certificate_id":   cert.ID,
		"certificate_code": cert.CertificateCode,
		"student_name":     student.Name,
	}, nil)

	return nil
}

// RevokeCertificateHandler revokes one certificate
func RevokeCertificateHandler(c *fiber.Ctx) error {
	actor, ok := c.Locals("currentUser").(*models.User)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	certID := c.Locals("certificateID").(int)
	reqData, _ := c.Locals("validatedRevoke").(*struct {
		Reason string `json:"reason"`
	})
	reason := "Revoked by administrator"
	if reqData != nil && reqData.Reason != "" {
		reason = reqData.Reason
	}

	cert, err := RevokeCertificate(database.Database.Db, utils.Mail, uint(certID), actor, reason)
	if err != nil {
		return workflowErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate revoked successfully!", cert)
}

// ReinstateCertificateHandler restores a revoked certificate
func ReinstateCertificateHandler(c *fiber.Ctx) error {
	actor, ok := c.Locals("currentUser").(*models.User)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	certID := c.Locals("certificateID").(int)

	cert, err := ReinstateCertificate(database.Database.Db, utils.Mail, uint(certID), actor)
	if err != nil {
		return workflowErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate reinstated successfully!", cert)
}

// ApproveCertificateHandler advances one certificate along the approval chain
func ApproveCertificateHandler(c *fiber.Ctx) error {
	actor, ok := c.Locals("currentUser").(*models.User)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedApprove").(*struct {
		CertificateID uint `json:"certificate_id" validate:"required"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	cert, err := ApproveCertificate(database.Database.Db, utils.Mail, reqData.CertificateID, actor)
	if err != nil {
		return workflowErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate approval processed successfully!", cert)
}

// RejectCertificatesHandler rejects a batch of certificates
func RejectCertificatesHandler(c *fiber.Ctx) error {
	actor, ok := c.Locals("currentUser").(*models.User)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedReject").(*struct {
		CertificateIDs []uint `json:"certificate_ids" validate:"required,min=1"`
		Reason         string `json:"reason" validate:"required"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	result, err := RejectCertificates(database.Database.Db, utils.Mail, reqData.CertificateIDs, actor, reqData.Reason)
	if err != nil {
		if errors.Is(err, ErrNoneRejectable) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "No certificates were eligible for rejection!", result)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to reject certificates!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates rejected successfully!", result)
}

// BulkCertificateAction applies send_email, revoke, or reinstate to a batch.
// Per-item failures never abort the rest of the batch.
func BulkCertificateAction(c *fiber.Ctx) error {
	actor, ok := c.Locals("currentUser").(*models.User)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedBulkAction").(*struct {
		Action         string `json:"action" validate:"required,oneof=send_email revoke reinstate"`
		CertificateIDs []uint `json:"certificate_ids" validate:"required,min=1"`
		Reason         string `json:"reason"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	type BulkOutcome struct {
		CertificateID uint   `json:"certificate_id"`
		Success       bool   `json:"success"`
		Detail        string `json:"detail,omitempty"`
	}

	reason := reqData.Reason
	if reason == "" {
		reason = "Revoked by administrator"
	}

	outcomes := make([]BulkOutcome, 0, len(reqData.CertificateIDs))
	succeeded := 0
	for _, id := range reqData.CertificateIDs {
		var err error
		switch reqData.Action {
		case "send_email":
			err = sendCertificateCopy(database.Database.Db, utils.Mail, id, actor)
		case "revoke":
			_, err = RevokeCertificate(database.Database.Db, utils.Mail, id, actor, reason)
		case "reinstate":
			_, err = ReinstateCertificate(database.Database.Db, utils.Mail, id, actor)
		}

		outcome := BulkOutcome{CertificateID: id, Success: err == nil}
		if err != nil {
			outcome.Detail = err.Error()
		} else {
			succeeded++
		}
		outcomes = append(outcomes, outcome)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Bulk action processed!", fiber.Map{
		"action":    reqData.Action,
		"succeeded": succeeded,
		"failed":    len(outcomes) - succeeded,
		"outcomes":  outcomes,
	})
}

// workflowErrorResponse maps state machine errors onto HTTP statuses
func workflowErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrCertificateNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate not found!", nil)
	case errors.Is(err, ErrAlreadyIssued):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Certificate already issued!", nil)
	case errors.Is(err, ErrAlreadyRevoked):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Certificate already revoked!", nil)
	case errors.Is(err, ErrRejectedCertificate):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Cannot approve a rejected certificate!", nil)
	case errors.Is(err, ErrInvalidTransition):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Invalid certificate status transition!", nil)
	case errors.Is(err, ErrStatusChanged):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Certificate status changed, please retry!", nil)
	default:
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update certificate!", nil)
	}
}

// GetUserCertificates gets all certificates for the current user
func GetUserCertificates(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	type CertificateWithCourse struct {
		courseModels.Certificate
		CourseName string `json:"course_name"`
	}

	var certificates []courseModels.Certificate
	if err := database.Database.Db.Where("user_id = ? AND is_deleted = ?", userID, false).Order("issued_at desc").Find(&certificates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}

	result := make([]CertificateWithCourse, len(certificates))
	for i, cert := range certificates {
		var course courseModels.Course
		database.Database.Db.Where("id = ?", cert.CourseID).First(&course)
		result[i] = CertificateWithCourse{
			Certificate: cert,
			CourseName:  course.Title,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", fiber.Map{
		"certificates": result,
		"total":        len(result),
	})
}
