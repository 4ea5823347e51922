package controllers

import (
	"errors"
	"fmt"
	"time"

	"lms/config"
	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrCourseNotFound = errors.New("course not found")
)

// Artifacts is the artifact generator the HTTP handlers use, set in main
var Artifacts utils.ArtifactGenerator

// IssueResult is the outcome of an issuance call
type IssueResult struct {
	AlreadyExists bool
	Certificate   *courseModels.Certificate
}

// verificationURL builds the public link embedding a certificate code
func verificationURL(code string) string {
	return config.AppConfig.BaseURL + "/certificates/verify/" + code
}

// IssueCertificate creates at most one certificate per (user, course). It is
// idempotent: when a certificate already exists the call reports it instead
// of creating another. The application-level existence check is advisory; the
// unique index on (user_id, course_id) is the authoritative guard, and an
// insert conflict is resolved by re-fetching the winning row.
//
// actor is the user performing the action for audit purposes; nil means the
// system issued the certificate on completion detection.
func IssueCertificate(db *gorm.DB, gen utils.ArtifactGenerator, mailer utils.Notifier, userID, courseID uint, actor *models.User) (*IssueResult, error) {
	var existing courseModels.Certificate
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&existing).Error; err == nil {
		return &IssueResult{AlreadyExists: true, Certificate: &existing}, nil
	}

	var user models.User
	if err := db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return nil, ErrUserNotFound
	}

	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return nil, ErrCourseNotFound
	}

	code := uuid.NewString()
	verifyURL := verificationURL(code)
	issuedAt := time.Now()

	// Artifact generation must succeed before anything is persisted
	artifact, err := gen.Generate(user.Name, course.Title, code, issuedAt, verifyURL)
	if err != nil {
		return nil, fmt.Errorf("certificate artifact generation failed: %w", err)
	}

	status := courseModels.CertStatusIssued
	if config.AppConfig.CertApprovalRequired {
		status = courseModels.CertStatusPending
	}

	cert := courseModels.Certificate{
		UserID:          userID,
		CourseID:        courseID,
		CertificateCode: code,
		ArtifactURL:     artifact.ArtifactURL,
		Status:          status,
		IssuedAt:        issuedAt,
	}

	if err := db.Create(&cert).Error; err != nil {
		// A concurrent call may have won the insert race; the unique index
		// rejected this row, so re-fetch the persisted one
		var winner courseModels.Certificate
		if ferr := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&winner).Error; ferr == nil {
			return &IssueResult{AlreadyExists: true, Certificate: &winner}, nil
		}
		return nil, err
	}

	actorID := uint(0)
	actorName := "SYSTEM"
	if actor != nil {
		actorID = actor.ID
		actorName = actor.Name
	}
	RecordAuditLog(db, course.ID, course.Title, courseModels.AuditActionCertIssued, actorID, actorName, map[string]interface{}{
		"certificate_id":   cert.ID,
		"certificate_code": cert.CertificateCode,
		"student_name":     user.Name,
		"status":           cert.Status,
	}, nil)

	// Best effort: delivery failure never rolls back the certificate
	if mailer != nil && user.Email != "" {
		mailer.CertificateIssued(user.Email, user.Name, course.Title, cert.ArtifactURL, verifyURL)
	}

	return &IssueResult{AlreadyExists: false, Certificate: &cert}, nil
}
