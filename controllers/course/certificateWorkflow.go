package controllers

import (
	"errors"
	"time"

	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"

	"gorm.io/gorm"
)

// ActorTier is the closed set of privilege levels the approval engine
// distinguishes. Role strings collapse into these two tiers.
type ActorTier int

const (
	TierAdmin ActorTier = iota
	TierSuperAdmin
)

// TierForRole maps a user's role to its approval tier
func TierForRole(role string) ActorTier {
	if role == models.RoleSuperAdmin {
		return TierSuperAdmin
	}
	return TierAdmin
}

var (
	ErrCertificateNotFound = errors.New("certificate not found")
	ErrAlreadyIssued       = errors.New("certificate already issued")
	ErrAlreadyRevoked      = errors.New("certificate already revoked")
	ErrRejectedCertificate = errors.New("cannot approve a rejected certificate")
	ErrInvalidTransition   = errors.New("invalid certificate status transition")
	ErrNoneRejectable      = errors.New("no certificates eligible for rejection")
	ErrStatusChanged       = errors.New("certificate status changed concurrently")
)

// approvalTable maps (current status, actor tier) to the next status for an
// approve action. Missing entries are invalid transitions. A PENDING approval
// escalates to the other tier for cross-checking; anything mid-chain issues.
var approvalTable = map[string]map[ActorTier]string{
	courseModels.CertStatusPending: {
		TierSuperAdmin: courseModels.CertStatusWaitForAdminApproval,
		TierAdmin:      courseModels.CertStatusWaitForSuperAdminApproval,
	},
	courseModels.CertStatusAdminApproved: {
		TierSuperAdmin: courseModels.CertStatusIssued,
		TierAdmin:      courseModels.CertStatusIssued,
	},
	courseModels.CertStatusWaitForAdminApproval: {
		TierSuperAdmin: courseModels.CertStatusIssued,
		TierAdmin:      courseModels.CertStatusIssued,
	},
	courseModels.CertStatusWaitForSuperAdminApproval: {
		TierSuperAdmin: courseModels.CertStatusIssued,
		TierAdmin:      courseModels.CertStatusIssued,
	},
}

// NextApprovalStatus computes the status an approve action moves a
// certificate into. creatorIsSuperAdmin short-circuits the escalation chain:
// a course owned by the top-privilege role needs no cross-check.
func NextApprovalStatus(current string, actor ActorTier, creatorIsSuperAdmin bool) (string, error) {
	if current == courseModels.CertStatusIssued {
		return "", ErrAlreadyIssued
	}
	if courseModels.IsRejectedStatus(current) {
		return "", ErrRejectedCertificate
	}
	if creatorIsSuperAdmin {
		return courseModels.CertStatusIssued, nil
	}
	row, ok := approvalTable[current]
	if !ok {
		return "", ErrInvalidTransition
	}
	return row[actor], nil
}

// transitionStatus performs a conditional status update: the write only lands
// if the row still holds the status the decision was made against.
func transitionStatus(db *gorm.DB, certID uint, fromStatus string, updates map[string]interface{}) error {
	res := db.Model(&courseModels.Certificate{}).
		Where("id = ? AND status = ?", certID, fromStatus).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusChanged
	}
	return nil
}

// ApproveCertificate advances a certificate along the approval chain on
// behalf of actor and returns the updated row
func ApproveCertificate(db *gorm.DB, mailer utils.Notifier, certID uint, actor *models.User) (*courseModels.Certificate, error) {
	var cert courseModels.Certificate
	if err := db.Where("id = ? AND is_deleted = ?", certID, false).First(&cert).Error; err != nil {
		return nil, ErrCertificateNotFound
	}

	var course courseModels.Course
	creatorIsSuperAdmin := false
	creatorName := ""
	if err := db.Where("id = ?", cert.CourseID).First(&course).Error; err == nil {
		var creator models.User
		if err := db.Where("id = ?", course.CreatorID).First(&creator).Error; err == nil {
			creatorIsSuperAdmin = creator.Role == models.RoleSuperAdmin
			creatorName = creator.Name
		}
	}

	next, err := NextApprovalStatus(cert.Status, TierForRole(actor.Role), creatorIsSuperAdmin)
	if err != nil {
		return nil, err
	}

	oldStatus := cert.Status
	if err := transitionStatus(db, cert.ID, oldStatus, map[string]interface{}{"status": next}); err != nil {
		return nil, err
	}
	cert.Status = next

	var student models.User
	db.Where("id = ?", cert.UserID).First(&student)

	RecordAuditLog(db, course.ID, course.Title, courseModels.AuditActionCertApproved, actor.ID, actor.Name, map[string]interface{}{
		"certificate_id":   cert.ID,
		"certificate_code": cert.CertificateCode,
		"student_name":     student.Name,
		"status":           fieldChange(oldStatus, next),
		"approving_role":   actor.Role,
		"course_creator":   creatorName,
	}, nil)

	if next == courseModels.CertStatusIssued && mailer != nil && student.Email != "" {
		verifyURL := verificationURL(cert.CertificateCode)
		mailer.CertificateApproved(student.Email, student.Name, course.Title, verifyURL)
	}

	return &cert, nil
}

// RejectOutcome reports what happened to one certificate in a bulk reject
type RejectOutcome struct {
	CertificateID uint   `json:"certificate_id"`
	Status        string `json:"status"`
	Rejected      bool   `json:"rejected"`
	Detail        string `json:"detail,omitempty"`
}

// RejectResult collects the per-item outcomes of a bulk reject
type RejectResult struct {
	Rejected []uint          `json:"rejected"`
	Skipped  []uint          `json:"skipped"`
	Outcomes []RejectOutcome `json:"outcomes"`
}

// RejectCertificates rejects a batch of certificates. Certificates that are
// already ISSUED or REVOKED are skipped untouched; a per-item outcome set is
// returned either way. Returns ErrNoneRejectable when nothing was eligible.
// One rejection email goes out per call, addressed from the first rejected
// certificate's student and course.
func RejectCertificates(db *gorm.DB, mailer utils.Notifier, certIDs []uint, actor *models.User, reason string) (*RejectResult, error) {
	target := courseModels.CertStatusAdminRejected
	if TierForRole(actor.Role) == TierSuperAdmin {
		target = courseModels.CertStatusSuperAdminRejected
	}

	result := &RejectResult{}
	var first *courseModels.Certificate

	for _, id := range certIDs {
		var cert courseModels.Certificate
		if err := db.Where("id = ? AND is_deleted = ?", id, false).First(&cert).Error; err != nil {
			result.Skipped = append(result.Skipped, id)
			result.Outcomes = append(result.Outcomes, RejectOutcome{CertificateID: id, Rejected: false, Detail: "not found"})
			continue
		}

		if cert.Status == courseModels.CertStatusIssued || cert.Status == courseModels.CertStatusRevoked {
			result.Skipped = append(result.Skipped, id)
			result.Outcomes = append(result.Outcomes, RejectOutcome{CertificateID: id, Status: cert.Status, Rejected: false, Detail: "already " + cert.Status})
			continue
		}

		oldStatus := cert.Status
		if err := transitionStatus(db, cert.ID, oldStatus, map[string]interface{}{"status": target}); err != nil {
			result.Skipped = append(result.Skipped, id)
			result.Outcomes = append(result.Outcomes, RejectOutcome{CertificateID: id, Status: cert.Status, Rejected: false, Detail: err.Error()})
			continue
		}
		cert.Status = target

		result.Rejected = append(result.Rejected, id)
		result.Outcomes = append(result.Outcomes, RejectOutcome{CertificateID: id, Status: target, Rejected: true})

		var course courseModels.Course
		db.Where("id = ?", cert.CourseID).First(&course)
		var student models.User
		db.Where("id = ?", cert.UserID).First(&student)

		RecordAuditLog(db, course.ID, course.Title, courseModels.AuditActionCertRejected, actor.ID, actor.Name, map[string]interface{}{
			"certificate_id":   cert.ID,
			"certificate_code": cert.CertificateCode,
			"student_name":     student.Name,
			"status":           fieldChange(oldStatus, target),
			"rejecting_role":   actor.Role,
			"reason":           reason,
		}, nil)

		if first == nil {
			c := cert
			first = &c
		}
	}

	if len(result.Rejected) == 0 {
		return result, ErrNoneRejectable
	}

	if mailer != nil && first != nil {
		var course courseModels.Course
		db.Where("id = ?", first.CourseID).First(&course)
		var student models.User
		db.Where("id = ?", first.UserID).First(&student)
		if student.Email != "" {
			mailer.CertificateRejected(student.Email, student.Name, course.Title, reason)
		}
	}

	return result, nil
}

// RevokeCertificate revokes a certificate from any state except REVOKED
func RevokeCertificate(db *gorm.DB, mailer utils.Notifier, certID uint, actor *models.User, reason string) (*courseModels.Certificate, error) {
	var cert courseModels.Certificate
	if err := db.Where("id = ? AND is_deleted = ?", certID, false).First(&cert).Error; err != nil {
		return nil, ErrCertificateNotFound
	}

	if cert.Status == courseModels.CertStatusRevoked {
		return nil, ErrAlreadyRevoked
	}

	oldStatus := cert.Status
	now := time.Now()
	err := transitionStatus(db, cert.ID, oldStatus, map[string]interface{}{
		"status":         courseModels.CertStatusRevoked,
		"revoked_reason": reason,
		"revoked_at":     now,
	})
	if err != nil {
		return nil, err
	}
	cert.Status = courseModels.CertStatusRevoked
	cert.RevokedReason = &reason
	cert.RevokedAt = &now

	var course courseModels.Course
	db.Where("id = ?", cert.CourseID).First(&course)
	var student models.User
	db.Where("id = ?", cert.UserID).First(&student)

	RecordAuditLog(db, course.ID, course.Title, courseModels.AuditActionCertRevoked, actor.ID, actor.Name, map[string]interface{}{
		"certificate_id":   cert.ID,
		"certificate_code": cert.CertificateCode,
		"student_name":     student.Name,
		"status":           fieldChange(oldStatus, courseModels.CertStatusRevoked),
		"reason":           reason,
	}, nil)

	if mailer != nil && student.Email != "" {
		mailer.CertificateRevoked(student.Email, student.Name, course.Title, reason)
	}

	return &cert, nil
}

// ReinstateCertificate restores a revoked certificate to ISSUED and clears
// the revocation fields
func ReinstateCertificate(db *gorm.DB, mailer utils.Notifier, certID uint, actor *models.User) (*courseModels.Certificate, error) {
	var cert courseModels.Certificate
	if err := db.Where("id = ? AND is_deleted = ?", certID, false).First(&cert).Error; err != nil {
		return nil, ErrCertificateNotFound
	}

	if cert.Status == courseModels.CertStatusIssued {
		return nil, ErrAlreadyIssued
	}
	if cert.Status != courseModels.CertStatusRevoked {
		return nil, ErrInvalidTransition
	}

	err := transitionStatus(db, cert.ID, courseModels.CertStatusRevoked, map[string]interface{}{
		"status":         courseModels.CertStatusIssued,
		"revoked_reason": nil,
		"revoked_at":     nil,
	})
	if err != nil {
		return nil, err
	}
	cert.Status = courseModels.CertStatusIssued
	cert.RevokedReason = nil
	cert.RevokedAt = nil

	var course courseModels.Course
	db.Where("id = ?", cert.CourseID).First(&course)
	var student models.User
	db.Where("id = ?", cert.UserID).First(&student)

	RecordAuditLog(db, course.ID, course.Title, courseModels.AuditActionCertReinstated, actor.ID, actor.Name, map[string]interface{}{
		"certificate_id":   cert.ID,
		"certificate_code": cert.CertificateCode,
		"student_name":     student.Name,
		"status":           fieldChange(courseModels.CertStatusRevoked, courseModels.CertStatusIssued),
	}, nil)

	if mailer != nil && student.Email != "" {
		mailer.CertificateReinstated(student.Email, student.Name, course.Title)
	}

	return &cert, nil
}
