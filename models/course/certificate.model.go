package course

import (
	"time"

	"gorm.io/gorm"
)

// CertificateStatus enum values
const (
	CertStatusPending                   = "PENDING"
	CertStatusAdminApproved             = "ADMIN_APPROVED"
	CertStatusAdminRejected             = "ADMIN_REJECTED"
	CertStatusWaitForAdminApproval      = "WAIT_FOR_ADMIN_APPROVAL"
	CertStatusWaitForSuperAdminApproval = "WAIT_FOR_SUPERADMIN_APPROVAL"
	CertStatusSuperAdminRejected        = "SUPERADMIN_REJECTED"
	CertStatusIssued                    = "ISSUED"
	CertStatusRevoked                   = "REVOKED"
)

// Certificate represents a course completion certificate. At most one row
// exists per (user, course); the unique index is the authoritative guard
// against the check-then-insert race in the issuance pipeline.
type Certificate struct {
	gorm.Model
	UserID          uint       `json:"user_id" gorm:"index;uniqueIndex:idx_certificate_user_course;not null"`
	CourseID        uint       `json:"course_id" gorm:"index;uniqueIndex:idx_certificate_user_course;not null"`
	CertificateCode string     `json:"certificate_code" gorm:"unique;not null"` // Public verification key
	ArtifactURL     string     `json:"artifact_url"`
	Status          string     `json:"status" gorm:"type:varchar(30);default:'PENDING'"`
	IssuedAt        time.Time  `json:"issued_at"`
	DownloadCount   int        `json:"download_count" gorm:"default:0"`
	EmailCount      int        `json:"email_count" gorm:"default:0"`
	RevokedReason   *string    `json:"revoked_reason"`
	RevokedAt       *time.Time `json:"revoked_at"`
	IsDeleted       bool       `gorm:"default:false"`
}

// RejectedStatuses lists the terminal rejection states
var RejectedStatuses = []string{CertStatusAdminRejected, CertStatusSuperAdminRejected}

// IsRejectedStatus reports whether s is one of the rejection states
func IsRejectedStatus(s string) bool {
	return s == CertStatusAdminRejected || s == CertStatusSuperAdminRejected
}
