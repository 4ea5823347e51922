package course

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditAction enum values
const (
	AuditActionCertIssued     = "CERTIFICATE_ISSUED"
	AuditActionCertApproved   = "CERTIFICATE_APPROVED"
	AuditActionCertRejected   = "CERTIFICATE_REJECTED"
	AuditActionCertRevoked    = "CERTIFICATE_REVOKED"
	AuditActionCertReinstated = "CERTIFICATE_REINSTATED"
	AuditActionCertEmailed    = "CERTIFICATE_EMAILED"
	AuditActionCertDownloaded = "CERTIFICATE_DOWNLOADED"
)

// AuditLog is the append-only record of state-changing actions. Course title
// and actor name are snapshotted so history survives course or user deletion.
type AuditLog struct {
	gorm.Model
	CourseID      uint           `json:"course_id" gorm:"index;not null"`
	CourseTitle   string         `json:"course_title" gorm:"type:varchar(255)"`
	Action        string         `json:"action" gorm:"type:varchar(40);not null;index"`
	ActorID       uint           `json:"actor_id" gorm:"not null"`
	ActorName     string         `json:"actor_name" gorm:"type:varchar(100)"`
	ChangedFields datatypes.JSON `json:"changed_fields"` // field -> {old, new} or action metadata
	ActiveStatus  *bool          `json:"active_status"`  // tri-state: nil when not applicable
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
