package course

import (
	"time"

	"gorm.io/gorm"
)

// EnrollmentStatus enum values
const (
	EnrollmentEnrolled   = "ENROLLED"
	EnrollmentInProgress = "IN_PROGRESS"
	EnrollmentCompleted  = "COMPLETED"
)

// Enrollment tracks a user's enrollment in a course with progress
type Enrollment struct {
	gorm.Model
	UserID            uint       `json:"user_id" gorm:"index;uniqueIndex:idx_enrollment_user_course;not null"`
	CourseID          uint       `json:"course_id" gorm:"index;uniqueIndex:idx_enrollment_user_course;not null"`
	BatchTag          string     `json:"batch_tag" gorm:"type:varchar(50);default:''"`
	Status            string     `json:"status" gorm:"default:'ENROLLED'"` // ENROLLED, IN_PROGRESS, COMPLETED
	Progress          float64    `json:"progress" gorm:"default:0"`        // Completion percentage (0-100)
	CompletedChapters int        `json:"completed_chapters" gorm:"default:0"`
	TotalChapters     int        `json:"total_chapters" gorm:"default:0"`
	EnrolledAt        time.Time  `json:"enrolled_at"`
	CompletedAt       *time.Time `json:"completed_at"`
	IsDeleted         bool       `gorm:"default:false"`
}
