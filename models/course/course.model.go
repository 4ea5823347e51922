package course

import "gorm.io/gorm"

// CourseStatus enum values
const (
	CourseStatusDraft    = "DRAFT"
	CourseStatusActive   = "ACTIVE"
	CourseStatusInactive = "INACTIVE"
)

// Course represents a learning course
type Course struct {
	gorm.Model
	Title        string `json:"title"`
	Description  string `json:"description"`
	CreatorID    uint   `json:"creator_id" gorm:"index;not null"` // Admin or super admin who owns the course
	Duration     int64  `json:"duration" gorm:"default:0"`        // duration in hours
	Status       string `json:"status" gorm:"default:'DRAFT'"`    // DRAFT, ACTIVE, INACTIVE
	ThumbnailURL string `json:"thumbnail_url"`
	IsPublished  bool   `json:"is_published" gorm:"default:false"`
	IsDeleted    bool   `gorm:"default:false"`
}
