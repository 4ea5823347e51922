package course

import "gorm.io/gorm"

// Chapter represents a section within a course. Chapters unlock in order:
// a chapter is locked until the previous chapter's MCQ has been passed.
type Chapter struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index" gorm:"default:0"` // Chapter order in course
	IsDeleted   bool   `gorm:"default:false"`
}
