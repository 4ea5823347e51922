package course

import "gorm.io/gorm"

// LessonType enum values
const (
	LessonTypeText  = "TEXT"
	LessonTypeVideo = "VIDEO"
	LessonTypeImage = "IMAGE"
)

// Lesson represents a content item within a chapter
type Lesson struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	ChapterID   uint   `json:"chapter_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ContentType string `json:"content_type" gorm:"default:'TEXT'"` // TEXT, VIDEO, IMAGE
	TextContent string `json:"text_content" gorm:"type:text"`      // For TEXT type
	VideoURL    string `json:"video_url"`                          // For VIDEO type
	ImageURL    string `json:"image_url"`                          // For IMAGE type
	OrderIndex  int    `json:"order_index" gorm:"default:0"`       // Order within chapter
	IsPublished bool   `json:"is_published" gorm:"default:false"`
	IsDeleted   bool   `gorm:"default:false"`
}
