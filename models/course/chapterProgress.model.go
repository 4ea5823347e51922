package course

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ChapterProgress stores a user's progress within a single chapter.
// CompletedLessons holds the set of completed lesson ids as a JSON list.
type ChapterProgress struct {
	gorm.Model
	UserID           uint           `json:"user_id" gorm:"index;uniqueIndex:idx_progress_user_chapter;not null"`
	CourseID         uint           `json:"course_id" gorm:"index;not null"`
	ChapterID        uint           `json:"chapter_id" gorm:"uniqueIndex:idx_progress_user_chapter;not null"`
	CompletedLessons datatypes.JSON `json:"completed_lessons"`
	LessonCompleted  bool           `json:"lesson_completed" gorm:"default:false"` // All lessons in the chapter done
	MCQPassed        bool           `json:"mcq_passed" gorm:"default:false"`
	Completed        bool           `json:"completed" gorm:"default:false"` // Lessons done and MCQ passed
	IsDeleted        bool           `gorm:"default:false"`
}

// CompletedLessonIDs decodes the stored lesson id list. A missing or corrupt
// value decodes as an empty set.
func (p *ChapterProgress) CompletedLessonIDs() []uint {
	if len(p.CompletedLessons) == 0 {
		return nil
	}
	var ids []uint
	if err := json.Unmarshal(p.CompletedLessons, &ids); err != nil {
		return nil
	}
	return ids
}

// SetCompletedLessonIDs encodes the lesson id list back into the JSON column
func (p *ChapterProgress) SetCompletedLessonIDs(ids []uint) {
	encoded, err := json.Marshal(ids)
	if err != nil {
		return
	}
	p.CompletedLessons = datatypes.JSON(encoded)
}
