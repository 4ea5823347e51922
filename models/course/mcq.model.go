package course

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MCQQuestion represents a question in a chapter's end-of-chapter quiz
type MCQQuestion struct {
	gorm.Model
	ChapterID    uint   `json:"chapter_id" gorm:"index;not null"`
	QuestionText string `json:"question_text" gorm:"type:text"`
	OrderIndex   int    `json:"order_index" gorm:"default:0"`
	IsActive     bool   `json:"is_active" gorm:"default:true"`
	IsDeleted    bool   `gorm:"default:false"`
}

// MCQOption represents an option for an MCQ question
type MCQOption struct {
	gorm.Model
	QuestionID uint   `json:"question_id" gorm:"index;not null"`
	OptionText string `json:"option_text"`
	IsCorrect  bool   `json:"is_correct" gorm:"default:false"`
	OrderIndex int    `json:"order_index" gorm:"default:0"`
	IsDeleted  bool   `gorm:"default:false"`
}

// MCQAttempt represents a student's attempt at a chapter quiz
type MCQAttempt struct {
	gorm.Model
	UserID          uint           `json:"user_id" gorm:"index;not null"`
	ChapterID       uint           `json:"chapter_id" gorm:"index;not null"`
	SelectedOptions datatypes.JSON `json:"selected_options"` // question id -> selected option ids
	Score           int            `json:"score"`
	MaxScore        int            `json:"max_score"`
	Passed          bool           `json:"passed" gorm:"default:false"`
	AttemptNumber   int            `json:"attempt_number" gorm:"default:1"`
	IsDeleted       bool           `gorm:"default:false"`
}
