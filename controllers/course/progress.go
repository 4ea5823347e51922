package controllers

import (
	"log"
	"math"
	"time"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ChapterReport is the derived progress state of one chapter for one user
type ChapterReport struct {
	ChapterID           uint   `json:"chapter_id"`
	Title               string `json:"title"`
	OrderIndex          int    `json:"order_index"`
	Locked              bool   `json:"locked"`
	TotalLessons        int    `json:"total_lessons"`
	CompletedLessons    int    `json:"completed_lessons"`
	AllLessonsCompleted bool   `json:"all_lessons_completed"`
	MCQCount            int    `json:"mcq_count"`
	MCQPassed           bool   `json:"mcq_passed"`
	CanAttemptMCQ       bool   `json:"can_attempt_mcq"`
	Completed           bool   `json:"completed"`
}

// ProgressReport aggregates a user's progress across a whole course
type ProgressReport struct {
	CourseID          uint            `json:"course_id"`
	Chapters          []ChapterReport `json:"chapters"`
	TotalChapters     int             `json:"total_chapters"`
	CompletedChapters int             `json:"completed_chapters"`
	OverallProgress   int             `json:"overall_progress"`
	CourseCompleted   bool            `json:"course_completed"`
}

// chapterUnlocked implements the chapter lock rule: the first chapter is
// always unlocked, each later chapter unlocks when the previous chapter's
// MCQ has been passed.
func chapterUnlocked(index int, prevProgress *courseModels.ChapterProgress) bool {
	if index == 0 {
		return true
	}
	return prevProgress != nil && prevProgress.MCQPassed
}

// ComputeCourseProgress derives per-chapter and overall completion state for
// (user, course) from the stored progress rows. It is deterministic for a
// given set of rows and mutates nothing except the completion side effect:
// when the course turns out fully completed, the issuance pipeline runs
// (idempotent, failures logged and swallowed).
func ComputeCourseProgress(db *gorm.DB, gen utils.ArtifactGenerator, mailer utils.Notifier, userID, courseID uint) (*ProgressReport, error) {
	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return nil, ErrCourseNotFound
	}

	var chapters []courseModels.Chapter
	if err := db.Where("course_id = ? AND is_deleted = ?", courseID, false).Order("order_index asc").Find(&chapters).Error; err != nil {
		return nil, err
	}

	var progressRows []courseModels.ChapterProgress
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).Find(&progressRows).Error; err != nil {
		return nil, err
	}
	progressByChapter := make(map[uint]*courseModels.ChapterProgress, len(progressRows))
	for i := range progressRows {
		progressByChapter[progressRows[i].ChapterID] = &progressRows[i]
	}

	report := &ProgressReport{
		CourseID:      courseID,
		TotalChapters: len(chapters),
		Chapters:      make([]ChapterReport, 0, len(chapters)),
	}

	var prevProgress *courseModels.ChapterProgress
	for i, chapter := range chapters {
		var totalLessons int64
		db.Model(&courseModels.Lesson{}).Where("chapter_id = ? AND is_deleted = ? AND is_published = ?", chapter.ID, false, true).Count(&totalLessons)

		var mcqCount int64
		db.Model(&courseModels.MCQQuestion{}).Where("chapter_id = ? AND is_deleted = ? AND is_active = ?", chapter.ID, false, true).Count(&mcqCount)

		progress := progressByChapter[chapter.ID]

		locked := !chapterUnlocked(i, prevProgress)

		completedLessons := 0
		mcqPassed := false
		completed := false
		if progress != nil {
			completedLessons = len(progress.CompletedLessonIDs())
			mcqPassed = progress.MCQPassed
			completed = progress.Completed
		}
		allLessonsCompleted := completedLessons >= int(totalLessons)

		report.Chapters = append(report.Chapters, ChapterReport{
			ChapterID:           chapter.ID,
			Title:               chapter.Title,
			OrderIndex:          chapter.OrderIndex,
			Locked:              locked,
			TotalLessons:        int(totalLessons),
			CompletedLessons:    completedLessons,
			AllLessonsCompleted: allLessonsCompleted,
			MCQCount:            int(mcqCount),
			MCQPassed:           mcqPassed,
			CanAttemptMCQ:       !locked && allLessonsCompleted && !mcqPassed,
			Completed:           completed,
		})

		if completed {
			report.CompletedChapters++
		}
		prevProgress = progress
	}

	if report.TotalChapters > 0 {
		report.OverallProgress = int(math.Round(100 * float64(report.CompletedChapters) / float64(report.TotalChapters)))
	}
	report.CourseCompleted = report.TotalChapters > 0 && report.CompletedChapters == report.TotalChapters

	// Completion side effect: issue the certificate if none exists yet.
	// Failure here never propagates to the progress caller.
	if report.CourseCompleted && gen != nil {
		if _, err := IssueCertificate(db, gen, mailer, userID, courseID, nil); err != nil {
			log.Printf("[CERT] issuance on completion failed for user %d course %d: %v", userID, courseID, err)
		}
	}

	return report, nil
}

// updateEnrollmentProgress refreshes the enrollment aggregates after a
// progress mutation and runs completion detection
func updateEnrollmentProgress(db *gorm.DB, gen utils.ArtifactGenerator, mailer utils.Notifier, userID, courseID uint) {
	report, err := ComputeCourseProgress(db, gen, mailer, userID, courseID)
	if err != nil {
		log.Printf("[PROGRESS] recompute failed for user %d course %d: %v", userID, courseID, err)
		return
	}

	var enrollment courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return
	}

	enrollment.CompletedChapters = report.CompletedChapters
	enrollment.TotalChapters = report.TotalChapters
	enrollment.Progress = float64(report.OverallProgress)

	if report.CourseCompleted {
		enrollment.Status = courseModels.EnrollmentCompleted
		if enrollment.CompletedAt == nil {
			now := time.Now()
			enrollment.CompletedAt = &now
		}
	} else if report.CompletedChapters > 0 {
		enrollment.Status = courseModels.EnrollmentInProgress
	}

	db.Save(&enrollment)
}

// GetCourseProgress returns the user's derived progress for a course
func GetCourseProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	// Check enrollment
	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
	}

	report, err := ComputeCourseProgress(database.Database.Db, Artifacts, utils.Mail, userID, uint(courseID))
	if err != nil {
		if err == ErrCourseNotFound {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to compute progress!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"enrollment": enrollment,
		"progress":   report,
	})
}
