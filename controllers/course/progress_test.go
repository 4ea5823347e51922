package controllers

import (
	"testing"

	"lms/models"
	courseModels "lms/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChapterUnlocked(t *testing.T) {
	assert.True(t, chapterUnlocked(0, nil), "first chapter always unlocked")
	assert.False(t, chapterUnlocked(1, nil), "no progress on previous chapter keeps it locked")
	assert.False(t, chapterUnlocked(1, &courseModels.ChapterProgress{MCQPassed: false}))
	assert.True(t, chapterUnlocked(1, &courseModels.ChapterProgress{MCQPassed: true}))
}

func TestComputeCourseProgressLockDerivation(t *testing.T) {
	db := setupTestDB(t)

	creator := createTestUser(t, db, "creator", models.RoleAdmin)
	student := createTestUser(t, db, "student", models.RoleUser)
	course := createTestCourse(t, db, "Go Basics", creator.ID)
	ch1 := createTestChapter(t, db, course.ID, 0)
	ch2 := createTestChapter(t, db, course.ID, 1)
	lesson1 := createTestLesson(t, db, course.ID, ch1.ID, 0)
	createTestLesson(t, db, course.ID, ch2.ID, 0)
	createTestMCQ(t, db, ch1.ID)
	enrollTestUser(t, db, student.ID, course.ID, 2)

	report, err := ComputeCourseProgress(db, nil, nil, student.ID, course.ID)
	require.NoError(t, err)
	require.Len(t, report.Chapters, 2)

	assert.False(t, report.Chapters[0].Locked)
	assert.True(t, report.Chapters[1].Locked, "second chapter locked until first quiz passed")
	assert.Equal(t, 0, report.OverallProgress)
	assert.False(t, report.CourseCompleted)

	// Completing the lesson makes the quiz attemptable but does not unlock ch2
	progress := courseModels.ChapterProgress{UserID: student.ID, CourseID: course.ID, ChapterID: ch1.ID, LessonCompleted: true}
	progress.SetCompletedLessonIDs([]uint{lesson1.ID})
	require.NoError(t, db.Create(&progress).Error)

	report, err = ComputeCourseProgress(db, nil, nil, student.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, report.Chapters[0].AllLessonsCompleted)
	assert.True(t, report.Chapters[0].CanAttemptMCQ)
	assert.False(t, report.Chapters[0].Completed)
	assert.True(t, report.Chapters[1].Locked)

	// Passing the quiz completes the chapter and unlocks the next one
	progress.MCQPassed = true
	progress.Completed = true
	require.NoError(t, db.Save(&progress).Error)

	report, err = ComputeCourseProgress(db, nil, nil, student.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, report.Chapters[0].Completed)
	assert.False(t, report.Chapters[0].CanAttemptMCQ, "passed quiz is not re-attemptable")
	assert.False(t, report.Chapters[1].Locked)
	assert.Equal(t, 1, report.CompletedChapters)
	assert.Equal(t, 50, report.OverallProgress)
	assert.False(t, report.CourseCompleted)
}

func TestComputeCourseProgressCompletionIssuesCertificate(t *testing.T) {
	db := setupTestDB(t)
	gen := &stubGenerator{}
	mailer := &recordingMailer{}

	creator := createTestUser(t, db, "creator", models.RoleAdmin)
	student := createTestUser(t, db, "student", models.RoleUser)
	course := createTestCourse(t, db, "Go Basics", creator.ID)
	ch1 := createTestChapter(t, db, course.ID, 0)
	lesson1 := createTestLesson(t, db, course.ID, ch1.ID, 0)
	enrollTestUser(t, db, student.ID, course.ID, 1)

	progress := courseModels.ChapterProgress{
		UserID: student.ID, CourseID: course.ID, ChapterID: ch1.ID,
		LessonCompleted: true, MCQPassed: true, Completed: true,
	}
	progress.SetCompletedLessonIDs([]uint{lesson1.ID})
	require.NoError(t, db.Create(&progress).Error)

	report, err := ComputeCourseProgress(db, gen, mailer, student.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, report.CourseCompleted)
	assert.Equal(t, 100, report.OverallProgress)

	var cert courseModels.Certificate
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", student.ID, course.ID).First(&cert).Error)
	assert.Equal(t, 1, gen.calls)
	assert.Len(t, mailer.issued, 1)

	// Recomputation does not issue again
	_, err = ComputeCourseProgress(db, gen, mailer, student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)
	assert.Len(t, mailer.issued, 1)
}

func TestComputeCourseProgressSwallowsIssuanceFailure(t *testing.T) {
	db := setupTestDB(t)

	creator := createTestUser(t, db, "creator", models.RoleAdmin)
	student := createTestUser(t, db, "student", models.RoleUser)
	course := createTestCourse(t, db, "Go Basics", creator.ID)
	ch1 := createTestChapter(t, db, course.ID, 0)
	enrollTestUser(t, db, student.ID, course.ID, 1)

	progress := courseModels.ChapterProgress{
		UserID: student.ID, CourseID: course.ID, ChapterID: ch1.ID,
		LessonCompleted: true, MCQPassed: true, Completed: true,
	}
	require.NoError(t, db.Create(&progress).Error)

	report, err := ComputeCourseProgress(db, &stubGenerator{fail: true}, nil, student.ID, course.ID)
	require.NoError(t, err, "artifact failure never propagates to the progress caller")
	assert.True(t, report.CourseCompleted)

	var count int64
	db.Model(&courseModels.Certificate{}).Count(&count)
	assert.Zero(t, count)
}

func TestComputeCourseProgressUnknownCourse(t *testing.T) {
	db := setupTestDB(t)
	student := createTestUser(t, db, "student", models.RoleUser)

	_, err := ComputeCourseProgress(db, nil, nil, student.ID, 9999)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestUpsertLessonCompletion(t *testing.T) {
	db := setupTestDB(t)

	creator := createTestUser(t, db, "creator", models.RoleAdmin)
	student := createTestUser(t, db, "student", models.RoleUser)
	course := createTestCourse(t, db, "Go Basics", creator.ID)
	chapter := createTestChapter(t, db, course.ID, 0)
	lesson1 := createTestLesson(t, db, course.ID, chapter.ID, 0)
	lesson2 := createTestLesson(t, db, course.ID, chapter.ID, 1)
	createTestMCQ(t, db, chapter.ID)

	progress, err := upsertLessonCompletion(db, student.ID, course.ID, chapter, lesson1.ID)
	require.NoError(t, err)
	assert.Len(t, progress.CompletedLessonIDs(), 1)
	assert.False(t, progress.LessonCompleted)
	assert.False(t, progress.Completed)

	// Re-completing the same lesson is rejected
	_, err = upsertLessonCompletion(db, student.ID, course.ID, chapter, lesson1.ID)
	assert.ErrorIs(t, err, errLessonAlreadyCompleted)

	// Finishing the last lesson sets the chapter flag but with an active
	// quiz the chapter stays incomplete
	progress, err = upsertLessonCompletion(db, student.ID, course.ID, chapter, lesson2.ID)
	require.NoError(t, err)
	assert.True(t, progress.LessonCompleted)
	assert.False(t, progress.MCQPassed)
	assert.False(t, progress.Completed)
}

func TestUpsertLessonCompletionNoQuizChapter(t *testing.T) {
	db := setupTestDB(t)

	creator := createTestUser(t, db, "creator", models.RoleAdmin)
	student := createTestUser(t, db, "student", models.RoleUser)
	course := createTestCourse(t, db, "Go Basics", creator.ID)
	chapter := createTestChapter(t, db, course.ID, 0)
	lesson := createTestLesson(t, db, course.ID, chapter.ID, 0)

	// A chapter without an active quiz completes on its lessons alone
	progress, err := upsertLessonCompletion(db, student.ID, course.ID, chapter, lesson.ID)
	require.NoError(t, err)
	assert.True(t, progress.LessonCompleted)
	assert.True(t, progress.MCQPassed)
	assert.True(t, progress.Completed)
}

func TestScoreQuizSubmission(t *testing.T) {
	db := setupTestDB(t)

	creator := createTestUser(t, db, "creator", models.RoleAdmin)
	course := createTestCourse(t, db, "Go Basics", creator.ID)
	chapter := createTestChapter(t, db, course.ID, 0)
	q1, correct1 := createTestMCQ(t, db, chapter.ID)
	q2, correct2 := createTestMCQ(t, db, chapter.ID)

	var wrong1 courseModels.MCQOption
	require.NoError(t, db.Where("question_id = ? AND is_correct = ?", q1.ID, false).First(&wrong1).Error)

	questions := []courseModels.MCQQuestion{*q1, *q2}

	// All correct
	score, maxScore, passed := scoreQuizSubmission(db, questions, []MCQAnswer{
		{QuestionID: q1.ID, SelectedOptionIDs: []uint{correct1}},
		{QuestionID: q2.ID, SelectedOptionIDs: []uint{correct2}},
	})
	assert.Equal(t, 2, score)
	assert.Equal(t, 2, maxScore)
	assert.True(t, passed)

	// One wrong answer fails the quiz
	score, _, passed = scoreQuizSubmission(db, questions, []MCQAnswer{
		{QuestionID: q1.ID, SelectedOptionIDs: []uint{wrong1.ID}},
		{QuestionID: q2.ID, SelectedOptionIDs: []uint{correct2}},
	})
	assert.Equal(t, 1, score)
	assert.False(t, passed)

	// Selecting extra options breaks the exact-set match
	score, _, passed = scoreQuizSubmission(db, questions, []MCQAnswer{
		{QuestionID: q1.ID, SelectedOptionIDs: []uint{correct1, wrong1.ID}},
		{QuestionID: q2.ID, SelectedOptionIDs: []uint{correct2}},
	})
	assert.Equal(t, 1, score)
	assert.False(t, passed)

	// Unanswered questions score zero
	score, _, passed = scoreQuizSubmission(db, questions, []MCQAnswer{
		{QuestionID: q1.ID, SelectedOptionIDs: []uint{correct1}},
	})
	assert.Equal(t, 1, score)
	assert.False(t, passed)

	// An empty question set never passes
	_, _, passed = scoreQuizSubmission(db, nil, nil)
	assert.False(t, passed)
}

func TestUpdateEnrollmentProgress(t *testing.T) {
	db := setupTestDB(t)
	gen := &stubGenerator{}

	creator := createTestUser(t, db, "creator", models.RoleAdmin)
	student := createTestUser(t, db, "student", models.RoleUser)
	course := createTestCourse(t, db, "Go Basics", creator.ID)
	ch1 := createTestChapter(t, db, course.ID, 0)
	ch2 := createTestChapter(t, db, course.ID, 1)
	enrollTestUser(t, db, student.ID, course.ID, 2)

	// One of two chapters done
	require.NoError(t, db.Create(&courseModels.ChapterProgress{
		UserID: student.ID, CourseID: course.ID, ChapterID: ch1.ID,
		LessonCompleted: true, MCQPassed: true, Completed: true,
	}).Error)

	updateEnrollmentProgress(db, gen, nil, student.ID, course.ID)

	var enrollment courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", student.ID, course.ID).First(&enrollment).Error)
	assert.Equal(t, courseModels.EnrollmentInProgress, enrollment.Status)
	assert.Equal(t, 1, enrollment.CompletedChapters)
	assert.Equal(t, float64(50), enrollment.Progress)
	assert.Nil(t, enrollment.CompletedAt)

	// Both chapters done
	require.NoError(t, db.Create(&courseModels.ChapterProgress{
		UserID: student.ID, CourseID: course.ID, ChapterID: ch2.ID,
		LessonCompleted: true, MCQPassed: true, Completed: true,
	}).Error)

	updateEnrollmentProgress(db, gen, nil, student.ID, course.ID)

	require.NoError(t, db.Where("user_id = ? AND course_id = ?", student.ID, course.ID).First(&enrollment).Error)
	assert.Equal(t, courseModels.EnrollmentCompleted, enrollment.Status)
	assert.Equal(t, float64(100), enrollment.Progress)
	require.NotNil(t, enrollment.CompletedAt)
	firstCompletedAt := *enrollment.CompletedAt

	// Recomputation keeps the original completion timestamp
	updateEnrollmentProgress(db, gen, nil, student.ID, course.ID)
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", student.ID, course.ID).First(&enrollment).Error)
	require.NotNil(t, enrollment.CompletedAt)
	assert.WithinDuration(t, firstCompletedAt, *enrollment.CompletedAt, 0)
}
