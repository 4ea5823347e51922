package controllers

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"lms/config"
	"lms/database"
	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an isolated in-memory database with the full schema
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("setupTestDB() failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("setupTestDB() failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	database.RunMigrations(db)

	config.AppConfig = &config.Config{
		BaseURL:              "http://localhost:3000",
		PublicDir:            t.TempDir(),
		CertApprovalRequired: true,
	}

	return db
}

// stubGenerator is an ArtifactGenerator that renders nothing
type stubGenerator struct {
	fail  bool
	calls int
}

func (g *stubGenerator) Generate(studentName, courseTitle, certCode string, issuedAt time.Time, verificationURL string) (*utils.ArtifactInfo, error) {
	g.calls++
	if g.fail {
		return nil, errors.New("render failed")
	}
	return &utils.ArtifactInfo{
		ArtifactURL: "http://localhost:3000/certificates/" + certCode + ".png",
	}, nil
}

// recordingMailer captures notification triggers without sending anything
type recordingMailer struct {
	sent      []string
	issued    []string
	approved  []string
	rejected  []string
	revoked   []string
	restored  []string
	copies    []string
	reminders []string
}

func (m *recordingMailer) Send(htmlBody, to, subject string, attachments []utils.Attachment) bool {
	m.sent = append(m.sent, to)
	return true
}

func (m *recordingMailer) WelcomeOTP(email, name, otp string) {}

func (m *recordingMailer) CertificateIssued(email, name, courseTitle, artifactURL, verifyURL string) {
	m.issued = append(m.issued, email)
}

func (m *recordingMailer) CertificateApproved(email, name, courseTitle, verifyURL string) {
	m.approved = append(m.approved, email)
}

func (m *recordingMailer) CertificateRejected(email, name, courseTitle, reason string) {
	m.rejected = append(m.rejected, email)
}

func (m *recordingMailer) CertificateRevoked(email, name, courseTitle, reason string) {
	m.revoked = append(m.revoked, email)
}

func (m *recordingMailer) CertificateReinstated(email, name, courseTitle string) {
	m.restored = append(m.restored, email)
}

func (m *recordingMailer) CertificateCopy(email, name, courseTitle, artifactURL string, attachments []utils.Attachment) {
	m.copies = append(m.copies, email)
}

func (m *recordingMailer) PendingApprovalReminder(email, name string, pending int, digest string) {
	m.reminders = append(m.reminders, email)
}

var _ utils.Notifier = (*recordingMailer)(nil)

func createTestUser(t *testing.T, db *gorm.DB, name, role string) *models.User {
	t.Helper()
	user := models.User{
		Name:            name,
		Email:           fmt.Sprintf("%s@example.com", name),
		Role:            role,
		Password:        "hashed",
		IsEmailVerified: true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("createTestUser() failed: %v", err)
	}
	return &user
}

func createTestCourse(t *testing.T, db *gorm.DB, title string, creatorID uint) *courseModels.Course {
	t.Helper()
	course := courseModels.Course{
		Title:       title,
		Description: "test course",
		CreatorID:   creatorID,
		Status:      courseModels.CourseStatusActive,
		IsPublished: true,
	}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("createTestCourse() failed: %v", err)
	}
	return &course
}

func createTestChapter(t *testing.T, db *gorm.DB, courseID uint, orderIndex int) *courseModels.Chapter {
	t.Helper()
	chapter := courseModels.Chapter{
		CourseID:   courseID,
		Title:      fmt.Sprintf("Chapter %d", orderIndex+1),
		OrderIndex: orderIndex,
	}
	if err := db.Create(&chapter).Error; err != nil {
		t.Fatalf("createTestChapter() failed: %v", err)
	}
	return &chapter
}

func createTestLesson(t *testing.T, db *gorm.DB, courseID, chapterID uint, orderIndex int) *courseModels.Lesson {
	t.Helper()
	lesson := courseModels.Lesson{
		CourseID:    courseID,
		ChapterID:   chapterID,
		Title:       fmt.Sprintf("Lesson %d", orderIndex+1),
		ContentType: courseModels.LessonTypeText,
		TextContent: "lesson body",
		OrderIndex:  orderIndex,
		IsPublished: true,
	}
	if err := db.Create(&lesson).Error; err != nil {
		t.Fatalf("createTestLesson() failed: %v", err)
	}
	return &lesson
}

// createTestMCQ adds one question with one correct and one wrong option.
// Returns the question and the correct option id.
func createTestMCQ(t *testing.T, db *gorm.DB, chapterID uint) (*courseModels.MCQQuestion, uint) {
	t.Helper()
	question := courseModels.MCQQuestion{
		ChapterID:    chapterID,
		QuestionText: "pick the right one",
		IsActive:     true,
	}
	if err := db.Create(&question).Error; err != nil {
		t.Fatalf("createTestMCQ() failed: %v", err)
	}

	right := courseModels.MCQOption{QuestionID: question.ID, OptionText: "right", IsCorrect: true, OrderIndex: 0}
	wrong := courseModels.MCQOption{QuestionID: question.ID, OptionText: "wrong", IsCorrect: false, OrderIndex: 1}
	if err := db.Create(&right).Error; err != nil {
		t.Fatalf("createTestMCQ() failed: %v", err)
	}
	if err := db.Create(&wrong).Error; err != nil {
		t.Fatalf("createTestMCQ() failed: %v", err)
	}
	return &question, right.ID
}

func enrollTestUser(t *testing.T, db *gorm.DB, userID, courseID uint, totalChapters int) *courseModels.Enrollment {
	t.Helper()
	enrollment := courseModels.Enrollment{
		UserID:        userID,
		CourseID:      courseID,
		Status:        courseModels.EnrollmentEnrolled,
		TotalChapters: totalChapters,
		EnrolledAt:    time.Now(),
	}
	if err := db.Create(&enrollment).Error; err != nil {
		t.Fatalf("enrollTestUser() failed: %v", err)
	}
	return &enrollment
}

func createTestCertificate(t *testing.T, db *gorm.DB, userID, courseID uint, status string) *courseModels.Certificate {
	t.Helper()
	cert := courseModels.Certificate{
		UserID:          userID,
		CourseID:        courseID,
		CertificateCode: fmt.Sprintf("code-%d-%d", userID, courseID),
		ArtifactURL:     "http://localhost:3000/certificates/test.png",
		Status:          status,
		IssuedAt:        time.Now(),
	}
	if err := db.Create(&cert).Error; err != nil {
		t.Fatalf("createTestCertificate() failed: %v", err)
	}
	return &cert
}

func countAuditLogs(t *testing.T, db *gorm.DB, action string) int64 {
	t.Helper()
	var n int64
	db.Model(&courseModels.AuditLog{}).Where("action = ?", action).Count(&n)
	return n
}
