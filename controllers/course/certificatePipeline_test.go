package controllers

import (
	"strings"
	"testing"
	"time"

	"lms/config"
	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// racingGenerator inserts a competing certificate row while the pipeline sits
// between its existence check and its own insert, so the pipeline's insert
// loses the race against the unique index.
type racingGenerator struct {
	db       *gorm.DB
	userID   uint
	courseID uint
}

func (g *racingGenerator) Generate(studentName, courseTitle, certCode string, issuedAt time.Time, verificationURL string) (*utils.ArtifactInfo, error) {
	winner := courseModels.Certificate{
		UserID:          g.userID,
		CourseID:        g.courseID,
		CertificateCode: "winner-" + certCode,
		Status:          courseModels.CertStatusPending,
		IssuedAt:        issuedAt,
	}
	if err := g.db.Create(&winner).Error; err != nil {
		return nil, err
	}
	return &utils.ArtifactInfo{
		ArtifactURL: "http://localhost:3000/certificates/" + certCode + ".png",
	}, nil
}

func TestIssueCertificateIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	gen := &stubGenerator{}
	mailer := &recordingMailer{}

	creator := createTestUser(t, db, "creator", models.RoleAdmin)
	student := createTestUser(t, db, "student", models.RoleUser)
	course := createTestCourse(t, db, "Go Basics", creator.ID)

	first, err := IssueCertificate(db, gen, mailer, student.ID, course.ID, nil)
	require.NoError(t, err)
	assert.False(t, first.AlreadyExists)
	require.NotNil(t, first.Certificate)
	assert.NotEmpty(t, first.Certificate.CertificateCode)
	assert.NotEmpty(t, first.Certificate.ArtifactURL)

	second, err := IssueCertificate(db, gen, mailer, student.ID, course.ID, nil)
	require.NoError(t, err)
	assert.True(t, second.AlreadyExists)
	assert.Equal(t, first.Certificate.CertificateCode, second.Certificate.CertificateCode)

	var count int64
	require.NoError(t, db.Model(&courseModels.Certificate{}).
		Where("user_id = ? AND course_id = ?", student.ID, course.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// Only the first call rendered an artifact and sent mail
	assert.Equal(t, 1, gen.calls)
	require.Len(t, mailer.issued, 1)
	assert.Equal(t, student.Email, mailer.issued[0])
}

func TestIssueCertificateInsertConflictReportsExisting(t *testing.T) {
	db := setupTestDB(t)

	creator := createTestUser(t, db, "creator", models.RoleAdmin)
	student := createTestUser(t, db, "student", models.RoleUser)
	course := createTestCourse(t, db, "Go Basics", creator.ID)

	// The existence check passes, then a concurrent issuance wins the insert
	gen := &racingGenerator{db: db, userID: student.ID, courseID: course.ID}
	result, err := IssueCertificate(db, gen, nil, student.ID, course.ID, nil)
	require.NoError(t, err, "a lost insert race is not an error")
	assert.True(t, result.AlreadyExists)
	require.NotNil(t, result.Certificate)
	assert.True(t, strings.HasPrefix(result.Certificate.CertificateCode, "winner-"),
		"the winning row is returned, not the loser's")

	var count int64
	require.NoError(t, db.Model(&courseModels.Certificate{}).
		Where("user_id = ? AND course_id = ?", student.ID, course.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestIssueCertificateUnknownUserOrCourse(t *testing.T) {
	db := setupTestDB(t)
	gen := &stubGenerator{}

	creator := createTestUser(t, db, "creator", models.RoleAdmin)
	student := createTestUser(t, db, "student", models.RoleUser)
	course := createTestCourse(t, db, "Go Basics", creator.ID)

	_, err := IssueCertificate(db, gen, nil, 9999, course.ID, nil)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = IssueCertificate(db, gen, nil, student.ID, 9999, nil)
	assert.ErrorIs(t, err, ErrCourseNotFound)

	assert.Equal(t, 0, gen.calls, "no artifact rendered for invalid targets")
}

func TestIssueCertificateArtifactFailureLeavesNoRow(t *testing.T) {
	db := setupTestDB(t)
	mailer := &recordingMailer{}

	creator := createTestUser(t, db, "creator", models.RoleAdmin)
	student := createTestUser(t, db, "student", models.RoleUser)
	course := createTestCourse(t, db, "Go Basics", creator.ID)

	_, err := IssueCertificate(db, &stubGenerator{fail: true}, mailer, student.ID, course.ID, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "artifact generation failed")

	var count int64
	require.NoError(t, db.Model(&courseModels.Certificate{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, mailer.issued)

	// A later retry with a healthy generator succeeds
	result, err := IssueCertificate(db, &stubGenerator{}, mailer, student.ID, course.ID, nil)
	require.NoError(t, err)
	assert.False(t, result.AlreadyExists)
}

func TestIssueCertificateApprovalGate(t *testing.T) {
	db := setupTestDB(t)

	creator := createTestUser(t, db, "creator", models.RoleAdmin)
	alice := createTestUser(t, db, "alice", models.RoleUser)
	bob := createTestUser(t, db, "bob", models.RoleUser)
	course := createTestCourse(t, db, "Go Basics", creator.ID)

	config.AppConfig.CertApprovalRequired = true
	gated, err := IssueCertificate(db, &stubGenerator{}, nil, alice.ID, course.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, courseModels.CertStatusPending, gated.Certificate.Status)

	config.AppConfig.CertApprovalRequired = false
	direct, err := IssueCertificate(db, &stubGenerator{}, nil, bob.ID, course.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, courseModels.CertStatusIssued, direct.Certificate.Status)
}

func TestIssueCertificateAuditActor(t *testing.T) {
	db := setupTestDB(t)

	admin := createTestUser(t, db, "admin", models.RoleAdmin)
	alice := createTestUser(t, db, "alice", models.RoleUser)
	bob := createTestUser(t, db, "bob", models.RoleUser)
	course := createTestCourse(t, db, "Go Basics", admin.ID)

	_, err := IssueCertificate(db, &stubGenerator{}, nil, alice.ID, course.ID, nil)
	require.NoError(t, err)

	var systemRow courseModels.AuditLog
	require.NoError(t, db.Where("action = ? AND actor_id = ?", courseModels.AuditActionCertIssued, 0).First(&systemRow).Error)
	assert.Equal(t, "SYSTEM", systemRow.ActorName)

	_, err = IssueCertificate(db, &stubGenerator{}, nil, bob.ID, course.ID, admin)
	require.NoError(t, err)

	var adminRow courseModels.AuditLog
	require.NoError(t, db.Where("action = ? AND actor_id = ?", courseModels.AuditActionCertIssued, admin.ID).First(&adminRow).Error)
	assert.Equal(t, admin.Name, adminRow.ActorName)
}
