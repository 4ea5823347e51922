package controllers

import (
	"testing"

	"lms/models"
	courseModels "lms/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextApprovalStatus(t *testing.T) {
	tests := []struct {
		name       string
		current    string
		actor      ActorTier
		creatorTop bool
		want       string
		wantErr    error
	}{
		{"pending approved by admin escalates to superadmin", courseModels.CertStatusPending, TierAdmin, false, courseModels.CertStatusWaitForSuperAdminApproval, nil},
		{"pending approved by superadmin escalates to admin", courseModels.CertStatusPending, TierSuperAdmin, false, courseModels.CertStatusWaitForAdminApproval, nil},
		{"wait for admin approval issues", courseModels.CertStatusWaitForAdminApproval, TierAdmin, false, courseModels.CertStatusIssued, nil},
		{"wait for superadmin approval issues", courseModels.CertStatusWaitForSuperAdminApproval, TierSuperAdmin, false, courseModels.CertStatusIssued, nil},
		{"admin approved issues", courseModels.CertStatusAdminApproved, TierSuperAdmin, false, courseModels.CertStatusIssued, nil},
		{"superadmin creator fast path from pending", courseModels.CertStatusPending, TierAdmin, true, courseModels.CertStatusIssued, nil},
		{"already issued", courseModels.CertStatusIssued, TierSuperAdmin, false, "", ErrAlreadyIssued},
		{"issued fails even on fast path", courseModels.CertStatusIssued, TierSuperAdmin, true, "", ErrAlreadyIssued},
		{"admin rejected cannot be approved", courseModels.CertStatusAdminRejected, TierAdmin, false, "", ErrRejectedCertificate},
		{"superadmin rejected cannot be approved", courseModels.CertStatusSuperAdminRejected, TierSuperAdmin, false, "", ErrRejectedCertificate},
		{"revoked is not approvable", courseModels.CertStatusRevoked, TierSuperAdmin, false, "", ErrInvalidTransition},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NextApprovalStatus(tc.current, tc.actor, tc.creatorTop)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTierForRole(t *testing.T) {
	assert.Equal(t, TierSuperAdmin, TierForRole(models.RoleSuperAdmin))
	assert.Equal(t, TierAdmin, TierForRole(models.RoleAdmin))
	assert.Equal(t, TierAdmin, TierForRole(models.RoleUser))
}

func TestApproveCertificateEscalationChain(t *testing.T) {
	db := setupTestDB(t)
	mailer := &recordingMailer{}

	admin := createTestUser(t, db, "admin", models.RoleAdmin)
	super := createTestUser(t, db, "super", models.RoleSuperAdmin)
	creator := createTestUser(t, db, "creator", models.RoleAdmin)
	student := createTestUser(t, db, "student", models.RoleUser)
	course := createTestCourse(t, db, "Go Basics", creator.ID)
	cert := createTestCertificate(t, db, student.ID, course.ID, courseModels.CertStatusPending)

	// First approval by a lower admin escalates to the superadmin tier
	updated, err := ApproveCertificate(db, mailer, cert.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, courseModels.CertStatusWaitForSuperAdminApproval, updated.Status)
	assert.Empty(t, mailer.approved, "no notification before issuance")

	// Second approval issues and notifies the student
	updated, err = ApproveCertificate(db, mailer, cert.ID, super)
	require.NoError(t, err)
	assert.Equal(t, courseModels.CertStatusIssued, updated.Status)
	require.Len(t, mailer.approved, 1)
	assert.Equal(t, student.Email, mailer.approved[0])

	// Both transitions were audited
	assert.EqualValues(t, 2, countAuditLogs(t, db, courseModels.AuditActionCertApproved))

	// A third approve fails
	_, err = ApproveCertificate(db, mailer, cert.ID, super)
	assert.ErrorIs(t, err, ErrAlreadyIssued)
}

func TestApproveCertificateSuperAdminCreatorFastPath(t *testing.T) {
	db := setupTestDB(t)
	mailer := &recordingMailer{}

	admin := createTestUser(t, db, "admin", models.RoleAdmin)
	super := createTestUser(t, db, "super", models.RoleSuperAdmin)
	student := createTestUser(t, db, "student", models.RoleUser)
	course := createTestCourse(t, db, "Owned By Top", super.ID)
	cert := createTestCertificate(t, db, student.ID, course.ID, courseModels.CertStatusPending)

	updated, err := ApproveCertificate(db, mailer, cert.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, courseModels.CertStatusIssued, updated.Status)
	assert.Len(t, mailer.approved, 1)
}

func TestApproveCertificateNotFound(t *testing.T) {
	db := setupTestDB(t)
	admin := createTestUser(t, db, "admin", models.RoleAdmin)

	_, err := ApproveCertificate(db, &recordingMailer{}, 9999, admin)
	assert.ErrorIs(t, err, ErrCertificateNotFound)
}

func TestRejectCertificatesBulk(t *testing.T) {
	db := setupTestDB(t)
	mailer := &recordingMailer{}

	super := createTestUser(t, db, "super", models.RoleSuperAdmin)
	creator := createTestUser(t, db, "creator", models.RoleAdmin)
	alice := createTestUser(t, db, "alice", models.RoleUser)
	bob := createTestUser(t, db, "bob", models.RoleUser)
	carol := createTestUser(t, db, "carol", models.RoleUser)
	course := createTestCourse(t, db, "Go Basics", creator.ID)

	pending := createTestCertificate(t, db, alice.ID, course.ID, courseModels.CertStatusPending)
	issued := createTestCertificate(t, db, bob.ID, course.ID, courseModels.CertStatusIssued)
	waiting := createTestCertificate(t, db, carol.ID, course.ID, courseModels.CertStatusWaitForAdminApproval)

	ids := []uint{pending.ID, issued.ID, waiting.ID, 9999}
	result, err := RejectCertificates(db, mailer, ids, super, "quality concerns")
	require.NoError(t, err)

	assert.ElementsMatch(t, []uint{pending.ID, waiting.ID}, result.Rejected)
	assert.ElementsMatch(t, []uint{issued.ID, 9999}, result.Skipped)
	assert.Len(t, result.Outcomes, 4)

	// Superadmin rejection lands in SUPERADMIN_REJECTED
	var got courseModels.Certificate
	require.NoError(t, db.First(&got, pending.ID).Error)
	assert.Equal(t, courseModels.CertStatusSuperAdminRejected, got.Status)

	// Issued certificate untouched
	got = courseModels.Certificate{}
	require.NoError(t, db.First(&got, issued.ID).Error)
	assert.Equal(t, courseModels.CertStatusIssued, got.Status)

	// One audit entry per rejected certificate, one email total
	assert.EqualValues(t, 2, countAuditLogs(t, db, courseModels.AuditActionCertRejected))
	require.Len(t, mailer.rejected, 1)
	assert.Equal(t, alice.Email, mailer.rejected[0], "notification uses the first rejected certificate's student")
}

func TestRejectCertificatesAdminTier(t *testing.T) {
	db := setupTestDB(t)

	admin := createTestUser(t, db, "admin", models.RoleAdmin)
	creator := createTestUser(t, db, "creator", models.RoleAdmin)
	student := createTestUser(t, db, "student", models.RoleUser)
	course := createTestCourse(t, db, "Go Basics", creator.ID)
	cert := createTestCertificate(t, db, student.ID, course.ID, courseModels.CertStatusPending)

	result, err := RejectCertificates(db, &recordingMailer{}, []uint{cert.ID}, admin, "incomplete work")
	require.NoError(t, err)
	require.Len(t, result.Rejected, 1)

	var got courseModels.Certificate
	require.NoError(t, db.First(&got, cert.ID).Error)
	assert.Equal(t, courseModels.CertStatusAdminRejected, got.Status)
}

func TestRejectCertificatesNoneEligible(t *testing.T) {
	db := setupTestDB(t)
	mailer := &recordingMailer{}

	super := createTestUser(t, db, "super", models.RoleSuperAdmin)
	creator := createTestUser(t, db, "creator", models.RoleAdmin)
	student := createTestUser(t, db, "student", models.RoleUser)
	course := createTestCourse(t, db, "Go Basics", creator.ID)
	issued := createTestCertificate(t, db, student.ID, course.ID, courseModels.CertStatusIssued)

	result, err := RejectCertificates(db, mailer, []uint{issued.ID, 424242}, super, "reason")
	assert.ErrorIs(t, err, ErrNoneRejectable)
	assert.Empty(t, result.Rejected)
	assert.Len(t, result.Skipped, 2)
	assert.Empty(t, mailer.rejected)
}

func TestRevokeCertificate(t *testing.T) {
	db := setupTestDB(t)
	mailer := &recordingMailer{}

	super := createTestUser(t, db, "super", models.RoleSuperAdmin)
	creator := createTestUser(t, db, "creator", models.RoleAdmin)
	student := createTestUser(t, db, "student", models.RoleUser)
	course := createTestCourse(t, db, "Go Basics", creator.ID)
	cert := createTestCertificate(t, db, student.ID, course.ID, courseModels.CertStatusIssued)

	updated, err := RevokeCertificate(db, mailer, cert.ID, super, "plagiarism")
	require.NoError(t, err)
	assert.Equal(t, courseModels.CertStatusRevoked, updated.Status)
	require.NotNil(t, updated.RevokedReason)
	assert.Equal(t, "plagiarism", *updated.RevokedReason)
	assert.NotNil(t, updated.RevokedAt)
	assert.Len(t, mailer.revoked, 1)
	assert.EqualValues(t, 1, countAuditLogs(t, db, courseModels.AuditActionCertRevoked))

	// Revoking again fails
	_, err = RevokeCertificate(db, mailer, cert.ID, super, "again")
	assert.ErrorIs(t, err, ErrAlreadyRevoked)
}

func TestReinstateCertificate(t *testing.T) {
	db := setupTestDB(t)
	mailer := &recordingMailer{}

	super := createTestUser(t, db, "super", models.RoleSuperAdmin)
	creator := createTestUser(t, db, "creator", models.RoleAdmin)
	student := createTestUser(t, db, "student", models.RoleUser)
	course := createTestCourse(t, db, "Go Basics", creator.ID)
	cert := createTestCertificate(t, db, student.ID, course.ID, courseModels.CertStatusIssued)

	_, err := RevokeCertificate(db, mailer, cert.ID, super, "mistake")
	require.NoError(t, err)

	updated, err := ReinstateCertificate(db, mailer, cert.ID, super)
	require.NoError(t, err)
	assert.Equal(t, courseModels.CertStatusIssued, updated.Status)
	assert.Nil(t, updated.RevokedReason)
	assert.Nil(t, updated.RevokedAt)
	assert.Len(t, mailer.restored, 1)
	assert.EqualValues(t, 1, countAuditLogs(t, db, courseModels.AuditActionCertReinstated))

	// The stored row also has the revocation fields cleared
	var got courseModels.Certificate
	require.NoError(t, db.First(&got, cert.ID).Error)
	assert.Nil(t, got.RevokedReason)
	assert.Nil(t, got.RevokedAt)

	// Reinstating an issued certificate fails
	_, err = ReinstateCertificate(db, mailer, cert.ID, super)
	assert.ErrorIs(t, err, ErrAlreadyIssued)
}

func TestReinstateRequiresRevokedState(t *testing.T) {
	db := setupTestDB(t)

	super := createTestUser(t, db, "super", models.RoleSuperAdmin)
	creator := createTestUser(t, db, "creator", models.RoleAdmin)
	student := createTestUser(t, db, "student", models.RoleUser)
	course := createTestCourse(t, db, "Go Basics", creator.ID)
	cert := createTestCertificate(t, db, student.ID, course.ID, courseModels.CertStatusPending)

	_, err := ReinstateCertificate(db, &recordingMailer{}, cert.ID, super)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
