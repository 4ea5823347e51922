package controllers

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"lms/database"
	"lms/models"
	courseModels "lms/models/course"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// authAs stands in for the JWT middleware in handler tests
func authAs(userID uint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userId", userID)
		return c.Next()
	}
}

func TestDownloadCertificateCountsEachCall(t *testing.T) {
	db := setupTestDB(t)
	database.Database.Db = db

	creator := createTestUser(t, db, "creator", models.RoleAdmin)
	student := createTestUser(t, db, "student", models.RoleUser)
	course := createTestCourse(t, db, "Go Basics", creator.ID)
	cert := createTestCertificate(t, db, student.ID, course.ID, courseModels.CertStatusIssued)

	app := fiber.New()
	app.Get("/certificates/:certificate_id/download", authAs(student.ID), validators.CertificateID(), DownloadCertificate)

	for want := 1; want <= 2; want++ {
		resp, err := app.Test(httptest.NewRequest("GET", fmt.Sprintf("/certificates/%d/download", cert.ID), nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var stored courseModels.Certificate
		require.NoError(t, db.First(&stored, cert.ID).Error)
		assert.Equal(t, want, stored.DownloadCount)
	}

	assert.EqualValues(t, 2, countAuditLogs(t, db, courseModels.AuditActionCertDownloaded))
}

func TestDownloadCertificateOwnerOnly(t *testing.T) {
	db := setupTestDB(t)
	database.Database.Db = db

	creator := createTestUser(t, db, "creator", models.RoleAdmin)
	owner := createTestUser(t, db, "owner", models.RoleUser)
	other := createTestUser(t, db, "other", models.RoleUser)
	course := createTestCourse(t, db, "Go Basics", creator.ID)
	cert := createTestCertificate(t, db, owner.ID, course.ID, courseModels.CertStatusIssued)

	app := fiber.New()
	app.Get("/certificates/:certificate_id/download", authAs(other.ID), validators.CertificateID(), DownloadCertificate)

	resp, err := app.Test(httptest.NewRequest("GET", fmt.Sprintf("/certificates/%d/download", cert.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var stored courseModels.Certificate
	require.NoError(t, db.First(&stored, cert.ID).Error)
	assert.Zero(t, stored.DownloadCount, "a refused download is not counted")
}

func TestVerifyCertificateByCode(t *testing.T) {
	db := setupTestDB(t)
	database.Database.Db = db

	creator := createTestUser(t, db, "creator", models.RoleAdmin)
	student := createTestUser(t, db, "student", models.RoleUser)
	course := createTestCourse(t, db, "Go Basics", creator.ID)
	cert := createTestCertificate(t, db, student.ID, course.ID, courseModels.CertStatusIssued)

	app := fiber.New()
	app.Get("/certificates/verify/:code", VerifyCertificate)

	resp, err := app.Test(httptest.NewRequest("GET", "/certificates/verify/"+cert.CertificateCode, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Status bool                   `json:"status"`
		Data   map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Status)
	assert.Equal(t, cert.CertificateCode, body.Data["certificate_code"])
	assert.Equal(t, student.Name, body.Data["student_name"])
	assert.Equal(t, "Go Basics", body.Data["course_title"])
	assert.Equal(t, courseModels.CertStatusIssued, body.Data["status"])
}

func TestVerifyCertificateUnknownCode(t *testing.T) {
	db := setupTestDB(t)
	database.Database.Db = db

	app := fiber.New()
	app.Get("/certificates/verify/:code", VerifyCertificate)

	resp, err := app.Test(httptest.NewRequest("GET", "/certificates/verify/BADCODE", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body struct {
		Status  bool            `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Status)
	assert.Equal(t, "null", string(body.Data), "an unknown code leaks nothing")
}
