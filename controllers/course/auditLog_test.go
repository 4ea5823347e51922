package controllers

import (
	"encoding/json"
	"testing"

	courseModels "lms/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAuditLog(t *testing.T) {
	db := setupTestDB(t)

	RecordAuditLog(db, 7, "Go Basics", courseModels.AuditActionCertIssued, 3, "admin", map[string]interface{}{
		"certificate_id": 42,
		"status":         fieldChange("PENDING", "ISSUED"),
	}, nil)

	var entry courseModels.AuditLog
	require.NoError(t, db.First(&entry).Error)
	assert.EqualValues(t, 7, entry.CourseID)
	assert.Equal(t, "Go Basics", entry.CourseTitle)
	assert.EqualValues(t, 3, entry.ActorID)
	assert.Equal(t, "admin", entry.ActorName)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(entry.ChangedFields, &fields))
	assert.EqualValues(t, 42, fields["certificate_id"])
	change, ok := fields["status"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "PENDING", change["old"])
	assert.Equal(t, "ISSUED", change["new"])
}

func TestRecordAuditLogSwallowsWriteFailure(t *testing.T) {
	db := setupTestDB(t)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	// Must not panic or propagate anything to the caller
	RecordAuditLog(db, 1, "Go Basics", courseModels.AuditActionCertRevoked, 1, "admin", nil, nil)
}
