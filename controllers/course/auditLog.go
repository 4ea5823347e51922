package controllers

import (
	"encoding/json"
	"log"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RecordAuditLog appends an audit entry for a state-changing action. It never
// returns an error: audit logging must not block the business transition it
// documents, so failures are logged and swallowed here.
func RecordAuditLog(db *gorm.DB, courseID uint, courseTitle, action string, actorID uint, actorName string, changedFields map[string]interface{}, activeStatus *bool) {
	var payload datatypes.JSON
	if changedFields != nil {
		encoded, err := json.Marshal(changedFields)
		if err != nil {
			log.Printf("[AUDIT] could not encode changed fields for %s: %v", action, err)
		} else {
			payload = datatypes.JSON(encoded)
		}
	}

	entry := courseModels.AuditLog{
		CourseID:      courseID,
		CourseTitle:   courseTitle,
		Action:        action,
		ActorID:       actorID,
		ActorName:     actorName,
		ChangedFields: payload,
		ActiveStatus:  activeStatus,
	}

	if err := db.Create(&entry).Error; err != nil {
		log.Printf("[AUDIT] failed to record %s for course %d: %v", action, courseID, err)
	}
}

// fieldChange builds the {old, new} payload entry used in audit records
func fieldChange(oldValue, newValue interface{}) map[string]interface{} {
	return map[string]interface{}{"old": oldValue, "new": newValue}
}

// AdminGetAuditLogs lists audit entries, newest first
func AdminGetAuditLogs(c *fiber.Ctx) error {
	reqData, _ := c.Locals("validatedAuditLogQuery").(*struct {
		Page   *int   `json:"page"`
		Limit  *int   `json:"limit"`
		Action string `json:"action"`
	})

	page := 1
	limit := 10
	if reqData != nil && reqData.Page != nil && *reqData.Page > 0 {
		page = *reqData.Page
	}
	if reqData != nil && reqData.Limit != nil && *reqData.Limit > 0 {
		limit = *reqData.Limit
	}
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&courseModels.AuditLog{})
	if reqData != nil && reqData.Action != "" {
		db = db.Where("action = ?", reqData.Action)
	}

	var total int64
	db.Count(&total)

	var entries []courseModels.AuditLog
	if err := db.Offset(offset).Limit(limit).Order("created_at desc").Find(&entries).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch audit logs!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Audit logs fetched successfully!", fiber.Map{
		"entries": entries,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}
