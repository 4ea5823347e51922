package utils

import (
	"fmt"
	"log"
	"strings"
	"time"

	"lms/config"
	"lms/database"
	"lms/models"
	courseModels "lms/models/course"

	"github.com/robfig/cron/v3"
)

// logScheduler logs scheduler events with timestamp
func logScheduler(message string) {
	log.Printf("[CERT-SCHEDULER %s] %s", time.Now().Format(time.RFC3339), message)
}

// processPendingReminders finds certificates stuck in an approval stage and
// mails every admin a digest
func processPendingReminders() {
	db := database.Database.Db

	maxAge := time.Duration(config.AppConfig.CertReminderAgeHours) * time.Hour
	cutoff := time.Now().Add(-maxAge)

	pendingStatuses := []string{
		courseModels.CertStatusPending,
		courseModels.CertStatusAdminApproved,
		courseModels.CertStatusWaitForAdminApproval,
		courseModels.CertStatusWaitForSuperAdminApproval,
	}

	var certificates []courseModels.Certificate
	if err := db.Where("status IN ? AND is_deleted = ? AND updated_at < ?", pendingStatuses, false, cutoff).
		Order("created_at asc").Find(&certificates).Error; err != nil {
		logScheduler("Error fetching stuck certificates: " + err.Error())
		return
	}

	if len(certificates) == 0 {
		return
	}

	var lines []string
	for _, cert := range certificates {
		var student models.User
		db.Select("name, email").First(&student, cert.UserID)
		var course courseModels.Course
		db.Select("title").First(&course, cert.CourseID)

		lines = append(lines, fmt.Sprintf("%s — %s (%s, waiting since %s)",
			student.Name, course.Title, cert.Status, cert.UpdatedAt.Format("2006-01-02")))
	}
	digest := strings.Join(lines, "<br>")

	var admins []models.User
	if err := db.Where("role IN ? AND is_deleted = ?", []string{models.RoleAdmin, models.RoleSuperAdmin}, false).
		Find(&admins).Error; err != nil {
		logScheduler("Error fetching admins for reminder: " + err.Error())
		return
	}

	for _, admin := range admins {
		if admin.Email == "" {
			continue
		}
		Mail.PendingApprovalReminder(admin.Email, admin.Name, len(certificates), digest)
	}

	logScheduler(fmt.Sprintf("Reminder sent for %d stuck certificates to %d admins", len(certificates), len(admins)))
}

// StartPendingReminderScheduler runs the approval reminder on the configured schedule
func StartPendingReminderScheduler(c *cron.Cron) {
	if _, err := c.AddFunc(config.AppConfig.CertReminderCron, func() {
		processPendingReminders()
	}); err != nil {
		logScheduler("Invalid reminder schedule: " + err.Error())
		return
	}
	logScheduler("Pending approval reminder scheduled: " + config.AppConfig.CertReminderCron)
}

// InitializeCertificateSchedulers initializes all certificate schedulers
func InitializeCertificateSchedulers() *cron.Cron {
	logScheduler("Initializing certificate schedulers...")

	c := cron.New()

	StartPendingReminderScheduler(c)

	c.Start()

	logScheduler("All certificate schedulers initialized successfully")
	return c
}
