package controllers

import (
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
)

// AdminGetEnrolledUsers lists enrolled students for a course with
// progress and certificate filters
func AdminGetEnrolledUsers(c *fiber.Ctx) error {
	if _, ok := c.Locals("currentUser").(*models.User); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	reqData, _ := c.Locals("validatedEnrolledUsersQuery").(*struct {
		Page           *int   `json:"page"`
		Limit          *int   `json:"limit"`
		Search         string `json:"search"`
		ProgressFilter string `json:"progress_filter"`
		HasCertificate *bool  `json:"has_certificate"`
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

	db := database.Database.Db.Model(&courseModels.Enrollment{}).Where("enrollments.course_id = ? AND enrollments.is_deleted = ?", courseID, false)

	if reqData != nil && reqData.ProgressFilter != "" {
		switch reqData.ProgressFilter {
		case "completed":
			db = db.Where("enrollments.status = ?", courseModels.EnrollmentCompleted)
		case "in_progress":
			db = db.Where("enrollments.status = ?", courseModels.EnrollmentInProgress)
		case "not_started":
			db = db.Where("enrollments.status = ?", courseModels.EnrollmentEnrolled)
		}
	}

	if reqData != nil && reqData.Search != "" {
		db = db.Joins("JOIN users ON users.id = enrollments.user_id").
			Where("users.name ILIKE ? OR users.email ILIKE ?", "%"+reqData.Search+"%", "%"+reqData.Search+"%")
	}

	if reqData != nil && reqData.HasCertificate != nil {
		sub := database.Database.Db.Model(&courseModels.Certificate{}).
			Select("user_id").
			Where("course_id = ? AND is_deleted = ?", courseID, false)
		if *reqData.HasCertificate {
			db = db.Where("enrollments.user_id IN (?)", sub)
		} else {
			db = db.Where("enrollments.user_id NOT IN (?)", sub)
		}
	}

	var total int64
	db.Count(&total)

	var enrollments []courseModels.Enrollment
	if err := db.Offset(offset).Limit(limit).Order("enrollments.created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	type EnrolledUser struct {
		courseModels.Enrollment
		UserName          string `json:"user_name"`
		UserEmail         string `json:"user_email"`
		CertificateID     *uint  `json:"certificate_id"`
		CertificateStatus string `json:"certificate_status,omitempty"`
	}

	result := make([]EnrolledUser, len(enrollments))
	for i, e := range enrollments {
		var enrolledUser models.User
		database.Database.Db.Where("id = ?", e.UserID).First(&enrolledUser)

		row := EnrolledUser{
			Enrollment: e,
			UserName:   enrolledUser.Name,
			UserEmail:  enrolledUser.Email,
		}

		var cert courseModels.Certificate
		if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", e.UserID, courseID, false).First(&cert).Error; err == nil {
			certID := cert.ID
			row.CertificateID = &certID
			row.CertificateStatus = cert.Status
		}

		result[i] = row
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrolled users fetched successfully!", fiber.Map{
		"course":   course.Title,
		"students": result,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// AdminGetPendingCertificates lists certificates awaiting this admin's approval
func AdminGetPendingCertificates(c *fiber.Ctx) error {
	actor, ok := c.Locals("currentUser").(*models.User)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, _ := c.Locals("validatedList").(*struct {
		Page  *int `json:"page"`
		Limit *int `json:"limit"`
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

	// Super admins see everything still short of ISSUED; admins only see the
	// stages their approval can advance.
	pendingStatuses := []string{
		courseModels.CertStatusPending,
		courseModels.CertStatusWaitForAdminApproval,
	}
	if actor.Role == models.RoleSuperAdmin {
		pendingStatuses = append(pendingStatuses,
			courseModels.CertStatusAdminApproved,
			courseModels.CertStatusWaitForSuperAdminApproval,
		)
	}

	db := database.Database.Db.Model(&courseModels.Certificate{}).
		Where("status IN ? AND is_deleted = ?", pendingStatuses, false)

	var total int64
	db.Count(&total)

	var certificates []courseModels.Certificate
	if err := db.Offset(offset).Limit(limit).Order("created_at asc").Find(&certificates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}

	type PendingCertificate struct {
		courseModels.Certificate
		StudentName  string `json:"student_name"`
		StudentEmail string `json:"student_email"`
		CourseTitle  string `json:"course_title"`
	}

	result := make([]PendingCertificate, len(certificates))
	for i, cert := range certificates {
		var student models.User
		database.Database.Db.Where("id = ?", cert.UserID).First(&student)
		var course courseModels.Course
		database.Database.Db.Where("id = ?", cert.CourseID).First(&course)

		result[i] = PendingCertificate{
			Certificate:  cert,
			StudentName:  student.Name,
			StudentEmail: student.Email,
			CourseTitle:  course.Title,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Pending certificates fetched successfully!", fiber.Map{
		"certificates": result,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// AdminGetStudentProgress returns the full per-chapter progress breakdown
// for one student on one course
func AdminGetStudentProgress(c *fiber.Ctx) error {
	if _, ok := c.Locals("currentUser").(*models.User); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)
	targetUserID := c.Locals("targetUserID").(int)

	var student models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", targetUserID, false).First(&student).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Student not found!", nil)
	}

	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", targetUserID, courseID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Student is not enrolled in this course!", nil)
	}

	report, err := ComputeCourseProgress(database.Database.Db, nil, nil, uint(targetUserID), uint(courseID))
	if err != nil {
		if err == ErrCourseNotFound {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to compute progress!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Student progress fetched successfully!", fiber.Map{
		"student": fiber.Map{
			"id":    student.ID,
			"name":  student.Name,
			"email": student.Email,
		},
		"enrollment": enrollment,
		"progress":   report,
	})
}
