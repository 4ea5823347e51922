package courseValidator

import (
	"lms/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

func CertificateID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		certID, ok := parseIDParam(c, "certificate_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Certificate ID!", nil)
		}

		c.Locals("certificateID", certID)
		return c.Next()
	}
}

func ApproveCertificate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			CertificateID uint `json:"certificate_id" validate:"required"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Certificate ID is required!", nil)
		}

		c.Locals("validatedApprove", reqData)
		return c.Next()
	}
}

func RejectCertificates() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			CertificateIDs []uint `json:"certificate_ids" validate:"required,min=1"`
			Reason         string `json:"reason" validate:"required"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			errors := make(map[string]string)
			for _, fieldErr := range err.(validator.ValidationErrors) {
				switch fieldErr.Field() {
				case "CertificateIDs":
					errors["certificate_ids"] = "At least one certificate ID is required!"
				case "Reason":
					errors["reason"] = "Rejection reason is required!"
				}
			}
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedReject", reqData)
		return c.Next()
	}
}

func RevokeCertificate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		certID, ok := parseIDParam(c, "certificate_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Certificate ID!", nil)
		}

		reqData := new(struct {
			Reason string `json:"reason"`
		})
		// Reason is optional, body may be empty
		if len(c.Body()) > 0 {
			if err := c.BodyParser(reqData); err != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
			}
		}

		c.Locals("certificateID", certID)
		c.Locals("validatedRevoke", reqData)
		return c.Next()
	}
}

func BulkCertificateAction() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Action         string `json:"action" validate:"required,oneof=send_email revoke reinstate"`
			CertificateIDs []uint `json:"certificate_ids" validate:"required,min=1"`
			Reason         string `json:"reason"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			errors := make(map[string]string)
			for _, fieldErr := range err.(validator.ValidationErrors) {
				switch fieldErr.Field() {
				case "Action":
					errors["action"] = "Action must be send_email, revoke or reinstate!"
				case "CertificateIDs":
					errors["certificate_ids"] = "At least one certificate ID is required!"
				}
			}
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedBulkAction", reqData)
		return c.Next()
	}
}
