package utils

import "github.com/gofiber/fiber/v2"

// APIResponse is the envelope returned by every endpoint.
type APIResponse struct {
	Status  bool                `json:"status"`
	Message string              `json:"message"`
	Data    interface{}         `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// SendSuccess sends a 200 response with a message and optional data.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	return SendSuccessWithStatus(c, fiber.StatusOK, message, data)
}

// SendSuccessWithStatus sends a success payload using the provided HTTP status code.
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, data interface{}) error {
	if message == "" {
		message = "success"
	}
	if status == 0 {
		status = fiber.StatusOK
	}

	return c.Status(status).JSON(APIResponse{
		Status:  true,
		Message: message,
		Data:    data,
	})
}

// SendError sends an error JSON response with the given status code.
func SendError(c *fiber.Ctx, status int, message string) error {
	if message == "" {
		message = "error"
	}

	return c.Status(status).JSON(APIResponse{
		Status:  false,
		Message: message,
	})
}

// SendValidationError sends a 422 with per-field messages.
func SendValidationError(c *fiber.Ctx, message string, fields map[string][]string) error {
	if message == "" {
		message = "The given data was invalid."
	}

	return c.Status(fiber.StatusUnprocessableEntity).JSON(APIResponse{
		Status:  false,
		Message: message,
		Errors:  fields,
	})
}
