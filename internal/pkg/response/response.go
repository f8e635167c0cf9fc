// Package response writes the JSON bodies of the console's machine-facing
// endpoints: the health check and errors of non-HTML requests.
package response

import "github.com/gofiber/fiber/v2"

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success sends a 200 response
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends a failed response. data may be nil.
func Error(c *fiber.Ctx, statusCode int, message string, data interface{}) error {
	return c.Status(statusCode).JSON(Response{
		Success: false,
		Error:   message,
		Data:    data,
	})
}
