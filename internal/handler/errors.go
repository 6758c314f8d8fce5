package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/slot-reservation-system/internal/service"
)

// errorResponse pairs a sentinel with the status and message clients see.
type errorResponse struct {
	err     error
	status  int
	message string
}

// Specific sentinels are matched before their kinds.
var errorResponses = []errorResponse{
	{service.ErrInvalidNumber, fiber.StatusBadRequest, "invalid request: number out of range"},
	{service.ErrOutOfRange, fiber.StatusBadRequest, "invalid request: challenge size must be between 50 and 300"},
	{service.ErrInvalidEmail, fiber.StatusBadRequest, "invalid request: email is invalid"},
	{service.ErrWeakPassword, fiber.StatusBadRequest, "invalid request: password must be at least 6 characters"},
	{service.ErrPasswordTooLong, fiber.StatusBadRequest, "invalid request: password must be at most 72 bytes"},
	{service.ErrSlotNotFound, fiber.StatusNotFound, "slot not found"},
	{service.ErrAdminNotFound, fiber.StatusNotFound, "admin not found"},
	{service.ErrAlreadyTaken, fiber.StatusConflict, "number already taken"},
	{service.ErrSlotConfirmed, fiber.StatusConflict, "slot already confirmed"},
	{service.ErrEmailInUse, fiber.StatusConflict, "email already in use"},
	{service.ErrAdminExists, fiber.StatusConflict, "admin already exists"},
	{service.ErrInvalidCredential, fiber.StatusUnauthorized, "invalid email or password"},
	{service.ErrUnauthenticated, fiber.StatusUnauthorized, "unauthenticated"},
	{service.ErrForbidden, fiber.StatusForbidden, "forbidden"},
	{service.ErrTransient, fiber.StatusServiceUnavailable, "service unavailable"},
	{service.ErrValidation, fiber.StatusBadRequest, "invalid request"},
	{service.ErrNotFound, fiber.StatusNotFound, "not found"},
	{service.ErrConflict, fiber.StatusConflict, "conflict"},
	{service.ErrPermission, fiber.StatusForbidden, "permission denied"},
}

// statusFor maps a service error to its HTTP status and client message.
func statusFor(err error) (int, string) {
	for _, r := range errorResponses {
		if errors.Is(err, r.err) {
			return r.status, r.message
		}
	}
	return fiber.StatusInternalServerError, "internal server error"
}

// respondError writes the JSON error body for err. Unexpected and
// unavailable errors are logged with the request id.
func respondError(c *fiber.Ctx, err error) error {
	status, message := statusFor(err)

	if status >= fiber.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("request failed")
	}

	return c.Status(status).JSON(fiber.Map{"error": message})
}

// badRequest writes a 400 with message.
func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}
