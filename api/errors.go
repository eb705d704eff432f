package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"weathernow/collector"
)

// errorStatus maps a failure to the HTTP status and kind reported to clients
func errorStatus(err error) (int, string) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, "request"
	}

	kind := collector.ErrorKind(err)
	switch kind {
	case "invalid_request":
		return fiber.StatusBadRequest, kind
	case "not_found":
		return fiber.StatusNotFound, kind
	case "configuration":
		return fiber.StatusInternalServerError, kind
	case "superseded":
		return fiber.StatusConflict, kind
	case "location_unavailable", "location_permission_denied", "location_timeout":
		return fiber.StatusServiceUnavailable, kind
	}
	// unauthorized, invalid_payload and transport are all upstream failures
	return fiber.StatusBadGateway, kind
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code, kind := errorStatus(err)

	message := collector.UserMessage(err)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		message = fe.Message
	}

	if code >= fiber.StatusInternalServerError {
		s.logger.Warn("request failed", zap.String("path", c.Path()), zap.Int("status", code), zap.Error(err))
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"kind":    kind,
		"message": message,
	})
}
