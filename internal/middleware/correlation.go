package middleware

import (
	"strings"
	"unicode"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/noah-isme/campus-complaint-api/internal/observability"
)

// LocalCorrelationID is the fiber local holding the request correlation id.
const LocalCorrelationID = "correlation_id"

const maxCorrelationIDLength = 128

// CorrelationID reuses a caller supplied X-Correlation-ID (or X-Request-ID)
// when it is printable and short, otherwise mints a uuid. The id is echoed in
// the response and stored on the user context for services and event payloads.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := acceptCorrelationID(c.Get(observability.HeaderCorrelationID))
		if id == "" {
			id = acceptCorrelationID(c.Get(fiber.HeaderXRequestID))
		}
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(LocalCorrelationID, id)
		c.Set(observability.HeaderCorrelationID, id)
		c.SetUserContext(observability.WithCorrelationID(c.UserContext(), id))

		return c.Next()
	}
}

// GetCorrelationID returns the correlation id bound to the active request.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals(LocalCorrelationID).(string); ok {
		return id
	}
	return observability.CorrelationID(c.UserContext())
}

func acceptCorrelationID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxCorrelationIDLength {
		return ""
	}
	for _, r := range raw {
		if !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return ""
		}
	}
	return raw
}
