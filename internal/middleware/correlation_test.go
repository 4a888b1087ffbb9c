package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-complaint-api/internal/observability"
)

func correlationApp(seen *string) *fiber.App {
	app := fiber.New()
	app.Use(CorrelationID())
	app.Get("/", func(c *fiber.Ctx) error {
		*seen = observability.CorrelationID(c.UserContext())
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestCorrelationIDReusesIncomingHeader(t *testing.T) {
	var seen string
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(observability.HeaderCorrelationID, "req-123")

	resp, err := correlationApp(&seen).Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, "req-123", resp.Header.Get(observability.HeaderCorrelationID))
	require.Equal(t, "req-123", seen)
}

func TestCorrelationIDFallsBackToRequestID(t *testing.T) {
	var seen string
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(fiber.HeaderXRequestID, "upstream-7")

	resp, err := correlationApp(&seen).Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, "upstream-7", resp.Header.Get(observability.HeaderCorrelationID))
}

func TestCorrelationIDReplacesUnusableValues(t *testing.T) {
	for _, bad := range []string{"has space", strings.Repeat("x", 200)} {
		var seen string
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(observability.HeaderCorrelationID, bad)

		resp, err := correlationApp(&seen).Test(req, -1)
		require.NoError(t, err)
		got := resp.Header.Get(observability.HeaderCorrelationID)
		require.NotEqual(t, bad, got)
		require.Len(t, got, 36)
		require.Equal(t, got, seen)
	}
}
