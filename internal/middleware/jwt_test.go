package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-complaint-api/internal/auth"
	"github.com/noah-isme/campus-complaint-api/internal/models"
)

func protectedApp(issuer *auth.TokenIssuer, denylist auth.Denylist) *fiber.App {
	app := fiber.New()
	app.Use(JWTProtected(issuer, denylist, zerolog.Nop()))
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"id":       c.Locals(LocalUserID),
			"role":     c.Locals(LocalUserRole),
			"token_id": c.Locals(LocalTokenID),
		})
	})
	return app
}

func bearerRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	return req
}

func TestJWTProtectedPopulatesLocals(t *testing.T) {
	issuer := auth.NewTokenIssuer("secret", time.Hour, "campus-complaints")
	issued, err := issuer.Issue(models.User{ID: 42, Role: models.RoleStaff})
	require.NoError(t, err)

	resp, err := protectedApp(issuer, auth.NewMemoryDenylist()).Test(bearerRequest(issued.Token))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestJWTProtectedRejectsMissingAndForgedTokens(t *testing.T) {
	issuer := auth.NewTokenIssuer("secret", time.Hour, "campus-complaints")
	forger := auth.NewTokenIssuer("other-secret", time.Hour, "campus-complaints")
	forged, err := forger.Issue(models.User{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)

	app := protectedApp(issuer, auth.NewMemoryDenylist())

	resp, err := app.Test(bearerRequest(""))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(bearerRequest(forged.Token))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtectedRejectsRevokedToken(t *testing.T) {
	issuer := auth.NewTokenIssuer("secret", time.Hour, "campus-complaints")
	issued, err := issuer.Issue(models.User{ID: 7, Role: models.RoleStudent})
	require.NoError(t, err)

	denylist := auth.NewMemoryDenylist()
	require.NoError(t, denylist.Revoke(context.Background(), issued.ID, issued.ExpiresAt))

	resp, err := protectedApp(issuer, denylist).Test(bearerRequest(issued.Token))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
