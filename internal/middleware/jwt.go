package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-complaint-api/internal/auth"
	"github.com/noah-isme/campus-complaint-api/internal/utils"
)

// Locals keys populated by JWTProtected.
const (
	LocalUserID         = "user_id"
	LocalUserRole       = "user_role"
	LocalTokenID        = "token_id"
	LocalTokenExpiresAt = "token_expires_at"
)

const unauthenticatedMessage = "Unauthenticated."

// TokenVerifier validates a raw bearer token.
type TokenVerifier interface {
	Parse(token string) (*auth.Claims, error)
}

// JWTProtected returns a middleware that validates bearer tokens and refuses
// revoked ones.
func JWTProtected(verifier TokenVerifier, denylist auth.Denylist, logger zerolog.Logger) fiber.Handler {
	logger = logger.With().Str("component", "jwt_middleware").Logger()

	return func(c *fiber.Ctx) error {
		tokenString, err := auth.ExtractBearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, unauthenticatedMessage)
		}

		claims, err := verifier.Parse(tokenString)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, unauthenticatedMessage)
		}

		if denylist != nil {
			revoked, err := denylist.IsRevoked(c.UserContext(), claims.ID)
			if err != nil {
				logger.Error().Err(err).Str("correlation_id", GetCorrelationID(c)).Msg("failed to check token revocation")
				return utils.SendError(c, fiber.StatusInternalServerError, "failed to verify token")
			}
			if revoked {
				return utils.SendError(c, fiber.StatusUnauthorized, unauthenticatedMessage)
			}
		}

		userID, err := claims.UserID()
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, unauthenticatedMessage)
		}

		var expiresAt time.Time
		if claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}

		c.Locals(LocalUserID, userID)
		c.Locals(LocalUserRole, claims.Role)
		c.Locals(LocalTokenID, claims.ID)
		c.Locals(LocalTokenExpiresAt, expiresAt)

		return c.Next()
	}
}
