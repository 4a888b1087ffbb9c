package handler

import (
	"errors"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-complaint-api/internal/apperrors"
	"github.com/noah-isme/campus-complaint-api/internal/middleware"
	"github.com/noah-isme/campus-complaint-api/internal/models"
	"github.com/noah-isme/campus-complaint-api/internal/policy"
	"github.com/noah-isme/campus-complaint-api/internal/utils"
)

const attachmentsField = "attachments"

var errInvalidQuery = errors.New("invalid query parameter")

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, errInvalidQuery
	}
	return parsed, nil
}

func parseQueryUint(c *fiber.Ctx, key string) (*uint, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return nil, errInvalidQuery
	}
	id := uint(parsed)
	return &id, nil
}

func parseQueryBool(c *fiber.Ctx, key string) (*bool, error) {
	value := strings.ToLower(strings.TrimSpace(c.Query(key)))
	switch value {
	case "":
		return nil, nil
	case "1", "true", "yes", "on":
		v := true
		return &v, nil
	case "0", "false", "no", "off":
		v := false
		return &v, nil
	default:
		return nil, errInvalidQuery
	}
}

func parseIDParam(c *fiber.Ctx, name string) (uint, bool) {
	parsed, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || parsed == 0 {
		return 0, false
	}
	return uint(parsed), true
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals(middleware.LocalUserID); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) models.Role {
	if v, ok := c.Locals(middleware.LocalUserRole).(string); ok {
		if role, known := models.ParseRole(v); known {
			return role
		}
	}
	return ""
}

func actorFromContext(c *fiber.Ctx) policy.Actor {
	return policy.Actor{ID: userIDFromContext(c), Role: userRoleFromContext(c)}
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

// isMultipart reports whether the request carries form-data uploads.
func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm)
}

// uploadedAttachments returns files sent under "attachments" or "attachments[]".
func uploadedAttachments(c *fiber.Ctx) ([]*multipart.FileHeader, error) {
	if !isMultipart(c) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	files := append([]*multipart.FileHeader{}, form.File[attachmentsField]...)
	files = append(files, form.File[attachmentsField+"[]"]...)
	return files, nil
}

// parseBody decodes JSON or form payloads into dst. An empty body leaves dst untouched.
func parseBody(c *fiber.Ctx, dst interface{}) error {
	if len(c.Body()) == 0 && !isMultipart(c) {
		return nil
	}
	return c.BodyParser(dst)
}

// writeError maps service errors onto the response envelope.
func writeError(c *fiber.Ctx, logger zerolog.Logger, err error, fallback string) error {
	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		return utils.SendValidationError(c, firstValidationMessage(validationErr), validationErr.Fields)
	}

	switch {
	case errors.Is(err, apperrors.ErrUnauthorized):
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, apperrors.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, apperrors.ErrConflict):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	requestLogger(logger, c).Error().Err(err).Msg(fallback)
	return utils.SendError(c, fiber.StatusInternalServerError, fallback)
}

func firstValidationMessage(err *apperrors.ValidationError) string {
	if err.Empty() {
		return ""
	}
	var first string
	for field, messages := range err.Fields {
		if len(messages) == 0 {
			continue
		}
		if first == "" || field < first {
			first = field
		}
	}
	if first == "" {
		return ""
	}
	return err.Fields[first][0]
}

func withGuards(guards []fiber.Handler, handler fiber.Handler) []fiber.Handler {
	chain := make([]fiber.Handler, 0, len(guards)+1)
	chain = append(chain, guards...)
	return append(chain, handler)
}

func invalidPayload(c *fiber.Ctx) error {
	return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
}
