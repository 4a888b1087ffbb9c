package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-complaint-api/internal/dto"
	"github.com/noah-isme/campus-complaint-api/internal/middleware"
	"github.com/noah-isme/campus-complaint-api/internal/service"
	"github.com/noah-isme/campus-complaint-api/internal/utils"
)

// AuthHandler exposes account endpoints: sign up, login, logout and the profile.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// RegisterPublic attaches the unauthenticated routes. guards run before each one.
func (h *AuthHandler) RegisterPublic(router fiber.Router, guards ...fiber.Handler) {
	router.Post("/register", withGuards(guards, h.register)...)
	router.Post("/login", withGuards(guards, h.login)...)
}

// Register attaches the routes that require a bearer token.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/logout", h.logout)
	router.Get("/user", h.me)
	router.Put("/user", h.updateProfile)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := parseBody(c, &payload); err != nil {
		return invalidPayload(c)
	}

	result, err := h.service.Register(c.UserContext(), payload)
	if err != nil {
		return writeError(c, h.logger, err, "failed to register user")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "User registered successfully", result)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := parseBody(c, &payload); err != nil {
		return invalidPayload(c)
	}

	result, err := h.service.Login(c.UserContext(), payload)
	if err != nil {
		return writeError(c, h.logger, err, "failed to log in")
	}

	return utils.SendSuccess(c, "Login successful", result)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	tokenID, _ := c.Locals(middleware.LocalTokenID).(string)
	expiresAt, _ := c.Locals(middleware.LocalTokenExpiresAt).(time.Time)

	if err := h.service.Logout(c.UserContext(), tokenID, expiresAt); err != nil {
		return writeError(c, h.logger, err, "failed to log out")
	}

	return utils.SendSuccess(c, "Logged out successfully", nil)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	user, err := h.service.Me(c.UserContext(), actorFromContext(c))
	if err != nil {
		return writeError(c, h.logger, err, "failed to load profile")
	}

	return utils.SendSuccess(c, "User retrieved successfully", user)
}

func (h *AuthHandler) updateProfile(c *fiber.Ctx) error {
	var payload dto.UpdateProfileRequest
	if err := parseBody(c, &payload); err != nil {
		return invalidPayload(c)
	}

	user, err := h.service.UpdateProfile(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return writeError(c, h.logger, err, "failed to update profile")
	}

	return utils.SendSuccess(c, "Profile updated successfully", user)
}
