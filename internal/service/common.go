package service

import (
	"context"
	"errors"
	"html"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-complaint-api/internal/apperrors"
	"github.com/noah-isme/campus-complaint-api/internal/policy"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

func validatePayload(v *validator.Validate, payload interface{}) error {
	if err := v.Struct(payload); err != nil {
		return apperrors.FromValidator(err)
	}
	return nil
}

// notFoundAs maps gorm.ErrRecordNotFound to a NotFound error with the message.
func notFoundAs(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(message)
	}
	return err
}

func requireCapability(actor policy.Actor, capability policy.Capability, message string) error {
	if !actor.Authenticated() {
		return apperrors.Unauthorized("Unauthenticated.")
	}
	if !actor.Can(capability) {
		return apperrors.Forbidden(message)
	}
	return nil
}

func requireActor(actor policy.Actor) error {
	if !actor.Authenticated() {
		return apperrors.Unauthorized("Unauthenticated.")
	}
	return nil
}

func normalizePaging(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// cleanText strips markup from user supplied text and stores it unescaped.
func cleanText(sanitizer *bluemonday.Policy, value string) string {
	return strings.TrimSpace(html.UnescapeString(sanitizer.Sanitize(value)))
}

func dropDashboardCache(ctx context.Context, dashboard DashboardInvalidator) {
	if dashboard != nil {
		dashboard.Invalidate(ctx)
	}
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func boolValue(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
