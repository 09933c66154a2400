// Package handlers serves the JSON API under /api.
package handlers

import (
	"errors"

	"nika.id/configs/configslog"
	"nika.id/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	CodeInvalidInput    = "INVALID_INPUT"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
	CodeSlugTaken       = "SLUG_TAKEN"
	CodeFileTooLarge    = "FILE_TOO_LARGE"
	CodeUnsupportedFile = "UNSUPPORTED_FILE_TYPE"
)

type apiError struct {
	status int
	code   string
}

var errorTable = []struct {
	err error
	apiError
}{
	{services.ErrInvalidSubmission, apiError{fiber.StatusBadRequest, CodeInvalidInput}},
	{services.ErrInvalidInvitationData, apiError{fiber.StatusBadRequest, CodeInvalidInput}},
	{services.ErrInvalidTemplate, apiError{fiber.StatusBadRequest, CodeInvalidInput}},
	{services.ErrInvalidThemeFile, apiError{fiber.StatusBadRequest, CodeInvalidInput}},
	{services.ErrTemplateUnresolvable, apiError{fiber.StatusBadRequest, "TEMPLATE_UNRESOLVABLE"}},
	{services.ErrInvalidSettings, apiError{fiber.StatusBadRequest, CodeInvalidInput}},
	{services.ErrInvalidSlug, apiError{fiber.StatusBadRequest, CodeInvalidInput}},
	{services.ErrInvalidPhone, apiError{fiber.StatusBadRequest, CodeInvalidInput}},
	{services.ErrWeakPassword, apiError{fiber.StatusBadRequest, CodeInvalidInput}},
	{services.ErrInvalidRegister, apiError{fiber.StatusBadRequest, CodeInvalidInput}},
	{services.ErrPasswordMismatch, apiError{fiber.StatusBadRequest, CodeInvalidInput}},
	{services.ErrUnknownPlan, apiError{fiber.StatusBadRequest, CodeInvalidInput}},
	{services.ErrInvalidNotification, apiError{fiber.StatusBadRequest, CodeInvalidInput}},
	{services.ErrInvalidIdempotencyID, apiError{fiber.StatusBadRequest, CodeInvalidInput}},
	{services.ErrInvalidAction, apiError{fiber.StatusBadRequest, CodeInvalidInput}},
	{services.ErrUploadEmpty, apiError{fiber.StatusBadRequest, CodeInvalidInput}},

	{services.ErrInvalidCredentials, apiError{fiber.StatusUnauthorized, CodeUnauthorized}},
	{services.ErrImpersonationInvalid, apiError{fiber.StatusUnauthorized, CodeUnauthorized}},
	{services.ErrInvalidSignature, apiError{fiber.StatusUnauthorized, "INVALID_SIGNATURE"}},

	{services.ErrAccountInactive, apiError{fiber.StatusForbidden, CodeForbidden}},
	{services.ErrCannotDeleteSelf, apiError{fiber.StatusForbidden, CodeForbidden}},
	{services.ErrImpersonateAdmin, apiError{fiber.StatusForbidden, CodeForbidden}},
	{services.ErrSimulatorDisabled, apiError{fiber.StatusForbidden, CodeForbidden}},
	{services.ErrRSVPDisabled, apiError{fiber.StatusForbidden, "RSVP_DISABLED"}},
	{services.ErrPlanRequired, apiError{fiber.StatusForbidden, "PLAN_REQUIRED"}},

	{services.ErrUserNotFound, apiError{fiber.StatusNotFound, "USER_NOT_FOUND"}},
	{services.ErrInvitationNotFound, apiError{fiber.StatusNotFound, "INVITATION_NOT_FOUND"}},
	{services.ErrTemplateNotFound, apiError{fiber.StatusNotFound, "TEMPLATE_NOT_FOUND"}},
	{services.ErrTransactionNotFound, apiError{fiber.StatusNotFound, "TRANSACTION_NOT_FOUND"}},
	{services.ErrMessageNotFound, apiError{fiber.StatusNotFound, "MESSAGE_NOT_FOUND"}},

	{services.ErrSlugTaken, apiError{fiber.StatusConflict, CodeSlugTaken}},
	{services.ErrTemplateSlugTaken, apiError{fiber.StatusConflict, CodeSlugTaken}},
	{services.ErrEmailTaken, apiError{fiber.StatusConflict, "EMAIL_TAKEN"}},
	{services.ErrInvalidTransition, apiError{fiber.StatusConflict, "INVALID_TRANSITION"}},
	{services.ErrGuestLimitReached, apiError{fiber.StatusConflict, "GUEST_LIMIT_REACHED"}},

	{services.ErrInvitationTooLarge, apiError{fiber.StatusRequestEntityTooLarge, CodeFileTooLarge}},
	{services.ErrUploadTooLarge, apiError{fiber.StatusRequestEntityTooLarge, CodeFileTooLarge}},
	{services.ErrUploadType, apiError{fiber.StatusUnsupportedMediaType, CodeUnsupportedFile}},

	{services.ErrGatewayUnavailable, apiError{fiber.StatusBadGateway, "PAYMENT_GATEWAY_ERROR"}},
	{services.ErrStorageNotEnabled, apiError{fiber.StatusServiceUnavailable, "STORAGE_UNAVAILABLE"}},
}

func lookupError(err error) (apiError, bool) {
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return e.apiError, true
		}
	}
	return apiError{}, false
}

// respondError maps a service error to its status and code. Anything unmapped is logged and
// answered with a bare 500 so internals never reach the client.
func respondError(c *fiber.Ctx, err error) error {
	if e, ok := lookupError(err); ok {
		return c.Status(e.status).JSON(fiber.Map{"error": e.code, "message": err.Error()})
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": codeForStatus(fe.Code), "message": fe.Message})
	}
	configslog.Log.Error("API request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": CodeInternal})
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return CodeInvalidInput
	case fiber.StatusUnauthorized:
		return CodeUnauthorized
	case fiber.StatusForbidden:
		return CodeForbidden
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusRequestEntityTooLarge:
		return CodeFileTooLarge
	case fiber.StatusTooManyRequests:
		return "TOO_MANY_REQUESTS"
	}
	if status >= 500 {
		return CodeInternal
	}
	return CodeInvalidInput
}

// ErrorHandler is the fiber ErrorHandler for /api routes.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return respondError(c, err)
}

func invalidInput(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": CodeInvalidInput})
}
