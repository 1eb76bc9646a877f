package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"shopazon/internal/api"
	"shopazon/internal/toast"
	"shopazon/internal/view"
)

// viewSuccess renders a success view model with the pending toasts attached.
func viewSuccess(c *fiber.Ctx, toasts *toast.Store, data interface{}) error {
	return c.JSON(view.Model{State: view.StateSuccess, Data: data, Toasts: toasts.Active()})
}

// viewEmpty renders the designated empty state, distinct from an error.
func viewEmpty(c *fiber.Ctx, toasts *toast.Store, message string) error {
	return c.JSON(view.Model{State: view.StateEmpty, Message: message, Toasts: toasts.Active()})
}

// viewError renders an inline page-load failure.
func viewError(c *fiber.Ctx, toasts *toast.Store, err error, fallback string) error {
	return c.Status(errStatus(err)).JSON(view.Model{
		State:   view.StateError,
		Message: api.FriendlyMessage(err, fallback),
		Toasts:  toasts.Active(),
	})
}

// errStatus relays the upstream status for API failures and maps transport
// failures to 502.
func errStatus(err error) int {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Status > 0 {
		return apiErr.Status
	}
	return http.StatusBadGateway
}

// validationMessages flattens validator errors into a field → message map.
func validationMessages(err error) map[string]string {
	messages := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			messages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' rule", e.Field(), e.Tag())
		}
	}
	return messages
}

// invalidBody is the response for an unparseable request body.
func invalidBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

// failedValidation is the response for a request that failed local validation.
func failedValidation(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  validationMessages(err),
	})
}

// confirmed reports whether a destructive request carries the explicit
// confirmation field. Without it nothing is sent to the backend.
func confirmed(c *fiber.Ctx) bool {
	return c.FormValue("confirm") == "true" || c.Query("confirm") == "true"
}

// confirmationRequired is the response for a destructive action submitted
// without its confirmation step.
func confirmationRequired(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"state":   "confirm_required",
		"message": "This action requires confirmation",
	})
}
