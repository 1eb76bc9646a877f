package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"shopazon/internal/api"
	"shopazon/internal/toast"
	"shopazon/internal/view"
)

// AdminCustomerHandler serves the admin customer list.
type AdminCustomerHandler struct {
	api    *api.Client
	toasts *toast.Store
	logger *zap.Logger
}

// NewAdminCustomerHandler creates a new AdminCustomerHandler.
func NewAdminCustomerHandler(client *api.Client, toasts *toast.Store, logger *zap.Logger) *AdminCustomerHandler {
	return &AdminCustomerHandler{
		api:    client,
		toasts: toasts,
		logger: logger,
	}
}

// RegisterRoutes registers the admin customer routes.
func (h *AdminCustomerHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/customers", h.HandleList)
}

// HandleList renders the customer table with a client-side name/email search.
func (h *AdminCustomerHandler) HandleList(c *fiber.Ctx) error {
	users, err := h.api.ListUsers(c.UserContext())
	if err != nil {
		return viewError(c, h.toasts, err, "Could not load customers.")
	}

	filtered := view.SearchUsers(users, c.Query("q"))
	if len(filtered) == 0 {
		return viewEmpty(c, h.toasts, "No customers found.")
	}
	return viewSuccess(c, h.toasts, fiber.Map{
		"customers":  filtered,
		"pagination": view.Paginate(len(filtered)),
	})
}
