package handlers

import (
	"github.com/gofiber/fiber/v2"

	"shopazon/internal/cart"
	"shopazon/internal/toast"
)

// UIHandler serves the shared chrome endpoints: the toast queue and the
// header cart badge.
type UIHandler struct {
	toasts *toast.Store
	cart   *cart.Mirror
}

// NewUIHandler creates a new UIHandler.
func NewUIHandler(toasts *toast.Store, mirror *cart.Mirror) *UIHandler {
	return &UIHandler{toasts: toasts, cart: mirror}
}

// RegisterRoutes registers the chrome routes with the Fiber app.
func (h *UIHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ui/toasts", h.HandleToasts)
	router.Delete("/ui/toasts/:id", h.HandleDismiss)
	router.Get("/ui/cart-badge", h.HandleCartBadge)
}

// HandleToasts lists the pending toasts, newest first.
func (h *UIHandler) HandleToasts(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"toasts": h.toasts.Active()})
}

// HandleDismiss dismisses one toast. Unknown ids are a no-op.
func (h *UIHandler) HandleDismiss(c *fiber.Ctx) error {
	h.toasts.Dismiss(c.Params("id"))
	return c.JSON(fiber.Map{"toasts": h.toasts.Active()})
}

// HandleCartBadge returns the cart line summary for the header badge.
func (h *UIHandler) HandleCartBadge(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"count": h.cart.Count()})
}
