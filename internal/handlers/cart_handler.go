package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"shopazon/internal/api"
	"shopazon/internal/cart"
	"shopazon/internal/models"
	"shopazon/internal/session"
	"shopazon/internal/toast"
	"shopazon/internal/view"
)

// CartHandler serves the cart page and its mutations. Every mutation feeds
// its own response back into the mirror so the badge stays consistent
// without a second round trip.
type CartHandler struct {
	api      *api.Client
	session  *session.Store
	cart     *cart.Mirror
	toasts   *toast.Store
	validate *validator.Validate
	logger   *zap.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(client *api.Client, sessionStore *session.Store, mirror *cart.Mirror, toasts *toast.Store, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		api:      client,
		session:  sessionStore,
		cart:     mirror,
		toasts:   toasts,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/cart", h.HandleCartPage)
	router.Post("/cart/items", h.HandleAddItem)
	router.Put("/cart/items/:id", h.HandleUpdateQuantity)
	router.Delete("/cart/items/:id", h.HandleRemoveItem)
	router.Delete("/cart/clear", h.HandleClear)
}

// HandleCartPage renders the cart with line details and totals.
func (h *CartHandler) HandleCartPage(c *fiber.Ctx) error {
	h.cart.Refresh(c.UserContext())

	current := h.cart.Cart()
	if current == nil || len(current.Items) == 0 {
		return viewEmpty(c, h.toasts, "Your cart is empty.")
	}

	origin := h.api.Origin()
	lines := make([]fiber.Map, 0, len(current.Items))
	for _, item := range current.Items {
		line := fiber.Map{
			"id":         item.ID,
			"product_id": item.ProductID,
			"quantity":   item.Quantity,
		}
		if item.Product != nil {
			imageURL := ""
			if len(item.Product.Images) > 0 {
				imageURL = view.ResolveImageURL(origin, item.Product.Images[0].URL)
			}
			line["name"] = item.Product.Name
			line["price"] = item.Product.Price.StringFixed(2)
			if item.Product.DiscountPrice != nil {
				line["discount_price"] = item.Product.DiscountPrice.StringFixed(2)
			}
			line["image_url"] = imageURL
		}
		lines = append(lines, line)
	}

	return viewSuccess(c, h.toasts, fiber.Map{
		"cart_id":    current.ID,
		"items":      lines,
		"subtotal":   current.Subtotal().StringFixed(2),
		"cart_count": current.TotalQuantity(),
	})
}

// HandleAddItem adds a product to the server cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req models.CartAddRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}
	if err := h.validate.Struct(req); err != nil {
		return failedValidation(c, err)
	}

	updated, err := h.api.AddCartItem(c.UserContext(), req)
	if err != nil {
		h.toasts.Error(api.FriendlyMessage(err, "Could not add the item to your cart."))
		return viewError(c, h.toasts, err, "Could not add the item to your cart.")
	}

	h.cart.Adopt(updated)
	h.toasts.Success("Added to cart.")
	return viewSuccess(c, h.toasts, fiber.Map{"cart_count": h.cart.Count()})
}

// HandleUpdateQuantity changes a line quantity. Quantities below 1 are
// clamped locally and never sent to the server; removing a line is its own
// operation.
func (h *CartHandler) HandleUpdateQuantity(c *fiber.Ctx) error {
	var req models.CartQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	updated, err := h.api.UpdateCartItem(c.UserContext(), c.Params("id"), req)
	if err != nil {
		h.toasts.Error(api.FriendlyMessage(err, "Could not update the quantity."))
		return viewError(c, h.toasts, err, "Could not update the quantity.")
	}

	h.cart.Adopt(updated)
	return viewSuccess(c, h.toasts, fiber.Map{"cart_count": h.cart.Count()})
}

// HandleRemoveItem removes a line from the cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	updated, err := h.api.RemoveCartItem(c.UserContext(), c.Params("id"))
	if err != nil {
		h.toasts.Error(api.FriendlyMessage(err, "Could not remove the item."))
		return viewError(c, h.toasts, err, "Could not remove the item.")
	}

	h.cart.Adopt(updated)
	h.toasts.Success("Item removed.")
	return viewSuccess(c, h.toasts, fiber.Map{"cart_count": h.cart.Count()})
}

// HandleClear empties the cart.
func (h *CartHandler) HandleClear(c *fiber.Ctx) error {
	current := h.cart.Cart()
	if current == nil {
		return viewEmpty(c, h.toasts, "Your cart is already empty.")
	}

	updated, err := h.api.ClearCart(c.UserContext(), current.ID.String())
	if err != nil {
		h.toasts.Error(api.FriendlyMessage(err, "Could not clear your cart."))
		return viewError(c, h.toasts, err, "Could not clear your cart.")
	}

	h.cart.Adopt(updated)
	h.toasts.Success("Cart cleared.")
	return viewSuccess(c, h.toasts, fiber.Map{"cart_count": h.cart.Count()})
}
