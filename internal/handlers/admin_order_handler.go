package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"shopazon/internal/api"
	"shopazon/internal/toast"
	"shopazon/internal/view"
)

// AdminOrderHandler serves the admin dashboard and the read-only order
// management views.
type AdminOrderHandler struct {
	api    *api.Client
	toasts *toast.Store
	logger *zap.Logger
}

// NewAdminOrderHandler creates a new AdminOrderHandler.
func NewAdminOrderHandler(client *api.Client, toasts *toast.Store, logger *zap.Logger) *AdminOrderHandler {
	return &AdminOrderHandler{
		api:    client,
		toasts: toasts,
		logger: logger,
	}
}

// RegisterRoutes registers the admin dashboard and order routes.
func (h *AdminOrderHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/dashboard", h.HandleDashboard)
	router.Get("/orders", h.HandleList)
	router.Get("/orders/:id", h.HandleDetail)
}

// HandleDashboard renders entity counts and the most recent orders. Each
// section loads independently; a failed count renders as -1 with a message
// rather than sinking the page.
func (h *AdminOrderHandler) HandleDashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()
	counts := fiber.Map{}

	if products, err := h.api.ListProducts(ctx); err != nil {
		h.logger.Warn("dashboard product count failed", zap.Error(err))
		counts["products"] = -1
	} else {
		counts["products"] = len(products)
	}

	if categories, err := h.api.ListCategories(ctx); err != nil {
		h.logger.Warn("dashboard category count failed", zap.Error(err))
		counts["categories"] = -1
	} else {
		counts["categories"] = len(categories)
	}

	if customers, err := h.api.ListUsers(ctx); err != nil {
		h.logger.Warn("dashboard customer count failed", zap.Error(err))
		counts["customers"] = -1
	} else {
		counts["customers"] = len(customers)
	}

	data := fiber.Map{"counts": counts}
	if orders, err := h.api.ListOrders(ctx, ""); err != nil {
		h.logger.Warn("dashboard orders failed", zap.Error(err))
		counts["orders"] = -1
	} else {
		counts["orders"] = len(orders)
		recent := orders
		if len(recent) > 5 {
			recent = recent[:5]
		}
		rows := make([]fiber.Map, 0, len(recent))
		for _, o := range recent {
			rows = append(rows, fiber.Map{
				"id":           o.ID,
				"status":       o.Status,
				"status_style": view.StatusStyle(o.Status),
				"total_amount": o.TotalAmount.StringFixed(2),
				"created_at":   o.CreatedAt,
			})
		}
		data["recent_orders"] = rows
	}

	return viewSuccess(c, h.toasts, data)
}

// HandleList renders all orders with a client-side status filter.
func (h *AdminOrderHandler) HandleList(c *fiber.Ctx) error {
	orders, err := h.api.ListOrders(c.UserContext(), "")
	if err != nil {
		return viewError(c, h.toasts, err, "Could not load orders.")
	}

	filtered := view.FilterOrders(orders, c.Query("status"))
	if len(filtered) == 0 {
		return viewEmpty(c, h.toasts, "No orders found.")
	}

	rows := make([]fiber.Map, 0, len(filtered))
	for _, o := range filtered {
		rows = append(rows, fiber.Map{
			"id":           o.ID,
			"user_id":      o.UserID,
			"status":       o.Status,
			"status_style": view.StatusStyle(o.Status),
			"total_amount": o.TotalAmount.StringFixed(2),
			"created_at":   o.CreatedAt,
		})
	}
	return viewSuccess(c, h.toasts, fiber.Map{
		"orders":     rows,
		"pagination": view.Paginate(len(rows)),
	})
}

// HandleDetail renders one order read-only, with shipping and item details.
func (h *AdminOrderHandler) HandleDetail(c *fiber.Ctx) error {
	order, err := h.api.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return viewError(c, h.toasts, err, "Could not load this order.")
	}
	return viewSuccess(c, h.toasts, fiber.Map{
		"order":        order,
		"status_style": view.StatusStyle(order.Status),
	})
}
