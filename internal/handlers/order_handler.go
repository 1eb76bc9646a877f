package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"shopazon/internal/api"
	"shopazon/internal/middleware"
	"shopazon/internal/toast"
	"shopazon/internal/view"
	"shopazon/pkg/rabbitmq"
)

// OrderHandler serves the customer's order history and order detail views,
// including the item edits allowed while an order is still pending.
type OrderHandler struct {
	api    *api.Client
	toasts *toast.Store
	events *rabbitmq.Publisher
	logger *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(client *api.Client, toasts *toast.Store, events *rabbitmq.Publisher, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		api:    client,
		toasts: toasts,
		events: events,
		logger: logger,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/orders", h.HandleHistory)
	router.Get("/orders/:id", h.HandleDetail)
	router.Put("/orders/:id/items/:itemId", h.HandleUpdateItem)
	router.Delete("/orders/:id/items/:itemId", h.HandleRemoveItem)
	router.Delete("/orders/:id", h.HandleCancel)
}

// HandleHistory renders the signed-in user's orders.
func (h *OrderHandler) HandleHistory(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	orders, err := h.api.ListOrders(c.UserContext(), user.ID.String())
	if err != nil {
		return viewError(c, h.toasts, err, "Could not load your orders.")
	}
	if len(orders) == 0 {
		return viewEmpty(c, h.toasts, "You have no orders yet.")
	}

	rows := make([]fiber.Map, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, fiber.Map{
			"id":           o.ID,
			"status":       o.Status,
			"status_style": view.StatusStyle(o.Status),
			"total_amount": o.TotalAmount.StringFixed(2),
			"created_at":   o.CreatedAt,
			"items_count":  len(o.Items),
		})
	}
	return viewSuccess(c, h.toasts, fiber.Map{
		"orders":     rows,
		"pagination": view.Paginate(len(rows)),
	})
}

// HandleDetail renders one order with its items and edit affordances.
func (h *OrderHandler) HandleDetail(c *fiber.Ctx) error {
	order, err := h.api.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return viewError(c, h.toasts, err, "Could not load this order.")
	}
	return viewSuccess(c, h.toasts, fiber.Map{
		"order":        order,
		"status_style": view.StatusStyle(order.Status),
		"editable":     order.Editable(),
	})
}

// HandleUpdateItem changes an order line quantity while the order is
// pending. Quantities below 1 are clamped locally.
func (h *OrderHandler) HandleUpdateItem(c *fiber.Ctx) error {
	quantity, err := strconv.Atoi(c.FormValue("quantity", c.Query("quantity")))
	if err != nil {
		return invalidBody(c, err)
	}
	if quantity < 1 {
		quantity = 1
	}

	order, err := h.api.UpdateOrderItem(c.UserContext(), c.Params("id"), c.Params("itemId"), quantity)
	if err != nil {
		h.toasts.Error(api.FriendlyMessage(err, "Could not update the item."))
		return viewError(c, h.toasts, err, "Could not update the item.")
	}

	h.toasts.Success("Order updated.")
	return viewSuccess(c, h.toasts, fiber.Map{"order": order, "editable": order.Editable()})
}

// HandleRemoveItem removes an order line while the order is pending.
func (h *OrderHandler) HandleRemoveItem(c *fiber.Ctx) error {
	order, err := h.api.RemoveOrderItem(c.UserContext(), c.Params("id"), c.Params("itemId"))
	if err != nil {
		h.toasts.Error(api.FriendlyMessage(err, "Could not remove the item."))
		return viewError(c, h.toasts, err, "Could not remove the item.")
	}

	h.toasts.Success("Item removed from order.")
	return viewSuccess(c, h.toasts, fiber.Map{"order": order, "editable": order.Editable()})
}

// HandleCancel cancels a pending order after explicit confirmation.
func (h *OrderHandler) HandleCancel(c *fiber.Ctx) error {
	if !confirmed(c) {
		return confirmationRequired(c)
	}

	orderID := c.Params("id")
	if err := h.api.CancelOrder(c.UserContext(), orderID); err != nil {
		h.toasts.Error(api.FriendlyMessage(err, "Could not cancel the order."))
		return viewError(c, h.toasts, err, "Could not cancel the order.")
	}

	ev := rabbitmq.Event{Action: "cancelled", Entity: "order", EntityID: orderID}
	if user := middleware.CurrentUser(c); user != nil {
		ev.ActorID = user.ID.String()
	}
	if pubErr := h.events.Publish(ev); pubErr != nil {
		h.logger.Warn("publishing activity event failed", zap.Error(pubErr))
	}

	h.logger.Info("order cancelled", zap.String("order_id", orderID))
	h.toasts.Success("Order cancelled.")
	return viewSuccess(c, h.toasts, fiber.Map{"cancelled": true, "redirect": "/orders"})
}
