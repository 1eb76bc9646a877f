package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"shopazon/internal/api"
	"shopazon/internal/middleware"
	"shopazon/internal/toast"
	"shopazon/internal/view"
	"shopazon/pkg/rabbitmq"
)

// AdminPaymentHandler serves the admin payment list and refund action.
type AdminPaymentHandler struct {
	api    *api.Client
	toasts *toast.Store
	events *rabbitmq.Publisher
	logger *zap.Logger
}

// NewAdminPaymentHandler creates a new AdminPaymentHandler.
func NewAdminPaymentHandler(client *api.Client, toasts *toast.Store, events *rabbitmq.Publisher, logger *zap.Logger) *AdminPaymentHandler {
	return &AdminPaymentHandler{
		api:    client,
		toasts: toasts,
		events: events,
		logger: logger,
	}
}

// RegisterRoutes registers the admin payment routes.
func (h *AdminPaymentHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/payments", h.HandleList)
	router.Post("/payments/:id/refund", h.HandleRefund)
}

// HandleList renders the payment table with a client-side status filter.
func (h *AdminPaymentHandler) HandleList(c *fiber.Ctx) error {
	payments, err := h.api.ListPayments(c.UserContext())
	if err != nil {
		return viewError(c, h.toasts, err, "Could not load payments.")
	}

	filtered := view.FilterPayments(payments, c.Query("status"))
	if len(filtered) == 0 {
		return viewEmpty(c, h.toasts, "No payments found.")
	}

	rows := make([]fiber.Map, 0, len(filtered))
	for i := range filtered {
		p := &filtered[i]
		rows = append(rows, fiber.Map{
			"id":             p.ID,
			"order_id":       p.OrderID,
			"status":         p.Status,
			"status_style":   view.StatusStyle(p.Status),
			"amount":         p.Amount.StringFixed(2),
			"provider":       p.Provider,
			"transaction_id": p.TransactionID,
			"refundable":     p.Refundable(),
			"created_at":     p.CreatedAt,
		})
	}
	return viewSuccess(c, h.toasts, fiber.Map{
		"payments":   rows,
		"pagination": view.Paginate(len(rows)),
	})
}

// HandleRefund triggers a refund on a successful payment after explicit
// confirmation.
func (h *AdminPaymentHandler) HandleRefund(c *fiber.Ctx) error {
	if !confirmed(c) {
		return confirmationRequired(c)
	}

	payment, err := h.api.RefundPayment(c.UserContext(), c.Params("id"))
	if err != nil {
		h.toasts.Error(api.FriendlyMessage(err, "Could not refund the payment."))
		return viewError(c, h.toasts, err, "Could not refund the payment.")
	}

	ev := rabbitmq.Event{Action: "refunded", Entity: "payment", EntityID: payment.ID.String()}
	if user := middleware.CurrentUser(c); user != nil {
		ev.ActorID = user.ID.String()
	}
	if pubErr := h.events.Publish(ev); pubErr != nil {
		h.logger.Warn("publishing activity event failed", zap.Error(pubErr))
	}

	h.toasts.Success("Payment refunded.")
	return viewSuccess(c, h.toasts, fiber.Map{
		"payment":      payment,
		"status_style": view.StatusStyle(payment.Status),
	})
}
