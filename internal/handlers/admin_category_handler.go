package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"shopazon/internal/api"
	"shopazon/internal/middleware"
	"shopazon/internal/models"
	"shopazon/internal/toast"
	"shopazon/internal/view"
	"shopazon/pkg/rabbitmq"
)

// AdminCategoryHandler serves the admin category management views.
type AdminCategoryHandler struct {
	api      *api.Client
	toasts   *toast.Store
	events   *rabbitmq.Publisher
	validate *validator.Validate
	logger   *zap.Logger
}

// NewAdminCategoryHandler creates a new AdminCategoryHandler.
func NewAdminCategoryHandler(client *api.Client, toasts *toast.Store, events *rabbitmq.Publisher, logger *zap.Logger) *AdminCategoryHandler {
	return &AdminCategoryHandler{
		api:      client,
		toasts:   toasts,
		events:   events,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes registers the admin category routes.
func (h *AdminCategoryHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/categories", h.HandleList)
	router.Post("/categories", h.HandleCreate)
	router.Put("/categories/:id", h.HandleUpdate)
	router.Delete("/categories/:id", h.HandleDelete)
}

// HandleList renders the category table.
func (h *AdminCategoryHandler) HandleList(c *fiber.Ctx) error {
	categories, err := h.api.ListCategories(c.UserContext())
	if err != nil {
		return viewError(c, h.toasts, err, "Could not load categories.")
	}
	if len(categories) == 0 {
		return viewEmpty(c, h.toasts, "No categories yet.")
	}
	return viewSuccess(c, h.toasts, fiber.Map{
		"categories": categories,
		"pagination": view.Paginate(len(categories)),
	})
}

// HandleCreate creates a category from the form payload.
func (h *AdminCategoryHandler) HandleCreate(c *fiber.Ctx) error {
	var form models.CategoryForm
	if err := c.BodyParser(&form); err != nil {
		return invalidBody(c, err)
	}
	if err := h.validate.Struct(form); err != nil {
		return failedValidation(c, err)
	}

	category, err := h.api.CreateCategory(c.UserContext(), form)
	if err != nil {
		h.toasts.Error(api.FriendlyMessage(err, "Could not create the category."))
		return viewError(c, h.toasts, err, "Could not create the category.")
	}

	h.publish("created", category.ID.String(), c)
	h.toasts.Success("Category created.")
	return c.Status(fiber.StatusCreated).JSON(view.Model{
		State:  view.StateSuccess,
		Data:   fiber.Map{"category": category},
		Toasts: h.toasts.Active(),
	})
}

// HandleUpdate updates a category from the form payload.
func (h *AdminCategoryHandler) HandleUpdate(c *fiber.Ctx) error {
	var form models.CategoryForm
	if err := c.BodyParser(&form); err != nil {
		return invalidBody(c, err)
	}
	if err := h.validate.Struct(form); err != nil {
		return failedValidation(c, err)
	}

	category, err := h.api.UpdateCategory(c.UserContext(), c.Params("id"), form)
	if err != nil {
		h.toasts.Error(api.FriendlyMessage(err, "Could not update the category."))
		return viewError(c, h.toasts, err, "Could not update the category.")
	}

	h.publish("updated", category.ID.String(), c)
	h.toasts.Success("Category updated.")
	return viewSuccess(c, h.toasts, fiber.Map{"category": category})
}

// HandleDelete deletes a category after explicit confirmation.
func (h *AdminCategoryHandler) HandleDelete(c *fiber.Ctx) error {
	if !confirmed(c) {
		return confirmationRequired(c)
	}

	id := c.Params("id")
	if err := h.api.DeleteCategory(c.UserContext(), id); err != nil {
		h.toasts.Error(api.FriendlyMessage(err, "Could not delete the category."))
		return viewError(c, h.toasts, err, "Could not delete the category.")
	}

	h.publish("deleted", id, c)
	h.toasts.Success("Category deleted.")
	return viewSuccess(c, h.toasts, fiber.Map{"deleted": id})
}

func (h *AdminCategoryHandler) publish(action, id string, c *fiber.Ctx) {
	ev := rabbitmq.Event{Action: action, Entity: "category", EntityID: id}
	if user := middleware.CurrentUser(c); user != nil {
		ev.ActorID = user.ID.String()
	}
	if err := h.events.Publish(ev); err != nil {
		h.logger.Warn("publishing activity event failed", zap.Error(err))
	}
}
