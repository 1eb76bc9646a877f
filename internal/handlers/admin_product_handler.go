package handlers

import (
	"errors"
	"io"

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

// AdminProductHandler serves the admin product management views.
type AdminProductHandler struct {
	api      *api.Client
	toasts   *toast.Store
	events   *rabbitmq.Publisher
	validate *validator.Validate
	logger   *zap.Logger
}

// NewAdminProductHandler creates a new AdminProductHandler.
func NewAdminProductHandler(client *api.Client, toasts *toast.Store, events *rabbitmq.Publisher, logger *zap.Logger) *AdminProductHandler {
	return &AdminProductHandler{
		api:      client,
		toasts:   toasts,
		events:   events,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes registers the admin product routes.
func (h *AdminProductHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/products", h.HandleList)
	router.Post("/products", h.HandleCreate)
	router.Post("/products/:id", h.HandleUpdate)
	router.Delete("/products/:id", h.HandleDelete)
}

// HandleList renders the product table with client-side search and category
// filter over the fetched page.
func (h *AdminProductHandler) HandleList(c *fiber.Ctx) error {
	products, err := h.api.ListProducts(c.UserContext())
	if err != nil {
		return viewError(c, h.toasts, err, "Could not load products.")
	}

	filtered := view.FilterProducts(products, c.Query("q"), c.Query("category"))
	if len(filtered) == 0 {
		return viewEmpty(c, h.toasts, "No products found.")
	}

	origin := h.api.Origin()
	rows := make([]fiber.Map, 0, len(filtered))
	for i := range filtered {
		p := &filtered[i]
		row := fiber.Map{
			"id":          p.ID,
			"name":        p.Name,
			"price":       p.Price.StringFixed(2),
			"stock":       p.Stock,
			"is_active":   p.IsActive,
			"category_id": p.CategoryID,
			"image_url":   view.ResolveImageURL(origin, view.PrimaryImage(p)),
		}
		if p.DiscountPrice != nil {
			row["discount_price"] = p.DiscountPrice.StringFixed(2)
		}
		rows = append(rows, row)
	}
	return viewSuccess(c, h.toasts, fiber.Map{
		"products":   rows,
		"pagination": view.Paginate(len(rows)),
	})
}

// HandleCreate submits the add-product form: fields, image files and the
// primary image index travel in one multipart POST.
func (h *AdminProductHandler) HandleCreate(c *fiber.Ctx) error {
	form, images, _, err := h.parseProductForm(c)
	if err != nil {
		return rejectForm(c, err)
	}

	product, apiErr := h.api.CreateProduct(c.UserContext(), form, images)
	if apiErr != nil {
		h.toasts.Error(api.FriendlyMessage(apiErr, "Could not create the product."))
		return viewError(c, h.toasts, apiErr, "Could not create the product.")
	}

	h.publish("created", product, c)
	h.toasts.Success("Product created.")
	return c.Status(fiber.StatusCreated).JSON(view.Model{
		State:  view.StateSuccess,
		Data:   fiber.Map{"product": product, "redirect": "/admin/products"},
		Toasts: h.toasts.Active(),
	})
}

// HandleUpdate submits the edit-product form. The backend receives a POST
// with a PUT method override, new image files, and the ids of removed images.
func (h *AdminProductHandler) HandleUpdate(c *fiber.Ctx) error {
	form, images, deleted, err := h.parseProductForm(c)
	if err != nil {
		return rejectForm(c, err)
	}

	product, apiErr := h.api.UpdateProduct(c.UserContext(), c.Params("id"), form, images, deleted)
	if apiErr != nil {
		h.toasts.Error(api.FriendlyMessage(apiErr, "Could not update the product."))
		return viewError(c, h.toasts, apiErr, "Could not update the product.")
	}

	h.publish("updated", product, c)
	h.toasts.Success("Product updated.")
	return viewSuccess(c, h.toasts, fiber.Map{"product": product, "redirect": "/admin/products"})
}

// HandleDelete deletes a product after explicit confirmation.
func (h *AdminProductHandler) HandleDelete(c *fiber.Ctx) error {
	if !confirmed(c) {
		return confirmationRequired(c)
	}

	id := c.Params("id")
	if err := h.api.DeleteProduct(c.UserContext(), id); err != nil {
		h.toasts.Error(api.FriendlyMessage(err, "Could not delete the product."))
		return viewError(c, h.toasts, err, "Could not delete the product.")
	}

	h.publishID("deleted", id, c)
	h.toasts.Success("Product deleted.")
	return viewSuccess(c, h.toasts, fiber.Map{"deleted": id})
}

// parseProductForm binds and validates the multipart product form, reading
// every uploaded image into memory for the outgoing request.
func (h *AdminProductHandler) parseProductForm(c *fiber.Ctx) (models.ProductForm, []api.ImageUpload, []string, error) {
	var form models.ProductForm
	if err := c.BodyParser(&form); err != nil {
		return form, nil, nil, err
	}
	if err := h.validate.Struct(form); err != nil {
		return form, nil, nil, err
	}

	var images []api.ImageUpload
	var deleted []string
	mp, err := c.MultipartForm()
	if err == nil && mp != nil {
		for _, header := range mp.File["images[]"] {
			f, openErr := header.Open()
			if openErr != nil {
				return form, nil, nil, openErr
			}
			content, readErr := io.ReadAll(f)
			f.Close()
			if readErr != nil {
				return form, nil, nil, readErr
			}
			images = append(images, api.ImageUpload{Filename: header.Filename, Content: content})
		}
		deleted = mp.Value["deleted_images[]"]
	}
	return form, images, deleted, nil
}

// rejectForm maps a form binding failure to the right response shape.
func rejectForm(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return failedValidation(c, err)
	}
	return invalidBody(c, err)
}

func (h *AdminProductHandler) publish(action string, product *models.Product, c *fiber.Ctx) {
	h.publishID(action, product.ID.String(), c)
}

func (h *AdminProductHandler) publishID(action, id string, c *fiber.Ctx) {
	ev := rabbitmq.Event{Action: action, Entity: "product", EntityID: id}
	if user := middleware.CurrentUser(c); user != nil {
		ev.ActorID = user.ID.String()
	}
	if err := h.events.Publish(ev); err != nil {
		h.logger.Warn("publishing activity event failed", zap.Error(err))
	}
}
