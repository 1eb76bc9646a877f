package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"shopazon/internal/api"
	"shopazon/internal/cart"
	"shopazon/internal/toast"
	"shopazon/internal/view"
)

// StorefrontHandler serves the public shopping views: home, the shop
// listing, and the product detail page.
type StorefrontHandler struct {
	api    *api.Client
	cart   *cart.Mirror
	toasts *toast.Store
	logger *zap.Logger
}

// NewStorefrontHandler creates a new StorefrontHandler.
func NewStorefrontHandler(client *api.Client, mirror *cart.Mirror, toasts *toast.Store, logger *zap.Logger) *StorefrontHandler {
	return &StorefrontHandler{
		api:    client,
		cart:   mirror,
		toasts: toasts,
		logger: logger,
	}
}

// RegisterRoutes registers the storefront routes with the Fiber app.
func (h *StorefrontHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleHome)
	router.Get("/shop", h.HandleShop)
	router.Get("/products/:id", h.HandleProductDetail)
}

// HandleHome renders the landing page: featured deals, latest arrivals and
// category tiles. The three sections load independently; a failed section
// renders as its own error block without sinking the page.
func (h *StorefrontHandler) HandleHome(c *fiber.Ctx) error {
	ctx := c.UserContext()
	origin := h.api.Origin()

	data := fiber.Map{"cart_count": h.cart.Count()}

	if featured, err := h.api.FeaturedProducts(ctx); err != nil {
		h.logger.Warn("loading featured products failed", zap.Error(err))
		data["featured"] = sectionError(err, "Could not load featured deals.")
	} else {
		data["featured"] = fiber.Map{"state": view.StateSuccess, "products": view.Cards(featured, origin)}
	}

	if latest, err := h.api.LatestProducts(ctx); err != nil {
		h.logger.Warn("loading latest products failed", zap.Error(err))
		data["latest"] = sectionError(err, "Could not load new arrivals.")
	} else {
		data["latest"] = fiber.Map{"state": view.StateSuccess, "products": view.Cards(latest, origin)}
	}

	if categories, err := h.api.ListCategories(ctx); err != nil {
		h.logger.Warn("loading categories failed", zap.Error(err))
		data["categories"] = sectionError(err, "Could not load categories.")
	} else {
		data["categories"] = fiber.Map{"state": view.StateSuccess, "categories": categories}
	}

	return viewSuccess(c, h.toasts, data)
}

func sectionError(err error, fallback string) fiber.Map {
	return fiber.Map{"state": view.StateError, "message": api.FriendlyMessage(err, fallback)}
}

// HandleShop renders the catalog listing with client-side search, category
// filter and sort over the fetched page.
func (h *StorefrontHandler) HandleShop(c *fiber.Ctx) error {
	products, err := h.api.ListProducts(c.UserContext())
	if err != nil {
		return viewError(c, h.toasts, err, "Could not load products.")
	}

	filtered := view.FilterProducts(products, c.Query("q"), c.Query("category"))
	view.SortProducts(filtered, c.Query("sort"))

	if len(filtered) == 0 {
		return viewEmpty(c, h.toasts, "No products found.")
	}
	return viewSuccess(c, h.toasts, fiber.Map{
		"products":   view.Cards(filtered, h.api.Origin()),
		"pagination": view.Paginate(len(filtered)),
		"cart_count": h.cart.Count(),
	})
}

// HandleProductDetail renders one product plus related products from the
// same category.
func (h *StorefrontHandler) HandleProductDetail(c *fiber.Ctx) error {
	ctx := c.UserContext()
	product, err := h.api.GetProduct(ctx, c.Params("id"))
	if err != nil {
		return viewError(c, h.toasts, err, "Could not load this product.")
	}

	origin := h.api.Origin()
	images := make([]fiber.Map, 0, len(product.Images))
	for _, img := range product.Images {
		images = append(images, fiber.Map{
			"id":         img.ID,
			"url":        view.ResolveImageURL(origin, img.URL),
			"is_primary": img.IsPrimary,
		})
	}

	data := fiber.Map{
		"product":    product,
		"card":       view.Card(product, origin),
		"images":     images,
		"cart_count": h.cart.Count(),
	}

	// Related products are a secondary load; failure leaves the section out.
	if all, relErr := h.api.ListProducts(ctx); relErr == nil {
		related := view.FilterProducts(all, "", product.CategoryID.String())
		cards := make([]view.ProductCard, 0, 4)
		for i := range related {
			if related[i].ID == product.ID {
				continue
			}
			cards = append(cards, view.Card(&related[i], origin))
			if len(cards) == 4 {
				break
			}
		}
		data["related"] = cards
	} else {
		h.logger.Debug("loading related products failed", zap.Error(relErr))
	}

	return viewSuccess(c, h.toasts, data)
}
