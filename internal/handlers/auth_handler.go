package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"shopazon/internal/api"
	"shopazon/internal/middleware"
	"shopazon/internal/models"
	"shopazon/internal/session"
	"shopazon/internal/toast"
)

// AuthHandler handles the login, registration and logout views.
type AuthHandler struct {
	session  *session.Store
	toasts   *toast.Store
	validate *validator.Validate
	logger   *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(sessionStore *session.Store, toasts *toast.Store, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		session:  sessionStore,
		toasts:   toasts,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/login", h.HandleLogin)
	router.Post("/register", h.HandleRegister)
	router.Post("/logout", h.HandleLogout)
	router.Get("/session", h.HandleSession)
}

// HandleLogin posts credentials to the backend and adopts the returned user.
// A `redirect` query parameter carried by the route guard is honored for
// same-app relative paths.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return failedValidation(c, err)
	}

	user, err := h.session.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		h.logger.Info("login rejected", zap.String("email", req.Email), zap.Error(err))
		return c.Status(errStatus(err)).JSON(fiber.Map{
			"message": api.FriendlyMessage(err, "Login failed. Check your credentials."),
		})
	}

	return c.JSON(fiber.Map{
		"user":     user,
		"redirect": middleware.SafeRedirectTarget(c.Query("redirect")),
	})
}

// HandleRegister posts a registration and adopts the returned user.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return failedValidation(c, err)
	}

	user, err := h.session.Register(c.UserContext(), req)
	if err != nil {
		h.logger.Info("registration rejected", zap.String("email", req.Email), zap.Error(err))
		return c.Status(errStatus(err)).JSON(fiber.Map{
			"message": api.FriendlyMessage(err, "Registration failed."),
			"errors":  fieldErrors(err),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":     user,
		"redirect": middleware.SafeRedirectTarget(c.Query("redirect")),
	})
}

// HandleLogout clears the session. The backend call is best-effort; the
// local session always ends.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	h.session.Logout(c.UserContext())
	return c.JSON(fiber.Map{"message": "Logged out", "redirect": "/"})
}

// HandleSession exposes the current resolution state and user, the way the
// header chrome consumes it.
func (h *AuthHandler) HandleSession(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"resolved": h.session.Resolved(),
		"user":     h.session.Current(),
	})
}

// fieldErrors pulls structured validation errors out of a backend rejection.
func fieldErrors(err error) map[string][]string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Fields
	}
	return nil
}
