package middleware

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"shopazon/internal/models"
	"shopazon/internal/session"
)

// UserKey is the Locals key the guard stores the gating user under.
const UserKey = "session_user"

// Guard gates a route subtree behind session resolution. While resolution is
// still in flight the persisted cache is trusted so a refresh does not flash
// a redirect; an insufficient cached role redirects immediately without
// waiting for server verification. Once resolved: anonymous users are sent
// to the login page carrying the attempted location, and authenticated users
// missing the admin role are sent home.
func Guard(store *session.Store, requireAdmin bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if store.Resolved() {
			user := store.Current()
			if user == nil {
				return redirectToLogin(c)
			}
			if requireAdmin && !user.IsAdmin() {
				return c.Redirect("/", fiber.StatusFound)
			}
			c.Locals(UserKey, user)
			return c.Next()
		}

		if cached := store.CachedUser(); cached != nil {
			if requireAdmin && !cached.IsAdmin() {
				return c.Redirect("/", fiber.StatusFound)
			}
			c.Locals(UserKey, cached)
			return c.Next()
		}

		// No cache to trust yet: the loading state until resolution completes.
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"state":   "loading",
			"message": "Resolving session",
		})
	}
}

func redirectToLogin(c *fiber.Ctx) error {
	target := "/login?redirect=" + url.QueryEscape(c.OriginalURL())
	return c.Redirect(target, fiber.StatusFound)
}

// CurrentUser returns the user the guard resolved for this request, if any.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(UserKey).(*models.User)
	return user
}

// SafeRedirectTarget validates a post-login return location: only same-app
// relative paths are honored, anything else falls back to home.
func SafeRedirectTarget(raw string) string {
	if raw == "" {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" || !startsWithSlash(u.Path) {
		return "/"
	}
	return u.String()
}

func startsWithSlash(p string) bool {
	return len(p) > 0 && p[0] == '/' && (len(p) == 1 || p[1] != '/')
}
