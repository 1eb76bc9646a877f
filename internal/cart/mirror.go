package cart

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"shopazon/internal/api"
	"shopazon/internal/models"
	"shopazon/internal/session"
)

// refreshTimeout bounds the background refresh triggered by session changes.
const refreshTimeout = 10 * time.Second

// Mirror maintains a denormalized copy of the server cart for badge and
// summary display. It refreshes whenever the session user changes and adopts
// the response of every cart-mutating call so the badge stays consistent
// without a second round trip.
type Mirror struct {
	api     *api.Client
	session *session.Store
	logger  *zap.Logger

	mu   sync.RWMutex
	cart *models.Cart
}

// NewMirror creates a cart mirror subscribed to session changes.
func NewMirror(client *api.Client, sessionStore *session.Store, logger *zap.Logger) *Mirror {
	m := &Mirror{
		api:     client,
		session: sessionStore,
		logger:  logger,
	}
	sessionStore.OnChange(func(user *models.User) {
		if user == nil {
			m.Clear()
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		m.Refresh(ctx)
	})
	return m
}

// Refresh replaces the mirror with the server cart for the session user, or
// clears it when no user is signed in. Failures are swallowed; the badge
// simply stays stale.
func (m *Mirror) Refresh(ctx context.Context) {
	user := m.session.Current()
	if user == nil {
		m.Clear()
		return
	}
	cart, err := m.api.GetCart(ctx, user.ID.String())
	if err != nil {
		m.logger.Debug("cart refresh failed", zap.Error(err))
		return
	}
	m.Adopt(cart)
}

// Adopt replaces the mirror with a cart payload from a backend response.
// Payloads without an items collection are silently ignored so a malformed
// response cannot blank the badge.
func (m *Mirror) Adopt(cart *models.Cart) {
	if cart == nil || cart.Items == nil {
		m.logger.Debug("ignoring malformed cart payload")
		return
	}
	m.mu.Lock()
	m.cart = cart
	m.mu.Unlock()
}

// Clear drops the mirrored cart.
func (m *Mirror) Clear() {
	m.mu.Lock()
	m.cart = nil
	m.mu.Unlock()
}

// Cart returns the mirrored cart, or nil when none is known.
func (m *Mirror) Cart() *models.Cart {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cart
}

// Count returns the total quantity across all lines, for the badge.
func (m *Mirror) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cart.TotalQuantity()
}

// Items returns the mirrored line items.
func (m *Mirror) Items() []models.CartItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cart == nil {
		return nil
	}
	items := make([]models.CartItem, len(m.cart.Items))
	copy(items, m.cart.Items)
	return items
}
