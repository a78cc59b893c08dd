package repository

import (
	"context"

	"github.com/pzron/ecom-sub002/services/cart/internal/domain"
)

// CartRepository is the durable key-value storage port for cart snapshots.
type CartRepository interface {
	// Load returns the stored cart for sessionID, or an apperrors NotFound
	// error when nothing is stored.
	Load(ctx context.Context, sessionID string) (*domain.Cart, error)

	// Save overwrites the stored snapshot for cart.SessionID.
	Save(ctx context.Context, cart *domain.Cart) error

	// Delete removes the stored snapshot. Deleting a missing key is not an error.
	Delete(ctx context.Context, sessionID string) error
}
