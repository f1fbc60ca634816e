package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/groovebay/storefront-backend/pkg/db/models"
)

// Repository exposes persistence operations for the per-owner cart.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByOwner loads the owner's cart with its items.
func (r *Repository) FindByOwner(ctx context.Context, ownerID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("owner_id = ?", ownerID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// Save recomputes derived totals and persists the full cart, creating the row
// on first write. Items are replaced wholesale so the stored set always
// mirrors the in-memory one. Derived fields supplied by the caller are
// overwritten, never trusted.
func (r *Repository) Save(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if err := recomputeTotals(cart); err != nil {
		return nil, err
	}

	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}
	for i := range cart.Items {
		if cart.Items[i].ID == uuid.Nil {
			cart.Items[i].ID = uuid.New()
		}
	}

	tx := r.db.WithContext(ctx)
	if err := tx.Omit("Items").Save(cart).Error; err != nil {
		return nil, err
	}

	if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return nil, err
	}
	if len(cart.Items) > 0 {
		for i := range cart.Items {
			cart.Items[i].CartID = cart.ID
		}
		if err := tx.Create(&cart.Items).Error; err != nil {
			return nil, err
		}
	}

	return cart, nil
}
