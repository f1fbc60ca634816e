package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/groovebay/storefront-backend/pkg/db/models"
	"github.com/groovebay/storefront-backend/pkg/enums"
	"github.com/groovebay/storefront-backend/pkg/pagination"
)

// ListFilters describe the inputs supported by the owner order list.
type ListFilters struct {
	Status *enums.OrderStatus
}

// Repository exposes persistence operations for placed orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	ListByOwner(ctx context.Context, ownerID string, filters ListFilters, cursor *pagination.Cursor, limit int) ([]models.Order, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
}
