package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/groovebay/storefront-backend/pkg/db/models"
	"github.com/groovebay/storefront-backend/pkg/pagination"
)

// Repository wires together catalog persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByID loads one product.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs loads the products that still exist among the requested ids.
// Missing ids are simply absent from the result; the caller decides whether
// that is an error.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListProducts returns one keyset page of catalog rows, newest first.
// The slice may hold one row more than the requested limit so the caller can
// detect the next page.
func (r *Repository) ListProducts(ctx context.Context, input ListProductsInput, cursor *pagination.Cursor, limit int) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	filters := input.Filters
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.InStockOnly {
		query = query.Where("in_stock = ?", true)
	}
	if filters.PriceMin != nil {
		query = query.Where("price >= ?", filters.PriceMin)
	}
	if filters.PriceMax != nil {
		query = query.Where("price <= ?", filters.PriceMax)
	}
	if q := strings.TrimSpace(filters.Query); q != "" {
		pattern := fmt.Sprintf("%%%s%%", strings.ToLower(q))
		query = query.Where("LOWER(name) LIKE ?", pattern)
	}

	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Product
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
