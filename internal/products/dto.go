package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/groovebay/storefront-backend/pkg/db/models"
)

// ProductDTO is the catalog shape returned to API consumers.
type ProductDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `json:"price"`
	InStock     bool            `json:"in_stock"`
	Sizes       []string        `json:"sizes"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ProductListResult is one page of catalog results plus the next cursor.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor *string      `json:"next_cursor,omitempty"`
}

func toDTO(p *models.Product) *ProductDTO {
	return &ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Image:       p.Image,
		Price:       p.Price,
		InStock:     p.InStock,
		Sizes:       []string(p.Sizes),
		CreatedAt:   p.CreatedAt,
	}
}
