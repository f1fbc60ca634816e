package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product is the canonical catalog listing. Cart lines copy its price at add
// time; later edits never rewrite existing carts or orders.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string          `gorm:"column:name;not null"`
	Description *string         `gorm:"column:description"`
	Category    string          `gorm:"column:category;not null;index"`
	Image       string          `gorm:"column:image;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	InStock     bool            `gorm:"column:in_stock;not null;default:true"`
	Sizes       pq.StringArray  `gorm:"column:sizes;type:text[];not null;default:ARRAY[]::text[]"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
