package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog entry. Stock is the sellable quantity and may go
// negative; LifetimeStock only ever grows.
type Product struct {
	BaseModel
	Name          string          `gorm:"type:varchar(255);not null;index" json:"name"`
	Description   string          `gorm:"type:text" json:"description"`
	SKU           string          `gorm:"type:varchar(50);index" json:"sku"`
	SellPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"sell_price"`
	CostPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"cost_price"`
	Stock         int             `gorm:"not null" json:"stock"`
	LifetimeStock int             `gorm:"not null" json:"lifetime_stock"`
	Unit          string          `gorm:"type:varchar(20)" json:"unit"`
	Weight        float64         `json:"weight"`
	ImageURL      string          `gorm:"type:text" json:"image_url"`

	SupplierID uuid.UUID  `gorm:"type:uuid;not null;index" json:"supplier_id"`
	Supplier   *Supplier  `json:"supplier,omitempty"`
	Categories []Category `gorm:"many2many:product_categories;" json:"categories,omitempty"`
	Barcodes   []Barcode  `gorm:"foreignKey:ProductID" json:"barcodes,omitempty"`
}

// Barcode tracks one physical unit of a product. The row is hard-deleted when
// the unit is sold.
type Barcode struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	Code      string    `gorm:"type:varchar(100);not null;index" json:"code"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (b *Barcode) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
