package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleStatus string

const (
	SalePending   SaleStatus = "PENDING"
	SaleCompleted SaleStatus = "COMPLETED"
	SaleCanceled  SaleStatus = "CANCELED"
)

func (s SaleStatus) Valid() bool {
	switch s {
	case SalePending, SaleCompleted, SaleCanceled:
		return true
	}
	return false
}

// Sale is the header of a registered purchase. Its status is independent of
// stock and barcode state.
type Sale struct {
	BaseModel
	ClientID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"client_id"`
	Client        *Client         `json:"client,omitempty"`
	Status        SaleStatus      `gorm:"type:varchar(20);not null;index" json:"status"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	PaymentMethod string          `gorm:"type:varchar(50)" json:"payment_method"`
	Date          time.Time       `gorm:"not null;index" json:"date"`

	Items        []SaleItem       `gorm:"foreignKey:SaleID" json:"items,omitempty"`
	SoldBarcodes []SoldBarcodeLog `gorm:"foreignKey:SaleID" json:"sold_barcodes,omitempty"`
}

type SaleItem struct {
	BaseModel
	SaleID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product         *Product        `json:"product,omitempty"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	RecordedBarcode *string         `gorm:"type:varchar(100)" json:"recorded_barcode"`
}

// SoldBarcodeLog is the append-only record of a consumed barcode. ProductName
// is a snapshot taken at sale time.
type SoldBarcodeLog struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	Barcode     string    `gorm:"type:varchar(100);not null;index" json:"barcode"`
	ProductName string    `gorm:"type:varchar(255);not null" json:"product_name"`
	SaleID      uuid.UUID `gorm:"type:uuid;not null;index" json:"sale_id"`
	SoldAt      time.Time `gorm:"not null" json:"sold_at"`
}

func (SoldBarcodeLog) TableName() string {
	return "sold_barcode_logs"
}

func (l *SoldBarcodeLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
