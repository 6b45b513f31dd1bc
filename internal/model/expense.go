package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Expense struct {
	BaseModel
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Value       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"value"`
	Date        time.Time       `gorm:"not null;index" json:"date"`
}
