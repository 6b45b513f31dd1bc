package model

import "gorm.io/gorm"

// Migrate creates or updates every table the API uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Privilege{}, &Role{}, &User{},
		&Client{}, &Supplier{}, &Category{},
		&Product{}, &Barcode{},
		&Sale{}, &SaleItem{}, &SoldBarcodeLog{},
		&Expense{},
	)
}
