package model

// Supplier (fornecedor) provides products. Address fields follow the Brazilian layout.
type Supplier struct {
	BaseModel
	Name        string `gorm:"type:varchar(255);not null;index" json:"name"`
	CNPJ        string `gorm:"type:varchar(20);index" json:"cnpj"`
	Description string `gorm:"type:text" json:"description"`
	Email       string `gorm:"type:varchar(255)" json:"email"`
	Phone       string `gorm:"type:varchar(30)" json:"phone"`
	Street      string `gorm:"type:varchar(255)" json:"street"`
	Number      string `gorm:"type:varchar(20)" json:"number"`
	Complement  string `gorm:"type:varchar(255)" json:"complement"`
	District    string `gorm:"type:varchar(100)" json:"district"`
	City        string `gorm:"type:varchar(100)" json:"city"`
	State       string `gorm:"type:varchar(2)" json:"state"`
	ZipCode     string `gorm:"type:varchar(10)" json:"zip_code"`

	Products []Product `gorm:"foreignKey:SupplierID" json:"products,omitempty"`
}
