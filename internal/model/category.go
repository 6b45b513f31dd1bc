package model

type Category struct {
	BaseModel
	Name  string `gorm:"type:varchar(100);not null" json:"name"`
	Color string `gorm:"type:varchar(20)" json:"color"`
}
