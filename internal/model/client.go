package model

type ClientStatus string

const (
	ClientActive   ClientStatus = "ATIVO"
	ClientInactive ClientStatus = "INATIVO"
)

type Client struct {
	BaseModel
	Name    string       `gorm:"type:varchar(255);not null;index" json:"name"`
	Phone   string       `gorm:"type:varchar(30)" json:"phone"`
	Address string       `gorm:"type:text" json:"address"`
	Status  ClientStatus `gorm:"type:varchar(10);not null;index" json:"status"`
}
