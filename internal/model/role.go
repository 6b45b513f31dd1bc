package model

// Role groups privileges. The owner role holds everything; cashiers can sell
// and read but not change the catalog or finances.
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

const (
	RoleOwner   = "OWNER"
	RoleCashier = "CASHIER"
)

var DefaultRoles = []Role{
	{Code: RoleOwner, Name: "Owner", Description: "Full access to catalog, sales, finances and reports"},
	{Code: RoleCashier, Name: "Cashier", Description: "Registers sales and manages clients"},
}

// CashierPrivileges lists the privilege codes granted to RoleCashier.
var CashierPrivileges = []string{PrivClientManage, PrivSaleCreate, PrivSaleUpdate}
