package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "sale:create"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

const (
	PrivClientManage   = "client:manage"
	PrivSupplierManage = "supplier:manage"
	PrivCategoryManage = "category:manage"
	PrivProductCreate  = "product:create"
	PrivProductUpdate  = "product:update"
	PrivProductDelete  = "product:delete"
	PrivSaleCreate     = "sale:create"
	PrivSaleUpdate     = "sale:update_status"
	PrivExpenseManage  = "expense:manage"
	PrivReportView     = "report:view"
)

var DefaultPrivileges = []Privilege{
	{Code: PrivClientManage, Name: "Manage Clients"},
	{Code: PrivSupplierManage, Name: "Manage Suppliers"},
	{Code: PrivCategoryManage, Name: "Manage Categories"},
	{Code: PrivProductCreate, Name: "Create Product"},
	{Code: PrivProductUpdate, Name: "Update Product"},
	{Code: PrivProductDelete, Name: "Delete Product"},
	{Code: PrivSaleCreate, Name: "Register Sale"},
	{Code: PrivSaleUpdate, Name: "Update Sale Status"},
	{Code: PrivExpenseManage, Name: "Manage Expenses"},
	{Code: PrivReportView, Name: "View Reports"},
}
