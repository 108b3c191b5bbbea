package domain

import "github.com/shopspring/decimal"

// BuyStatus is the state of a shopping-list item.
type BuyStatus string

const (
	BuyPending  BuyStatus = "pending"
	BuyReceived BuyStatus = "received"
)

// BuyListItem is a shared shopping-list entry. Any company member may
// create, update or delete it; it is not owned by its creator.
type BuyListItem struct {
	ItemID        string           `json:"itemID" db:"item_id"`
	ItemName      string           `json:"itemName" db:"item_name"`
	EstimatedCost *decimal.Decimal `json:"estimatedCost" db:"estimated_cost"`
	Status        BuyStatus        `json:"status" db:"status"`
	CompanyID     string           `json:"companyID" db:"company_id"`
	AddedBy       string           `json:"addedBy" db:"added_by"`
	AddedByName   string           `json:"addedByName" db:"added_by_name"` // joined from profiles
	AuditFields
}
