package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type AssetStatus string

const (
	AssetStatusInStock  AssetStatus = "in_stock"
	AssetStatusAssigned AssetStatus = "assigned"
	AssetStatusRepair   AssetStatus = "repair"
	AssetStatusRetired  AssetStatus = "retired"
)

var AssetStatuses = []AssetStatus{
	AssetStatusInStock,
	AssetStatusAssigned,
	AssetStatusRepair,
	AssetStatusRetired,
}

// Valid reports whether s is one of the four lifecycle states.
func (s AssetStatus) Valid() bool {
	for _, status := range AssetStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Asset struct {
	ID            int              `db:"id" json:"id"`
	Label         string           `db:"label" json:"label"`
	SerialNo      *string          `db:"serial_no" json:"serial_no"`
	CategoryID    *int             `db:"category_id" json:"category_id"`
	Status        AssetStatus      `db:"status" json:"status"`
	PurchasedAt   *time.Time       `db:"purchased_at" json:"purchased_at"`
	PurchasePrice *decimal.Decimal `db:"purchase_price" json:"purchase_price"`
	Supplier      *string          `db:"supplier" json:"supplier"`
	WarrantyEnd   *time.Time       `db:"warranty_end" json:"warranty_end"`
	Notes         *string          `db:"notes" json:"notes"`
	QRSlug        *string          `db:"qr_slug" json:"qr_slug"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
}

// AssetDetails holds the editable, non-status fields of an asset.
// A nil pointer leaves the stored value untouched.
type AssetDetails struct {
	Label         *string
	SerialNo      *string
	CategoryID    *int
	ClearCategory bool
	PurchasedAt   *time.Time
	PurchasePrice *decimal.Decimal
	Supplier      *string
	WarrantyEnd   *time.Time
	Notes         *string
}

// AssetOverview is an asset joined with its category and current holder.
type AssetOverview struct {
	ID            int         `db:"id" json:"id"`
	Label         string      `db:"label" json:"label"`
	SerialNo      *string     `db:"serial_no" json:"serial_no"`
	Status        AssetStatus `db:"status" json:"status"`
	CategoryID    *int        `db:"category_id" json:"category_id"`
	CategoryName  *string     `db:"category_name" json:"category_name"`
	AssigneeName  *string     `db:"assignee_name" json:"assignee_name"`
	AssigneeEmail *string     `db:"assignee_email" json:"assignee_email"`
	WarrantyEnd   *time.Time  `db:"warranty_end" json:"warranty_end"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
}

type AssetFilter struct {
	Search         string
	CategoryID     *int
	Status         *AssetStatus
	IncludeRetired bool
	Limit          int
	Offset         int
}

type CategoryCount struct {
	CategoryID   *int   `json:"category_id"`
	CategoryName string `json:"category_name"`
	Count        int    `json:"count"`
}

type InventoryStats struct {
	Total      int                 `json:"total"`
	ByStatus   map[AssetStatus]int `json:"by_status"`
	ByCategory []CategoryCount     `json:"by_category"`
}

// PublicAssetCard is the subset of an asset shown to anyone scanning its QR code.
type PublicAssetCard struct {
	ID           int         `json:"id"`
	Label        string      `json:"label"`
	CategoryName *string     `json:"category_name"`
	SerialNo     *string     `json:"serial_no"`
	Status       AssetStatus `json:"status"`
	AssigneeName *string     `json:"assignee_name"`
}

const UncategorizedName = "No category"

func NewInventoryStats() *InventoryStats {
	return &InventoryStats{ByStatus: map[AssetStatus]int{}, ByCategory: []CategoryCount{}}
}

// Add accumulates n assets with the given status and category.
func (s *InventoryStats) Add(status AssetStatus, categoryID *int, categoryName string, n int) {
	s.Total += n
	s.ByStatus[status] += n
	if categoryID == nil {
		categoryName = UncategorizedName
	}
	for i := range s.ByCategory {
		c := &s.ByCategory[i]
		if sameCategory(c.CategoryID, categoryID) {
			c.Count += n
			return
		}
	}
	s.ByCategory = append(s.ByCategory, CategoryCount{CategoryID: categoryID, CategoryName: categoryName, Count: n})
}

// Sort orders categories by count descending, then by name.
func (s *InventoryStats) Sort() {
	sort.SliceStable(s.ByCategory, func(i, j int) bool {
		if s.ByCategory[i].Count != s.ByCategory[j].Count {
			return s.ByCategory[i].Count > s.ByCategory[j].Count
		}
		return s.ByCategory[i].CategoryName < s.ByCategory[j].CategoryName
	})
}

func sameCategory(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
