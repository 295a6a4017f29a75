package schemas

import "inventory/src/services"

// AssetRequest is the body of asset create and edit. Omitted fields are left
// unchanged on edit; an empty category clears it.
type AssetRequest struct {
	Label         *string `json:"label"`
	SerialNo      *string `json:"serial_no"`
	Category      *string `json:"category"`
	PurchasedAt   *Date   `json:"purchased_at"`
	PurchasePrice *Amount `json:"purchase_price"`
	Supplier      *string `json:"supplier"`
	WarrantyEnd   *Date   `json:"warranty_end"`
	Notes         *string `json:"notes"`
}

func (r AssetRequest) ToFields() services.AssetFields {
	fields := services.AssetFields{
		Label:       r.Label,
		SerialNo:    r.SerialNo,
		Category:    r.Category,
		PurchasedAt: DatePtr(r.PurchasedAt),
		Supplier:    r.Supplier,
		WarrantyEnd: DatePtr(r.WarrantyEnd),
		Notes:       r.Notes,
	}
	if r.PurchasePrice != nil {
		price := string(*r.PurchasePrice)
		fields.PurchasePrice = &price
	}
	return fields
}

type AssignRequest struct {
	Assignee string  `json:"assignee"`
	Notes    *string `json:"notes"`
}

// NotesRequest is the optional body of return, repair and retire.
type NotesRequest struct {
	Notes *string `json:"notes"`
}

type ExitRepairRequest struct {
	Notes *string `json:"notes"`
	Cost  Amount  `json:"cost"`
}

type CategoryRequest struct {
	Name string `json:"name"`
}

type DeletedResponse struct {
	OK bool `json:"ok"`
}
