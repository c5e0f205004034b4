package application

// RecordProductionCommand reports produced output for one part of a subpart
type RecordProductionCommand struct {
	OwnerID      string `json:"-"`
	UnitName     string `json:"unitName" binding:"required"`
	ProductGroup string `json:"productGroup"`
	ProductID    string `json:"productId" binding:"required"`
	Product      string `json:"product" binding:"required"`
	SubpartID    string `json:"subpartId" binding:"required"`
	PartIndex    int    `json:"partIndex" binding:"gte=0"`
	Quantity     int    `json:"quantity" binding:"required,gt=0"`
	Date         string `json:"date" binding:"required"`
}

// CreateSubpartCommand defines a product's component with its part variants
type CreateSubpartCommand struct {
	OwnerID   string        `json:"-"`
	ProductID string        `json:"productId" binding:"required"`
	Product   string        `json:"product" binding:"required"`
	Machine   string        `json:"machine"`
	Parts     []PartVariant `json:"parts" binding:"required,min=1,dive"`
}

// PartVariant mirrors domain.PartVariant for request binding
type PartVariant struct {
	PartName string `json:"partName" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
	Color    string `json:"color"`
}

// UpdateSubpartCommand replaces a subpart's editable fields
type UpdateSubpartCommand struct {
	OwnerID   string        `json:"-"`
	SubpartID string        `json:"-"`
	Machine   string        `json:"machine"`
	Parts     []PartVariant `json:"parts" binding:"required,min=1,dive"`
}

// CreateSKUCommand authors a SKU at a physical location
type CreateSKUCommand struct {
	OwnerID  string         `json:"-"`
	Location string         `json:"location" binding:"required"`
	GroupID  string         `json:"groupId"`
	Products []ProductEntry `json:"products" binding:"required,dive"`
}

// ProductEntry mirrors domain.ProductEntry for request binding
type ProductEntry struct {
	ProductID string      `json:"productId" binding:"required"`
	Parts     []PartEntry `json:"parts" binding:"required,min=1,dive"`
}

// PartEntry mirrors domain.PartEntry for request binding
type PartEntry struct {
	SubpartID string `json:"subpartId" binding:"required"`
	PartName  string `json:"partName" binding:"required"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity" binding:"gte=0"`
}

// UpdateSKUCommand replaces a SKU's location and contents
type UpdateSKUCommand struct {
	OwnerID  string         `json:"-"`
	SKUID    string         `json:"-"`
	Location string         `json:"location" binding:"required"`
	Products []ProductEntry `json:"products" binding:"required,dive"`
}

// PostInvoiceCommand posts a sales or purchase invoice to the ledger
type PostInvoiceCommand struct {
	OwnerID     string  `json:"-"`
	Kind        string  `json:"kind" binding:"required,oneof=sales_invoice purchase_invoice"`
	Account     string  `json:"account" binding:"required"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	VoucherNo   string  `json:"voucherNo"`
	Description string  `json:"description"`
	SourceID    string  `json:"sourceId"`
}

// PostQuickEntryCommand records a manual payment-style ledger adjustment
type PostQuickEntryCommand struct {
	OwnerID      string  `json:"-"`
	EntryType    string  `json:"entryType" binding:"required"`
	EntryAccount string  `json:"entryAccount"`
	Date         string  `json:"date"`
	VoucherNo    string  `json:"voucherNo"`
	ChequeNo     string  `json:"chequeNo"`
	Account      string  `json:"account" binding:"required"`
	Amount       float64 `json:"amount" binding:"required,gt=0"`
}

// CreateOrderCommand creates a customer order
type CreateOrderCommand struct {
	OwnerID string      `json:"-"`
	Company string      `json:"company" binding:"required"`
	Lines   []OrderLine `json:"lines" binding:"required,min=1,dive"`
}

// OrderLine mirrors domain.OrderLine for request binding
type OrderLine struct {
	ProductID string `json:"productId" binding:"required"`
	Product   string `json:"product"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
	Status    string `json:"status"`
}

// UpdateOrderLineCommand moves one order line to a new status
type UpdateOrderLineCommand struct {
	OwnerID   string `json:"-"`
	OrderID   string `json:"-"`
	LineIndex int    `json:"lineIndex" binding:"gte=0"`
	Status    string `json:"status" binding:"required"`
}

// GetAvailabilityQuery asks for buildable-product ranking
type GetAvailabilityQuery struct {
	OwnerID string
	TopN    int
}

// GetStatementQuery asks for one account's entry history
type GetStatementQuery struct {
	OwnerID   string
	Account   string
	Direction string
}

// GetOutstandingQuery asks for outstanding balances in one direction
type GetOutstandingQuery struct {
	OwnerID   string
	Direction string
}
