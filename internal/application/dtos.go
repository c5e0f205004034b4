package application

import (
	"time"

	"github.com/ledgerstack/erp-core/internal/domain"
)

// SubpartDTO is the API representation of a subpart definition
type SubpartDTO struct {
	ID        string        `json:"id"`
	ProductID string        `json:"productId"`
	Product   string        `json:"product"`
	Machine   string        `json:"machine,omitempty"`
	Parts     []PartVariant `json:"parts"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// SKUDTO is the API representation of a storage location's contents
type SKUDTO struct {
	ID        string         `json:"id"`
	Location  string         `json:"location"`
	GroupID   string         `json:"groupId,omitempty"`
	Products  []ProductEntry `json:"products"`
	Staging   bool           `json:"staging"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// ReconcileResultDTO reports where produced stock landed
type ReconcileResultDTO struct {
	SKUID    string `json:"skuId"`
	Location string `json:"location"`
	IsNew    bool   `json:"isNew"`
	Message  string `json:"message"`
}

// ProductionResultDTO is the outcome of recording production output.
// Warning carries a reconciliation failure without failing the record.
type ProductionResultDTO struct {
	EventID        string              `json:"eventId"`
	Quantity       int                 `json:"quantity"`
	Date           string              `json:"date"`
	Reconciliation *ReconcileResultDTO `json:"reconciliation,omitempty"`
	Warning        string              `json:"warning,omitempty"`
}

// ProductionEventDTO is one aggregated production record
type ProductionEventDTO struct {
	ID           string    `json:"id"`
	UnitName     string    `json:"unitName"`
	ProductGroup string    `json:"productGroup,omitempty"`
	Product      string    `json:"product"`
	SubpartID    string    `json:"subpartId"`
	PartIndex    int       `json:"partIndex"`
	Date         string    `json:"date"`
	Quantity     int       `json:"quantity"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// LedgerEntryDTO is the API representation of one posting
type LedgerEntryDTO struct {
	EntryID      string    `json:"entryId"`
	Account      string    `json:"account"`
	Direction    string    `json:"direction"`
	Date         time.Time `json:"date"`
	VoucherNo    string    `json:"voucherNo,omitempty"`
	Description  string    `json:"description,omitempty"`
	DebitAmount  float64   `json:"debitAmount"`
	CreditAmount float64   `json:"creditAmount"`
	Balance      float64   `json:"balance"`
}

// StatementDTO is one account's entry history with its running balance
type StatementDTO struct {
	Account        string           `json:"account"`
	Direction      string           `json:"direction"`
	CurrentBalance float64          `json:"currentBalance"`
	Entries        []LedgerEntryDTO `json:"entries"`
}

// OutstandingDTO is one account's balance rollup for one direction together
// with the entries that produced it
type OutstandingDTO struct {
	Account string           `json:"account"`
	Balance float64          `json:"balance"`
	Entries []LedgerEntryDTO `json:"entries"`
}

// QuickEntryResultDTO is the outcome of recording a quick entry.
// Warning carries a ledger-posting failure without failing the record.
type QuickEntryResultDTO struct {
	QuickEntryID string          `json:"quickEntryId"`
	Entry        *LedgerEntryDTO `json:"entry,omitempty"`
	Warning      string          `json:"warning,omitempty"`
}

// OutstandingSummaryDTO nets an account's payable and receivable sides
type OutstandingSummaryDTO struct {
	Account           string  `json:"account"`
	PayableBalance    float64 `json:"payableBalance"`
	ReceivableBalance float64 `json:"receivableBalance"`
	NetBalance        float64 `json:"netBalance"`
}

// AvailabilityDTO is one product's buildable quantity
type AvailabilityDTO struct {
	ProductID string `json:"productId"`
	Product   string `json:"product"`
	Buildable int    `json:"buildable"`
}

// OrderDTO is the API representation of an order with its derived status
type OrderDTO struct {
	ID        string      `json:"id"`
	Company   string      `json:"company"`
	Lines     []OrderLine `json:"lines"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// ToSubpartDTO converts a domain subpart to its DTO
func ToSubpartDTO(subpart *domain.Subpart) *SubpartDTO {
	parts := make([]PartVariant, 0, len(subpart.Parts))
	for _, p := range subpart.Parts {
		parts = append(parts, PartVariant{PartName: p.PartName, Quantity: p.Quantity, Color: p.Color})
	}
	return &SubpartDTO{
		ID:        subpart.ID.Hex(),
		ProductID: subpart.ProductID,
		Product:   subpart.Product,
		Machine:   subpart.Machine,
		Parts:     parts,
		CreatedAt: subpart.CreatedAt,
		UpdatedAt: subpart.UpdatedAt,
	}
}

// ToSubpartDTOs converts a list of subparts
func ToSubpartDTOs(subparts []*domain.Subpart) []SubpartDTO {
	dtos := make([]SubpartDTO, 0, len(subparts))
	for _, sp := range subparts {
		dtos = append(dtos, *ToSubpartDTO(sp))
	}
	return dtos
}

// ToSKUDTO converts a domain SKU to its DTO
func ToSKUDTO(sku *domain.SKU) *SKUDTO {
	products := make([]ProductEntry, 0, len(sku.Products))
	for _, prod := range sku.Products {
		parts := make([]PartEntry, 0, len(prod.Parts))
		for _, part := range prod.Parts {
			parts = append(parts, PartEntry{
				SubpartID: part.SubpartID,
				PartName:  part.PartName,
				Color:     part.Color,
				Quantity:  part.Quantity,
			})
		}
		products = append(products, ProductEntry{ProductID: prod.ProductID, Parts: parts})
	}
	return &SKUDTO{
		ID:        sku.ID.Hex(),
		Location:  sku.Location,
		GroupID:   sku.GroupID,
		Products:  products,
		Staging:   sku.Staging,
		CreatedAt: sku.CreatedAt,
		UpdatedAt: sku.UpdatedAt,
	}
}

// ToSKUDTOs converts a list of SKUs
func ToSKUDTOs(skus []*domain.SKU) []SKUDTO {
	dtos := make([]SKUDTO, 0, len(skus))
	for _, sku := range skus {
		dtos = append(dtos, *ToSKUDTO(sku))
	}
	return dtos
}

// ToProductionEventDTO converts a production record
func ToProductionEventDTO(event *domain.ProductionEvent) *ProductionEventDTO {
	return &ProductionEventDTO{
		ID:           event.ID.Hex(),
		UnitName:     event.Key.UnitName,
		ProductGroup: event.Key.ProductGroup,
		Product:      event.Key.Product,
		SubpartID:    event.Key.SubpartID,
		PartIndex:    event.Key.PartIndex,
		Date:         event.Key.Date,
		Quantity:     event.Quantity,
		UpdatedAt:    event.UpdatedAt,
	}
}

// ToProductionEventDTOs converts a list of production records
func ToProductionEventDTOs(events []*domain.ProductionEvent) []ProductionEventDTO {
	dtos := make([]ProductionEventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, *ToProductionEventDTO(e))
	}
	return dtos
}

// ToLedgerEntryDTO converts a ledger posting
func ToLedgerEntryDTO(entry *domain.LedgerEntry) LedgerEntryDTO {
	return LedgerEntryDTO{
		EntryID:      entry.EntryID,
		Account:      entry.Account,
		Direction:    string(entry.Direction),
		Date:         entry.Date,
		VoucherNo:    entry.VoucherNo,
		Description:  entry.Description,
		DebitAmount:  entry.DebitAmount,
		CreditAmount: entry.CreditAmount,
		Balance:      entry.Balance,
	}
}

// ToLedgerEntryDTOs converts a list of ledger postings
func ToLedgerEntryDTOs(entries []*domain.LedgerEntry) []LedgerEntryDTO {
	dtos := make([]LedgerEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, ToLedgerEntryDTO(e))
	}
	return dtos
}

// ToOrderDTO converts a domain order, deriving its overall status
func ToOrderDTO(order *domain.Order) *OrderDTO {
	lines := make([]OrderLine, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, OrderLine{
			ProductID: line.ProductID,
			Product:   line.Product,
			Quantity:  line.Quantity,
			Status:    string(line.Status),
		})
	}
	return &OrderDTO{
		ID:        order.ID.Hex(),
		Company:   order.Company,
		Lines:     lines,
		Status:    string(order.Status()),
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
}

// ToOrderDTOs converts a list of orders
func ToOrderDTOs(orders []*domain.Order) []OrderDTO {
	dtos := make([]OrderDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, *ToOrderDTO(o))
	}
	return dtos
}
