package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Direction tags a ledger entry as payable or receivable
type Direction string

const (
	DirectionPayable    Direction = "payable"
	DirectionReceivable Direction = "receivable"
)

// IsValid checks if the direction is valid
func (d Direction) IsValid() bool {
	return d == DirectionPayable || d == DirectionReceivable
}

// Side is the debit/credit side of a posting
type Side string

const (
	SideDebit  Side = "debit"
	SideCredit Side = "credit"
)

// PostingKind identifies the business event behind a ledger posting.
// Each kind maps to exactly one (direction, side) pair; the table is a
// fixed policy, never caller-supplied.
type PostingKind string

const (
	KindSalesInvoice     PostingKind = "sales_invoice"
	KindPurchaseInvoice  PostingKind = "purchase_invoice"
	KindSlipBook         PostingKind = "slip_book"
	KindCheque           PostingKind = "cheque"
	KindPurchaseSlipBook PostingKind = "purchase_slip_book"
)

// IsValid checks if the posting kind is valid
func (k PostingKind) IsValid() bool {
	switch k {
	case KindSalesInvoice, KindPurchaseInvoice, KindSlipBook, KindCheque, KindPurchaseSlipBook:
		return true
	default:
		return false
	}
}

// Classify resolves a posting kind to its ledger direction and side
func (k PostingKind) Classify() (Direction, Side, error) {
	switch k {
	case KindSalesInvoice:
		// Customer owes the business more
		return DirectionReceivable, SideDebit, nil
	case KindPurchaseInvoice:
		// The business owes the supplier more
		return DirectionPayable, SideDebit, nil
	case KindSlipBook:
		// Payment collected from a customer
		return DirectionReceivable, SideCredit, nil
	case KindCheque:
		// Payment issued to a supplier
		return DirectionPayable, SideCredit, nil
	case KindPurchaseSlipBook:
		return DirectionPayable, SideCredit, nil
	default:
		return "", "", ErrInvalidPostingKind
	}
}

// NewEntryID creates a unique business identifier for a ledger entry
func NewEntryID() string {
	timestamp := time.Now().UTC().Format("20060102150405")
	return fmt.Sprintf("LE-%s-%s", timestamp, uuid.New().String()[:8])
}

// LedgerEntry is one immutable posting to a payable or receivable running
// balance. Corrections are made by posting a new entry, never by editing.
type LedgerEntry struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EntryID      string             `bson:"entryId" json:"entryId"`
	Account      string             `bson:"account" json:"account"`
	Direction    Direction          `bson:"direction" json:"direction"`
	Date         time.Time          `bson:"date" json:"date"`
	VoucherNo    string             `bson:"voucherNo,omitempty" json:"voucherNo,omitempty"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	DebitAmount  float64            `bson:"debitAmount" json:"debitAmount"`
	CreditAmount float64            `bson:"creditAmount" json:"creditAmount"`
	// Balance is the running signed total for (account, direction) AFTER this entry
	Balance   float64   `bson:"balance" json:"balance"`
	SourceID  string    `bson:"sourceId,omitempty" json:"sourceId,omitempty"`
	CreatedBy string    `bson:"createdBy" json:"createdBy"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// NewLedgerEntry computes the running balance and creates an immutable entry.
// A debit adds to the last balance, a credit subtracts from it.
func NewLedgerEntry(
	account string,
	direction Direction,
	side Side,
	amount float64,
	lastBalance float64,
	voucherNo, description, sourceID, createdBy string,
) (*LedgerEntry, error) {
	if strings.TrimSpace(account) == "" {
		return nil, ErrMissingAccount
	}
	if !direction.IsValid() {
		return nil, ErrInvalidDirection
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	entry := &LedgerEntry{
		ID:          primitive.NewObjectID(),
		EntryID:     NewEntryID(),
		Account:     account,
		Direction:   direction,
		Date:        time.Now().UTC(),
		VoucherNo:   voucherNo,
		Description: description,
		SourceID:    sourceID,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().UTC(),
	}

	switch side {
	case SideDebit:
		entry.DebitAmount = amount
		entry.Balance = lastBalance + amount
	case SideCredit:
		entry.CreditAmount = amount
		entry.Balance = lastBalance - amount
	default:
		return nil, ErrInvalidPostingKind
	}

	return entry, nil
}

// IsDebit returns true if this is a debit entry
func (e *LedgerEntry) IsDebit() bool {
	return e.DebitAmount > 0
}

// IsCredit returns true if this is a credit entry
func (e *LedgerEntry) IsCredit() bool {
	return e.CreditAmount > 0
}

// Amount returns the absolute posted amount
func (e *LedgerEntry) Amount() float64 {
	if e.IsDebit() {
		return e.DebitAmount
	}
	return e.CreditAmount
}

// AccountStatement groups an account's entry history with its latest balance
type AccountStatement struct {
	Account        string        `json:"account"`
	CurrentBalance float64       `json:"currentBalance"`
	Entries        []LedgerEntry `json:"entries"`
}

// OutstandingSummary is the cross-direction net position of one account
type OutstandingSummary struct {
	Account           string  `json:"account"`
	PayableBalance    float64 `json:"payableBalance"`
	ReceivableBalance float64 `json:"receivableBalance"`
	NetBalance        float64 `json:"netBalance"`
}

// Net recomputes the net position (receivable minus payable)
func (s *OutstandingSummary) Net() float64 {
	return s.ReceivableBalance - s.PayableBalance
}

// Quick entry type names as authored by users
const (
	QuickEntrySlipBook         = "Slip Book"
	QuickEntryCheque           = "Cheque"
	QuickEntryPurchaseSlipBook = "Purchase Slip Book"
)

// QuickEntry is a manual ledger-adjustment request that posts exactly one
// ledger entry as a side effect
type QuickEntry struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EntryType    string             `bson:"entryType" json:"entryType"`
	EntryAccount string             `bson:"entryAccount,omitempty" json:"entryAccount,omitempty"`
	Date         time.Time          `bson:"date" json:"date"`
	VoucherNo    string             `bson:"voucherNo,omitempty" json:"voucherNo,omitempty"`
	ChequeNo     string             `bson:"chequeNo,omitempty" json:"chequeNo,omitempty"`
	Account      string             `bson:"account" json:"account"`
	Amount       float64            `bson:"amount" json:"amount"`
	CreatedBy    string             `bson:"createdBy" json:"createdBy"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// NewQuickEntry validates and creates a quick entry
func NewQuickEntry(entryType, entryAccount, voucherNo, chequeNo, account string, amount float64, date time.Time, createdBy string) (*QuickEntry, error) {
	if _, err := PostingKindForQuickEntry(entryType); err != nil {
		return nil, err
	}
	if strings.TrimSpace(account) == "" {
		return nil, ErrMissingAccount
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if date.IsZero() {
		date = time.Now().UTC()
	}

	return &QuickEntry{
		ID:           primitive.NewObjectID(),
		EntryType:    entryType,
		EntryAccount: entryAccount,
		Date:         date,
		VoucherNo:    voucherNo,
		ChequeNo:     chequeNo,
		Account:      account,
		Amount:       amount,
		CreatedBy:    createdBy,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// PostingKindForQuickEntry maps a quick entry type name to its posting kind
func PostingKindForQuickEntry(entryType string) (PostingKind, error) {
	switch entryType {
	case QuickEntrySlipBook:
		return KindSlipBook, nil
	case QuickEntryCheque:
		return KindCheque, nil
	case QuickEntryPurchaseSlipBook:
		return KindPurchaseSlipBook, nil
	default:
		return "", ErrInvalidQuickEntry
	}
}
