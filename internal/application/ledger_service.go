package application

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/ledgerstack/erp-core/internal/domain"
	"github.com/ledgerstack/erp-core/pkg/errors"
	"github.com/ledgerstack/erp-core/pkg/logging"
)

// balanceStripes bounds the lock table for per-account posting serialization
const balanceStripes = 64

// LedgerApplicationService posts immutable ledger entries and reports
// outstanding balances. Postings to the same (owner, account, direction) are
// serialized through a striped lock so the read-balance/write-entry pair
// cannot interleave and drop an update.
type LedgerApplicationService struct {
	entries   domain.LedgerEntryRepository
	quick     domain.QuickEntryRepository
	publisher domain.EventPublisher
	logger    *logging.Logger
	stripes   [balanceStripes]sync.Mutex
}

// NewLedgerApplicationService creates a new LedgerApplicationService
func NewLedgerApplicationService(
	entries domain.LedgerEntryRepository,
	quick domain.QuickEntryRepository,
	publisher domain.EventPublisher,
	logger *logging.Logger,
) *LedgerApplicationService {
	return &LedgerApplicationService{
		entries:   entries,
		quick:     quick,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *LedgerApplicationService) lockAccount(ownerID, account string, direction domain.Direction) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(ownerID))
	h.Write([]byte{0})
	h.Write([]byte(account))
	h.Write([]byte{0})
	h.Write([]byte(direction))
	return &s.stripes[h.Sum32()%balanceStripes]
}

// post classifies the kind, reads the account's last balance and appends the
// next entry while holding the account's stripe lock
func (s *LedgerApplicationService) post(ctx context.Context, ownerID string, kind domain.PostingKind, account string, amount float64, voucherNo, description, sourceID string) (*domain.LedgerEntry, error) {
	direction, side, err := kind.Classify()
	if err != nil {
		return nil, errors.MapDomainError(err)
	}

	mu := s.lockAccount(ownerID, account, direction)
	mu.Lock()
	defer mu.Unlock()

	last, err := s.entries.FindLatest(ctx, ownerID, account, direction)
	if err != nil {
		s.logger.Error("Failed to read last balance", "account", account, "direction", direction, "error", err)
		return nil, fmt.Errorf("failed to read last balance: %w", err)
	}
	lastBalance := 0.0
	if last != nil {
		lastBalance = last.Balance
	}

	entry, err := domain.NewLedgerEntry(account, direction, side, amount, lastBalance, voucherNo, description, sourceID, ownerID)
	if err != nil {
		return nil, errors.MapDomainError(err)
	}

	if err := s.entries.Save(ctx, entry); err != nil {
		s.logger.Error("Failed to save ledger entry", "account", account, "error", err)
		return nil, fmt.Errorf("failed to save ledger entry: %w", err)
	}

	s.publishPosted(ctx, entry)
	s.logger.Info("Posted ledger entry",
		"entryId", entry.EntryID, "account", account, "direction", direction,
		"debit", entry.DebitAmount, "credit", entry.CreditAmount, "balance", entry.Balance)
	return entry, nil
}

func (s *LedgerApplicationService) publishPosted(ctx context.Context, entry *domain.LedgerEntry) {
	if s.publisher == nil {
		return
	}
	posted := &domain.LedgerEntryPostedEvent{
		EntryID:   entry.EntryID,
		Account:   entry.Account,
		Direction: string(entry.Direction),
		Debit:     entry.DebitAmount,
		Credit:    entry.CreditAmount,
		Balance:   entry.Balance,
		VoucherNo: entry.VoucherNo,
		PostedAt:  entry.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, posted); err != nil {
		s.logger.Warn("Failed to publish event", "eventType", posted.EventType(), "error", err)
	}
}

// PostInvoice posts a finalized sales or purchase invoice to the ledger
func (s *LedgerApplicationService) PostInvoice(ctx context.Context, cmd PostInvoiceCommand) (*LedgerEntryDTO, error) {
	kind := domain.PostingKind(cmd.Kind)
	if kind != domain.KindSalesInvoice && kind != domain.KindPurchaseInvoice {
		return nil, errors.ErrValidation("kind must be sales_invoice or purchase_invoice")
	}

	entry, err := s.post(ctx, cmd.OwnerID, kind, cmd.Account, cmd.Amount, cmd.VoucherNo, cmd.Description, cmd.SourceID)
	if err != nil {
		return nil, err
	}
	dto := ToLedgerEntryDTO(entry)
	return &dto, nil
}

// PostQuickEntry records the manual adjustment and posts its single ledger
// entry as a side effect. The quick entry is the primary record: a posting
// failure after it is saved comes back as a warning, not an error.
func (s *LedgerApplicationService) PostQuickEntry(ctx context.Context, cmd PostQuickEntryCommand) (*QuickEntryResultDTO, error) {
	date := time.Time{}
	if cmd.Date != "" {
		parsed, err := time.Parse(domain.ProductionDateLayout, cmd.Date)
		if err != nil {
			return nil, errors.ErrValidation("date must be in YYYY-MM-DD format")
		}
		date = parsed
	}

	quick, err := domain.NewQuickEntry(cmd.EntryType, cmd.EntryAccount, cmd.VoucherNo, cmd.ChequeNo, cmd.Account, cmd.Amount, date, cmd.OwnerID)
	if err != nil {
		return nil, errors.MapDomainError(err)
	}
	kind, err := domain.PostingKindForQuickEntry(cmd.EntryType)
	if err != nil {
		return nil, errors.MapDomainError(err)
	}

	if err := s.quick.Save(ctx, quick); err != nil {
		s.logger.Error("Failed to save quick entry", "entryType", cmd.EntryType, "account", cmd.Account, "error", err)
		return nil, fmt.Errorf("failed to save quick entry: %w", err)
	}

	result := &QuickEntryResultDTO{QuickEntryID: quick.ID.Hex()}

	description := fmt.Sprintf("%s via %s", cmd.EntryType, cmd.EntryAccount)
	if cmd.EntryAccount == "" {
		description = cmd.EntryType
	}
	entry, err := s.post(ctx, cmd.OwnerID, kind, cmd.Account, cmd.Amount, cmd.VoucherNo, description, quick.ID.Hex())
	if err != nil {
		s.logger.Warn("Ledger posting failed after quick entry record",
			"quickEntryId", quick.ID.Hex(), "account", cmd.Account, "error", err)
		result.Warning = fmt.Sprintf("quick entry recorded but ledger posting failed: %v", err)
		return result, nil
	}

	dto := ToLedgerEntryDTO(entry)
	result.Entry = &dto
	return result, nil
}

// GetStatement returns one account's entry history oldest-first with its
// current running balance
func (s *LedgerApplicationService) GetStatement(ctx context.Context, query GetStatementQuery) (*StatementDTO, error) {
	direction := domain.Direction(query.Direction)
	if !direction.IsValid() {
		return nil, errors.ErrValidation("direction must be payable or receivable")
	}

	entries, err := s.entries.FindByAccount(ctx, query.OwnerID, query.Account, direction)
	if err != nil {
		s.logger.Error("Failed to get statement", "account", query.Account, "error", err)
		return nil, fmt.Errorf("failed to get statement: %w", err)
	}

	current := 0.0
	if len(entries) > 0 {
		current = entries[len(entries)-1].Balance
	}
	return &StatementDTO{
		Account:        query.Account,
		Direction:      query.Direction,
		CurrentBalance: current,
		Entries:        ToLedgerEntryDTOs(entries),
	}, nil
}

// GetOutstanding partitions one direction's entries by account, reporting
// each account's latest balance alongside its full entry history
func (s *LedgerApplicationService) GetOutstanding(ctx context.Context, query GetOutstandingQuery) ([]OutstandingDTO, error) {
	direction := domain.Direction(query.Direction)
	if !direction.IsValid() {
		return nil, errors.ErrValidation("direction must be payable or receivable")
	}

	entries, err := s.entries.FindByDirection(ctx, query.OwnerID, direction)
	if err != nil {
		s.logger.Error("Failed to get outstanding balances", "direction", direction, "error", err)
		return nil, fmt.Errorf("failed to get outstanding balances: %w", err)
	}

	outstanding := make([]OutstandingDTO, 0)
	for _, group := range groupByAccount(entries) {
		last := group[len(group)-1]
		outstanding = append(outstanding, OutstandingDTO{
			Account: last.Account,
			Balance: last.Balance,
			Entries: ToLedgerEntryDTOs(group),
		})
	}
	return outstanding, nil
}

// GetOutstandingSummary nets each account's payable and receivable balances
func (s *LedgerApplicationService) GetOutstandingSummary(ctx context.Context, ownerID string) ([]OutstandingSummaryDTO, error) {
	payable, err := s.entries.FindByDirection(ctx, ownerID, domain.DirectionPayable)
	if err != nil {
		s.logger.Error("Failed to get payable entries", "error", err)
		return nil, fmt.Errorf("failed to get payable entries: %w", err)
	}
	receivable, err := s.entries.FindByDirection(ctx, ownerID, domain.DirectionReceivable)
	if err != nil {
		s.logger.Error("Failed to get receivable entries", "error", err)
		return nil, fmt.Errorf("failed to get receivable entries: %w", err)
	}

	summaries := make(map[string]*OutstandingSummaryDTO)
	accounts := make([]string, 0)
	ensure := func(account string) *OutstandingSummaryDTO {
		if s, ok := summaries[account]; ok {
			return s
		}
		s := &OutstandingSummaryDTO{Account: account}
		summaries[account] = s
		accounts = append(accounts, account)
		return s
	}

	for _, group := range groupByAccount(payable) {
		last := group[len(group)-1]
		ensure(last.Account).PayableBalance = last.Balance
	}
	for _, group := range groupByAccount(receivable) {
		last := group[len(group)-1]
		ensure(last.Account).ReceivableBalance = last.Balance
	}

	result := make([]OutstandingSummaryDTO, 0, len(accounts))
	for _, account := range accounts {
		summary := summaries[account]
		summary.NetBalance = summary.ReceivableBalance - summary.PayableBalance
		result = append(result, *summary)
	}
	return result, nil
}

// ListQuickEntries lists the owner's manual adjustments
func (s *LedgerApplicationService) ListQuickEntries(ctx context.Context, ownerID string) ([]*domain.QuickEntry, error) {
	entries, err := s.quick.FindByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("Failed to list quick entries", "error", err)
		return nil, fmt.Errorf("failed to list quick entries: %w", err)
	}
	return entries, nil
}

// groupByAccount splits entries into per-account runs, keeping the account
// order of the input. Entries arrive sorted by account then oldest-first, so
// each group's last entry carries the account's current balance.
func groupByAccount(entries []*domain.LedgerEntry) [][]*domain.LedgerEntry {
	groups := make([][]*domain.LedgerEntry, 0)
	index := make(map[string]int)
	for _, entry := range entries {
		i, ok := index[entry.Account]
		if !ok {
			i = len(groups)
			index[entry.Account] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], entry)
	}
	return groups
}
