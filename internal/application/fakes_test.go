package application

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ledgerstack/erp-core/internal/domain"
	"github.com/ledgerstack/erp-core/pkg/logging"
)

func testLogger() *logging.Logger {
	return logging.New(logging.DefaultConfig("test"))
}

func duplicateKeyErr() error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
}

type fakeSKURepo struct {
	skus            []*domain.SKU
	saveErr         error
	saveErrOnce     bool
	findErr         error
	updateErr       error
	incrementErr    error
	deleteErr       error
	stagingMissOnce bool
}

func (f *fakeSKURepo) Save(ctx context.Context, sku *domain.SKU) error {
	if f.saveErr != nil {
		err := f.saveErr
		if f.saveErrOnce {
			f.saveErr = nil
		}
		return err
	}
	// location uniqueness is global, matching the storage index
	for _, existing := range f.skus {
		if existing.Location == sku.Location {
			return duplicateKeyErr()
		}
	}
	f.skus = append(f.skus, sku)
	return nil
}

func (f *fakeSKURepo) FindByID(ctx context.Context, ownerID, id string) (*domain.SKU, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, sku := range f.skus {
		if sku.CreatedBy == ownerID && sku.ID.Hex() == id {
			return sku, nil
		}
	}
	return nil, nil
}

func (f *fakeSKURepo) FindByOwner(ctx context.Context, ownerID string) ([]*domain.SKU, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	results := make([]*domain.SKU, 0)
	for _, sku := range f.skus {
		if sku.CreatedBy == ownerID {
			results = append(results, sku)
		}
	}
	return results, nil
}

func (f *fakeSKURepo) FindStaging(ctx context.Context, ownerID, groupID string) (*domain.SKU, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	// simulates a staging SKU inserted between a lookup and the next save
	if f.stagingMissOnce {
		f.stagingMissOnce = false
		return nil, nil
	}
	for _, sku := range f.skus {
		if sku.CreatedBy == ownerID && sku.Staging && sku.GroupID == groupID {
			return sku, nil
		}
	}
	return nil, nil
}

func (f *fakeSKURepo) FindAllStaging(ctx context.Context, ownerID string) ([]*domain.SKU, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	results := make([]*domain.SKU, 0)
	for _, sku := range f.skus {
		if sku.CreatedBy == ownerID && sku.Staging {
			results = append(results, sku)
		}
	}
	return results, nil
}

func (f *fakeSKURepo) IncrementPart(ctx context.Context, ownerID, productID, subpartID, partName, color string, quantity int) (*domain.SKU, error) {
	if f.incrementErr != nil {
		return nil, f.incrementErr
	}
	for _, sku := range f.skus {
		if sku.CreatedBy != ownerID {
			continue
		}
		if pi, qi := sku.FindPart(productID, subpartID, partName, color); pi >= 0 {
			sku.Products[pi].Parts[qi].Quantity += quantity
			return sku, nil
		}
	}
	return nil, nil
}

func (f *fakeSKURepo) Update(ctx context.Context, ownerID string, sku *domain.SKU) error {
	return f.updateErr
}

func (f *fakeSKURepo) Delete(ctx context.Context, ownerID, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, sku := range f.skus {
		if sku.CreatedBy == ownerID && sku.ID.Hex() == id {
			f.skus = append(f.skus[:i], f.skus[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeSubpartRepo struct {
	subparts []*domain.Subpart
	saveErr  error
	findErr  error
}

func (f *fakeSubpartRepo) Save(ctx context.Context, subpart *domain.Subpart) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.subparts = append(f.subparts, subpart)
	return nil
}

func (f *fakeSubpartRepo) FindByID(ctx context.Context, ownerID, id string) (*domain.Subpart, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, sp := range f.subparts {
		if sp.CreatedBy == ownerID && sp.ID.Hex() == id {
			return sp, nil
		}
	}
	return nil, nil
}

func (f *fakeSubpartRepo) FindByOwner(ctx context.Context, ownerID string) ([]*domain.Subpart, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	results := make([]*domain.Subpart, 0)
	for _, sp := range f.subparts {
		if sp.CreatedBy == ownerID {
			results = append(results, sp)
		}
	}
	return results, nil
}

func (f *fakeSubpartRepo) FindByProduct(ctx context.Context, ownerID, productID string) ([]*domain.Subpart, error) {
	results := make([]*domain.Subpart, 0)
	for _, sp := range f.subparts {
		if sp.CreatedBy == ownerID && sp.ProductID == productID {
			results = append(results, sp)
		}
	}
	return results, nil
}

func (f *fakeSubpartRepo) Update(ctx context.Context, ownerID string, subpart *domain.Subpart) error {
	return nil
}

func (f *fakeSubpartRepo) Delete(ctx context.Context, ownerID, id string) error {
	for i, sp := range f.subparts {
		if sp.CreatedBy == ownerID && sp.ID.Hex() == id {
			f.subparts = append(f.subparts[:i], f.subparts[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeProductionRepo struct {
	events    []*domain.ProductionEvent
	recordErr error
}

func (f *fakeProductionRepo) Record(ctx context.Context, event *domain.ProductionEvent) (*domain.ProductionEvent, error) {
	if f.recordErr != nil {
		return nil, f.recordErr
	}
	for _, existing := range f.events {
		if existing.CreatedBy == event.CreatedBy && existing.Key == event.Key {
			existing.Quantity += event.Quantity
			return existing, nil
		}
	}
	f.events = append(f.events, event)
	return event, nil
}

func (f *fakeProductionRepo) FindByOwner(ctx context.Context, ownerID string) ([]*domain.ProductionEvent, error) {
	results := make([]*domain.ProductionEvent, 0)
	for _, e := range f.events {
		if e.CreatedBy == ownerID {
			results = append(results, e)
		}
	}
	return results, nil
}

func (f *fakeProductionRepo) FindByDate(ctx context.Context, ownerID, date string) ([]*domain.ProductionEvent, error) {
	results := make([]*domain.ProductionEvent, 0)
	for _, e := range f.events {
		if e.CreatedBy == ownerID && e.Key.Date == date {
			results = append(results, e)
		}
	}
	return results, nil
}

func (f *fakeProductionRepo) ExistsForSubpart(ctx context.Context, ownerID, subpartID string) (bool, error) {
	for _, e := range f.events {
		if e.CreatedBy == ownerID && e.Key.SubpartID == subpartID {
			return true, nil
		}
	}
	return false, nil
}

type fakeLedgerRepo struct {
	mu      sync.Mutex
	entries []*domain.LedgerEntry
	saveErr error
	findErr error
}

func (f *fakeLedgerRepo) Save(ctx context.Context, entry *domain.LedgerEntry) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeLedgerRepo) FindLatest(ctx context.Context, ownerID, account string, direction domain.Direction) (*domain.LedgerEntry, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *domain.LedgerEntry
	for _, e := range f.entries {
		if e.CreatedBy == ownerID && e.Account == account && e.Direction == direction {
			latest = e
		}
	}
	return latest, nil
}

func (f *fakeLedgerRepo) FindByAccount(ctx context.Context, ownerID, account string, direction domain.Direction) ([]*domain.LedgerEntry, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	results := make([]*domain.LedgerEntry, 0)
	for _, e := range f.entries {
		if e.CreatedBy == ownerID && e.Account == account && e.Direction == direction {
			results = append(results, e)
		}
	}
	return results, nil
}

func (f *fakeLedgerRepo) FindByDirection(ctx context.Context, ownerID string, direction domain.Direction) ([]*domain.LedgerEntry, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	results := make([]*domain.LedgerEntry, 0)
	for _, e := range f.entries {
		if e.CreatedBy == ownerID && e.Direction == direction {
			results = append(results, e)
		}
	}
	return results, nil
}

type fakeQuickEntryRepo struct {
	entries []*domain.QuickEntry
	saveErr error
}

func (f *fakeQuickEntryRepo) Save(ctx context.Context, entry *domain.QuickEntry) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeQuickEntryRepo) FindByOwner(ctx context.Context, ownerID string) ([]*domain.QuickEntry, error) {
	results := make([]*domain.QuickEntry, 0)
	for _, e := range f.entries {
		if e.CreatedBy == ownerID {
			results = append(results, e)
		}
	}
	return results, nil
}

type fakeOrderRepo struct {
	orders  []*domain.Order
	saveErr error
	findErr error
}

func (f *fakeOrderRepo) Save(ctx context.Context, order *domain.Order) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.orders = append(f.orders, order)
	return nil
}

func (f *fakeOrderRepo) FindByID(ctx context.Context, ownerID, id string) (*domain.Order, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, o := range f.orders {
		if o.CreatedBy == ownerID && o.ID.Hex() == id {
			return o, nil
		}
	}
	return nil, nil
}

func (f *fakeOrderRepo) FindByOwner(ctx context.Context, ownerID string) ([]*domain.Order, error) {
	results := make([]*domain.Order, 0)
	for _, o := range f.orders {
		if o.CreatedBy == ownerID {
			results = append(results, o)
		}
	}
	return results, nil
}

func (f *fakeOrderRepo) Update(ctx context.Context, ownerID string, order *domain.Order) error {
	return nil
}

func (f *fakeOrderRepo) Delete(ctx context.Context, ownerID, id string) error {
	for i, o := range f.orders {
		if o.CreatedBy == ownerID && o.ID.Hex() == id {
			f.orders = append(f.orders[:i], f.orders[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakePublisher struct {
	published []domain.DomainEvent
	err       error
}

func (f *fakePublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, event)
	return nil
}
