package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stocklink/backend/internal/domain/catalog"
	syncdomain "github.com/stocklink/backend/internal/domain/sync"
)

// --- mocks -----------------------------------------------------------------

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*catalog.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepository) FindByBarcode(ctx context.Context, barcode string) (*catalog.Product, error) {
	args := m.Called(ctx, barcode)
	if p, ok := args.Get(0).(*catalog.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepository) FindAll(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	if products, ok := args.Get(0).([]catalog.Product); ok {
		return products, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	if products, ok := args.Get(0).([]catalog.Product); ok {
		return products, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProductRepository) DeleteAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockProductRepository) ClearField(ctx context.Context, field catalog.SyncField) (int64, error) {
	args := m.Called(ctx, field)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockProductRepository) BatchUpdateField(ctx context.Context, field catalog.SyncField, updates map[string]decimal.Decimal) (int64, error) {
	args := m.Called(ctx, field, updates)
	return args.Get(0).(int64), args.Error(1)
}

type mockSettingsRepository struct {
	mock.Mock
}

func (m *mockSettingsRepository) Get(ctx context.Context) (*catalog.Settings, error) {
	args := m.Called(ctx)
	if s, ok := args.Get(0).(*catalog.Settings); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSettingsRepository) Update(ctx context.Context, settings *catalog.Settings) error {
	return m.Called(ctx, settings).Error(0)
}

// --- stub sources ----------------------------------------------------------

type stubInventorySource struct {
	name    string
	results map[string]syncdomain.InventoryResult
	err     error
	calls   [][]string
}

func (s *stubInventorySource) Name() string { return s.name }

func (s *stubInventorySource) QueryInventory(ctx context.Context, skus []string) (map[string]syncdomain.InventoryResult, error) {
	s.calls = append(s.calls, skus)
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[string]syncdomain.InventoryResult)
	for _, sku := range skus {
		if r, ok := s.results[sku]; ok {
			out[sku] = r
		}
	}
	return out, nil
}

type stubSalesSource struct {
	name  string
	sales map[string]int
	err   error
}

func (s *stubSalesSource) Name() string { return s.name }

func (s *stubSalesSource) QuerySales(ctx context.Context, skus []string, tag string, since time.Time) (map[string]int, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.sales, nil
}

type stubPriceSource struct {
	name   string
	prices map[string]decimal.Decimal
}

func (s *stubPriceSource) Name() string { return s.name }

func (s *stubPriceSource) QueryPrice(ctx context.Context, sku string) (decimal.Decimal, bool, error) {
	price, ok := s.prices[sku]
	return price, ok, nil
}

type stubSourceProvider struct {
	inventory syncdomain.InventorySource
	sales     []syncdomain.SalesSource
	price     syncdomain.PriceSource
	err       error
}

func (p *stubSourceProvider) InventorySource(settings *catalog.Settings) (syncdomain.InventorySource, error) {
	return p.inventory, p.err
}

func (p *stubSourceProvider) SalesSources(settings *catalog.Settings) ([]syncdomain.SalesSource, error) {
	return p.sales, p.err
}

func (p *stubSourceProvider) PriceSource() (syncdomain.PriceSource, error) {
	return p.price, p.err
}

// --- helpers ---------------------------------------------------------------

func testProduct(t *testing.T, name, barcode string, perCase int) catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(name, barcode)
	require.NoError(t, err)
	if perCase > 0 {
		p.QuantityPerCase = &perCase
	}
	return *p
}

// collectEvents drains a run's event stream with a safety timeout
func collectEvents(t *testing.T, events <-chan syncdomain.Event) []syncdomain.Event {
	t.Helper()

	var collected []syncdomain.Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return collected
			}
			collected = append(collected, ev)
		case <-timeout:
			t.Fatal("timed out waiting for event stream to close")
		}
	}
}

func progressEvents(events []syncdomain.Event) []syncdomain.Event {
	var out []syncdomain.Event
	for _, ev := range events {
		if ev.Type == syncdomain.EventProgress {
			out = append(out, ev)
		}
	}
	return out
}

func decimalMap(values map[string]int64) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(values))
	for k, v := range values {
		out[k] = decimal.NewFromInt(v)
	}
	return out
}

// matchUpdates matches a BatchUpdateField argument against expected values
func matchUpdates(expected map[string]decimal.Decimal) any {
	return mock.MatchedBy(func(updates map[string]decimal.Decimal) bool {
		if len(updates) != len(expected) {
			return false
		}
		for k, v := range expected {
			got, ok := updates[k]
			if !ok || !got.Equal(v) {
				return false
			}
		}
		return true
	})
}

func newTestService(products *mockProductRepository, settings *mockSettingsRepository, provider SourceProvider, batchSize int) *Service {
	return NewService(products, settings, provider, Config{
		BatchSize:     batchSize,
		PriceWorkers:  2,
		SourceTimeout: time.Second,
	}, nil)
}

// --- tests -----------------------------------------------------------------

func TestService_Run_RejectsUnknownKind(t *testing.T) {
	svc := newTestService(new(mockProductRepository), new(mockSettingsRepository), &stubSourceProvider{}, 2)

	_, err := svc.Run(context.Background(), Kind("reindex"), Options{})
	assert.Error(t, err)
}

func TestService_Run_Inventory(t *testing.T) {
	products := new(mockProductRepository)
	settingsRepo := new(mockSettingsRepository)
	source := &stubInventorySource{
		name: "store-1",
		results: map[string]syncdomain.InventoryResult{
			"A": {Found: true, Quantity: 5},
			"C": {Found: true, Quantity: 0},
		},
	}
	svc := newTestService(products, settingsRepo, &stubSourceProvider{inventory: source}, 2)

	settingsRepo.On("Get", mock.Anything).Return(&catalog.Settings{}, nil)
	products.On("FindAll", mock.Anything).Return([]catalog.Product{
		testProduct(t, "Product A", "A", 0),
		testProduct(t, "Product B", "B", 0),
		testProduct(t, "Product C", "C", 0),
	}, nil)
	products.On("BatchUpdateField", mock.Anything, catalog.FieldAvailableQuantity,
		matchUpdates(decimalMap(map[string]int64{"A": 5, "C": 0}))).
		Return(int64(2), nil)

	events, err := svc.Run(context.Background(), KindInventory, Options{})
	require.NoError(t, err)
	collected := collectEvents(t, events)

	// exactly 1 start + 3 progress + 1 terminal
	require.Len(t, collected, 5)
	assert.Equal(t, syncdomain.EventStart, collected[0].Type)
	assert.Equal(t, 3, collected[0].Total)

	progress := progressEvents(collected)
	require.Len(t, progress, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{progress[0].Barcode, progress[1].Barcode, progress[2].Barcode})
	assert.Equal(t, syncdomain.StatusSynced, progress[0].Status)
	assert.Equal(t, syncdomain.StatusNotFound, progress[1].Status)
	assert.Equal(t, syncdomain.StatusSynced, progress[2].Status)

	terminal := collected[4]
	require.Equal(t, syncdomain.EventComplete, terminal.Type)
	require.NotNil(t, terminal.Summary)
	assert.Equal(t, 2, terminal.Summary.Synced)
	assert.Equal(t, 1, terminal.Summary.NotFound)
	assert.Equal(t, []string{"B"}, terminal.Summary.NotFoundBarcodes)
	assert.Empty(t, terminal.Summary.FailedSources)

	// batch size 2 splits [A B C] into [A B] and [C]
	require.Len(t, source.calls, 2)
	assert.Equal(t, []string{"A", "B"}, source.calls[0])
	assert.Equal(t, []string{"C"}, source.calls[1])

	products.AssertExpectations(t)
}

func TestService_Run_Inventory_SourceFailureMarksBatchErrored(t *testing.T) {
	products := new(mockProductRepository)
	settingsRepo := new(mockSettingsRepository)
	source := &stubInventorySource{name: "store-1", err: errors.New("connection refused")}
	svc := newTestService(products, settingsRepo, &stubSourceProvider{inventory: source}, 50)

	settingsRepo.On("Get", mock.Anything).Return(&catalog.Settings{}, nil)
	products.On("FindAll", mock.Anything).Return([]catalog.Product{
		testProduct(t, "Product A", "A", 0),
		testProduct(t, "Product B", "B", 0),
	}, nil)
	products.On("BatchUpdateField", mock.Anything, catalog.FieldAvailableQuantity,
		matchUpdates(map[string]decimal.Decimal{})).
		Return(int64(0), nil)

	events, err := svc.Run(context.Background(), KindInventory, Options{})
	require.NoError(t, err)
	collected := collectEvents(t, events)

	progress := progressEvents(collected)
	require.Len(t, progress, 2)
	assert.Equal(t, syncdomain.StatusError, progress[0].Status)
	assert.Equal(t, syncdomain.StatusError, progress[1].Status)

	terminal := collected[len(collected)-1]
	require.Equal(t, syncdomain.EventComplete, terminal.Type)
	assert.Equal(t, 2, terminal.Summary.Errors)
	require.Len(t, terminal.Summary.FailedSources, 1)
	assert.Equal(t, "store-1", terminal.Summary.FailedSources[0].Source)
}

func TestService_Run_Sales_TwoSourcesSumAndRound(t *testing.T) {
	products := new(mockProductRepository)
	settingsRepo := new(mockSettingsRepository)
	provider := &stubSourceProvider{sales: []syncdomain.SalesSource{
		&stubSalesSource{name: "store-1", sales: map[string]int{"X": 5}},
		&stubSalesSource{name: "store-2", sales: map[string]int{"X": 20}},
	}}
	svc := newTestService(products, settingsRepo, provider, 50)

	settingsRepo.On("Get", mock.Anything).Return(&catalog.Settings{
		SalesOrderTag:    "warehouse",
		SalesLookbackDay: 30,
	}, nil)
	products.On("FindAll", mock.Anything).Return([]catalog.Product{
		testProduct(t, "Product X", "X", 12),
		testProduct(t, "Product Y", "Y", 6),
	}, nil)
	// X: 5+20=25 rounds up to 36; Y absent sells zero, floors to one case of 6
	products.On("BatchUpdateField", mock.Anything, catalog.FieldLastPeriodSold,
		matchUpdates(decimalMap(map[string]int64{"X": 36, "Y": 6}))).
		Return(int64(2), nil)

	events, err := svc.Run(context.Background(), KindSales, Options{})
	require.NoError(t, err)
	collected := collectEvents(t, events)

	progress := progressEvents(collected)
	require.Len(t, progress, 2)
	require.NotNil(t, progress[0].Quantity)
	assert.Equal(t, 36, *progress[0].Quantity)
	require.NotNil(t, progress[1].Quantity)
	assert.Equal(t, 6, *progress[1].Quantity)

	terminal := collected[len(collected)-1]
	require.Equal(t, syncdomain.EventComplete, terminal.Type)
	assert.Equal(t, 2, terminal.Summary.Synced)

	products.AssertExpectations(t)
}

func TestService_Run_Sales_EmptyTagFailsBeforeAnyQuery(t *testing.T) {
	products := new(mockProductRepository)
	settingsRepo := new(mockSettingsRepository)
	provider := &stubSourceProvider{sales: []syncdomain.SalesSource{
		&stubSalesSource{name: "store-1", sales: map[string]int{"X": 5}},
	}}
	svc := newTestService(products, settingsRepo, provider, 50)

	settingsRepo.On("Get", mock.Anything).Return(&catalog.Settings{SalesOrderTag: "  "}, nil)

	events, err := svc.Run(context.Background(), KindSales, Options{})
	require.NoError(t, err)
	collected := collectEvents(t, events)

	require.Len(t, collected, 1, "failed validation emits only the terminal error")
	assert.Equal(t, syncdomain.EventError, collected[0].Type)
	assert.Contains(t, collected[0].Message, "sales order tag")

	products.AssertNotCalled(t, "FindAll", mock.Anything)
	products.AssertNotCalled(t, "BatchUpdateField", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Run_Sales_ExcludedPrefixSkipped(t *testing.T) {
	products := new(mockProductRepository)
	settingsRepo := new(mockSettingsRepository)
	provider := &stubSourceProvider{sales: []syncdomain.SalesSource{
		&stubSalesSource{name: "store-1", sales: map[string]int{"X": 5}},
	}}
	svc := newTestService(products, settingsRepo, provider, 50)

	settingsRepo.On("Get", mock.Anything).Return(&catalog.Settings{
		SalesOrderTag: "warehouse",
		ExcludedSKUs:  "GIFT-",
	}, nil)
	products.On("FindAll", mock.Anything).Return([]catalog.Product{
		testProduct(t, "Product X", "X", 12),
		testProduct(t, "Gift Card", "GIFT-100", 1),
	}, nil)
	products.On("BatchUpdateField", mock.Anything, catalog.FieldLastPeriodSold,
		matchUpdates(decimalMap(map[string]int64{"X": 12}))).
		Return(int64(1), nil)

	events, err := svc.Run(context.Background(), KindSales, Options{})
	require.NoError(t, err)
	collected := collectEvents(t, events)

	progress := progressEvents(collected)
	require.Len(t, progress, 2)
	assert.Equal(t, syncdomain.StatusSynced, progress[0].Status)
	assert.Equal(t, syncdomain.StatusSkipped, progress[1].Status)

	products.AssertExpectations(t)
}

func TestService_Run_Sales_ProductIDFilter(t *testing.T) {
	products := new(mockProductRepository)
	settingsRepo := new(mockSettingsRepository)
	provider := &stubSourceProvider{sales: []syncdomain.SalesSource{
		&stubSalesSource{name: "store-1", sales: map[string]int{"X": 1}},
	}}
	svc := newTestService(products, settingsRepo, provider, 50)

	ids := []uuid.UUID{uuid.New()}
	settingsRepo.On("Get", mock.Anything).Return(&catalog.Settings{SalesOrderTag: "warehouse"}, nil)
	products.On("FindByIDs", mock.Anything, ids).Return([]catalog.Product{
		testProduct(t, "Product X", "X", 12),
	}, nil)
	products.On("BatchUpdateField", mock.Anything, catalog.FieldLastPeriodSold, mock.Anything).
		Return(int64(1), nil)

	events, err := svc.Run(context.Background(), KindSales, Options{ProductIDs: ids})
	require.NoError(t, err)
	collected := collectEvents(t, events)

	assert.Equal(t, syncdomain.EventComplete, collected[len(collected)-1].Type)
	products.AssertCalled(t, "FindByIDs", mock.Anything, ids)
	products.AssertNotCalled(t, "FindAll", mock.Anything)
}

func TestService_Run_Price(t *testing.T) {
	products := new(mockProductRepository)
	settingsRepo := new(mockSettingsRepository)
	provider := &stubSourceProvider{price: &stubPriceSource{
		name: "orders-db",
		prices: map[string]decimal.Decimal{
			"A": decimal.NewFromFloat(9.99),
		},
	}}
	svc := newTestService(products, settingsRepo, provider, 50)

	settingsRepo.On("Get", mock.Anything).Return(&catalog.Settings{}, nil)
	products.On("FindAll", mock.Anything).Return([]catalog.Product{
		testProduct(t, "Product A", "A", 0),
		testProduct(t, "Product B", "B", 0),
	}, nil)
	products.On("BatchUpdateField", mock.Anything, catalog.FieldPrice,
		matchUpdates(map[string]decimal.Decimal{"A": decimal.NewFromFloat(9.99)})).
		Return(int64(1), nil)

	events, err := svc.Run(context.Background(), KindPrice, Options{})
	require.NoError(t, err)
	collected := collectEvents(t, events)

	progress := progressEvents(collected)
	require.Len(t, progress, 2)
	assert.Equal(t, syncdomain.StatusSynced, progress[0].Status)
	require.NotNil(t, progress[0].Price)
	assert.True(t, progress[0].Price.Equal(decimal.NewFromFloat(9.99)))
	assert.Equal(t, syncdomain.StatusNotFound, progress[1].Status)

	terminal := collected[len(collected)-1]
	require.Equal(t, syncdomain.EventComplete, terminal.Type)
	assert.Equal(t, []string{"B"}, terminal.Summary.NotFoundBarcodes)
}

func TestService_Run_PersistenceFailureIsFatal(t *testing.T) {
	products := new(mockProductRepository)
	settingsRepo := new(mockSettingsRepository)
	source := &stubInventorySource{
		name:    "store-1",
		results: map[string]syncdomain.InventoryResult{"A": {Found: true, Quantity: 1}},
	}
	svc := newTestService(products, settingsRepo, &stubSourceProvider{inventory: source}, 50)

	settingsRepo.On("Get", mock.Anything).Return(&catalog.Settings{}, nil)
	products.On("FindAll", mock.Anything).Return([]catalog.Product{
		testProduct(t, "Product A", "A", 0),
	}, nil)
	products.On("BatchUpdateField", mock.Anything, catalog.FieldAvailableQuantity, mock.Anything).
		Return(int64(0), errors.New("database is locked"))

	events, err := svc.Run(context.Background(), KindInventory, Options{})
	require.NoError(t, err)
	collected := collectEvents(t, events)

	terminal := collected[len(collected)-1]
	require.Equal(t, syncdomain.EventError, terminal.Type)
	assert.Contains(t, terminal.Message, "database is locked")
}

func TestService_Run_EmptyCatalog(t *testing.T) {
	products := new(mockProductRepository)
	settingsRepo := new(mockSettingsRepository)
	source := &stubInventorySource{name: "store-1"}
	svc := newTestService(products, settingsRepo, &stubSourceProvider{inventory: source}, 50)

	settingsRepo.On("Get", mock.Anything).Return(&catalog.Settings{}, nil)
	products.On("FindAll", mock.Anything).Return([]catalog.Product{}, nil)
	products.On("BatchUpdateField", mock.Anything, catalog.FieldAvailableQuantity,
		matchUpdates(map[string]decimal.Decimal{})).
		Return(int64(0), nil)

	events, err := svc.Run(context.Background(), KindInventory, Options{})
	require.NoError(t, err)
	collected := collectEvents(t, events)

	require.Len(t, collected, 2)
	assert.Equal(t, syncdomain.EventStart, collected[0].Type)
	assert.Equal(t, 0, collected[0].Total)
	assert.Equal(t, syncdomain.EventComplete, collected[1].Type)
	assert.Empty(t, source.calls)
}
