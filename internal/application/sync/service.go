package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stocklink/backend/internal/domain/catalog"
	syncdomain "github.com/stocklink/backend/internal/domain/sync"
)

// Kind selects which product field a run reconciles
type Kind string

const (
	KindInventory Kind = "inventory"
	KindPrice     Kind = "price"
	KindSales     Kind = "sales"
)

// Valid reports whether k names a known sync kind
func (k Kind) Valid() bool {
	switch k {
	case KindInventory, KindPrice, KindSales:
		return true
	}
	return false
}

// field returns the product column a kind writes
func (k Kind) field() catalog.SyncField {
	switch k {
	case KindInventory:
		return catalog.FieldAvailableQuantity
	case KindPrice:
		return catalog.FieldPrice
	default:
		return catalog.FieldLastPeriodSold
	}
}

// Options tunes one run
type Options struct {
	// ProductIDs restricts the run to a subset of the catalog. Empty means all.
	ProductIDs []uuid.UUID
}

// SourceProvider builds source clients from the current settings. Implemented
// by the infrastructure layer so the orchestrator stays transport-agnostic.
type SourceProvider interface {
	// InventorySource returns the primary storefront inventory source.
	InventorySource(settings *catalog.Settings) (syncdomain.InventorySource, error)
	// SalesSources returns one sales source per configured storefront.
	SalesSources(settings *catalog.Settings) ([]syncdomain.SalesSource, error)
	// PriceSource returns the order-management database price source.
	PriceSource() (syncdomain.PriceSource, error)
}

// Config bounds the engine's batching and concurrency
type Config struct {
	BatchSize      int
	PriceWorkers   int
	SourceTimeout  time.Duration
	ProgressBuffer int
}

// withDefaults fills unset config fields with the engine defaults
func (c Config) withDefaults() Config {
	if c.BatchSize < 1 {
		c.BatchSize = syncdomain.DefaultBatchSize
	}
	if c.PriceWorkers < 1 {
		c.PriceWorkers = syncdomain.DefaultPriceWorkers
	}
	if c.SourceTimeout <= 0 {
		c.SourceTimeout = 2 * time.Minute
	}
	if c.ProgressBuffer < 1 {
		c.ProgressBuffer = syncdomain.DefaultProgressBuffer
	}
	return c
}

// Service orchestrates synchronization runs
type Service struct {
	products catalog.ProductRepository
	settings catalog.SettingsRepository
	sources  SourceProvider
	config   Config
	logger   *zap.Logger
}

// NewService creates a new sync orchestrator
func NewService(
	products catalog.ProductRepository,
	settings catalog.SettingsRepository,
	sources SourceProvider,
	config Config,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		products: products,
		settings: settings,
		sources:  sources,
		config:   config.withDefaults(),
		logger:   logger,
	}
}

// Run starts a synchronization run and returns its ordered event stream. The
// run is detached from the caller's context: a consumer that disconnects
// mid-stream does not stop the catalog write. Configuration and persistence
// problems surface as a terminal error event on the stream.
func (s *Service) Run(ctx context.Context, kind Kind, opts Options) (<-chan syncdomain.Event, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown sync kind %q", kind)
	}

	reporter := syncdomain.NewReporter(s.config.ProgressBuffer)
	go s.run(context.WithoutCancel(ctx), kind, opts, reporter)
	return reporter.Events(), nil
}

// runItem pairs a catalog product with its per-run disposition
type runItem struct {
	product catalog.Product
	skip    bool
}

// run executes one synchronization run to completion
func (s *Service) run(ctx context.Context, kind Kind, opts Options, reporter *syncdomain.Reporter) {
	defer reporter.Close()

	log := s.logger.With(zap.String("sync_kind", string(kind)))
	started := time.Now()

	settings, err := s.settings.Get(ctx)
	if err != nil {
		log.Error("failed to load settings", zap.Error(err))
		reporter.Emit(syncdomain.ErrorEvent("failed to load settings: " + err.Error()))
		return
	}

	plan, err := s.buildPlan(kind, settings)
	if err != nil {
		log.Warn("sync run rejected", zap.Error(err))
		reporter.Emit(syncdomain.ErrorEvent(err.Error()))
		return
	}

	items, err := s.loadItems(ctx, kind, opts, settings)
	if err != nil {
		log.Error("failed to enumerate products", zap.Error(err))
		reporter.Emit(syncdomain.ErrorEvent("failed to enumerate products: " + err.Error()))
		return
	}

	total := len(items)
	reporter.Emit(syncdomain.StartEvent(total))

	summary := syncdomain.RunSummary{Total: total, NotFoundBarcodes: []string{}}
	updates := make(map[string]decimal.Decimal)
	failedSources := newFailureSet()

	current := 0
	for i := 0; i < len(items); {
		// Collect the next span: up to one batch of eligible barcodes plus
		// any interleaved skipped items, preserving input order throughout.
		j := i
		var batch []string
		for j < len(items) && len(batch) < s.config.BatchSize {
			if !items[j].skip {
				batch = append(batch, items[j].product.Barcode)
			}
			j++
		}

		outcome := plan.queryBatch(ctx, batch, failedSources)

		for _, item := range items[i:j] {
			current++
			if item.skip {
				reporter.Emit(syncdomain.ProgressEvent(current, total, item.product.Barcode, item.product.Name, syncdomain.StatusSkipped))
				continue
			}
			ev := plan.resolve(item.product, outcome, updates, &summary)
			ev.Current = current
			ev.Total = total
			reporter.Emit(ev)
		}
		i = j
	}

	summary.FailedSources = failedSources.list()

	updated, err := s.products.BatchUpdateField(ctx, kind.field(), updates)
	if err != nil {
		err = fmt.Errorf("%w: %v", syncdomain.ErrPersistenceFailure, err)
		log.Error("catalog batch update failed", zap.Error(err))
		reporter.Emit(syncdomain.ErrorEvent("failed to persist updates: " + err.Error()))
		return
	}

	log.Info("sync run completed",
		zap.Int("total", summary.Total),
		zap.Int("synced", summary.Synced),
		zap.Int("not_found", summary.NotFound),
		zap.Int("errors", summary.Errors),
		zap.Int64("rows_updated", updated),
		zap.Int("failed_sources", len(summary.FailedSources)),
		zap.Duration("elapsed", time.Since(started)),
	)
	reporter.Emit(syncdomain.CompleteEvent(summary))
}

// loadItems enumerates the products for the run in stable order and marks
// items the run must not touch.
func (s *Service) loadItems(ctx context.Context, kind Kind, opts Options, settings *catalog.Settings) ([]runItem, error) {
	var (
		products []catalog.Product
		err      error
	)
	if len(opts.ProductIDs) > 0 {
		products, err = s.products.FindByIDs(ctx, opts.ProductIDs)
	} else {
		products, err = s.products.FindAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	// Excluded prefixes only apply to sales runs, mirroring how the
	// exclusion list is used operationally (dropship SKUs never restocked).
	var excluded []string
	if kind == KindSales {
		excluded = settings.ExcludedPrefixes()
	}

	items := make([]runItem, len(products))
	for i, p := range products {
		items[i] = runItem{product: p, skip: p.Barcode == "" || hasPrefix(p.Barcode, excluded)}
	}
	return items, nil
}

func hasPrefix(barcode string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(barcode, prefix) {
			return true
		}
	}
	return false
}
