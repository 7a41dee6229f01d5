package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stocklink/backend/internal/domain/catalog"
	syncdomain "github.com/stocklink/backend/internal/domain/sync"
)

// runPlan is the per-run dispatch table: which sources to query and how to
// turn a batch outcome into per-product results. Built once at run start.
type runPlan struct {
	kind    Kind
	timeout time.Duration
	workers int

	inventory syncdomain.InventorySource
	sales     []syncdomain.SalesSource
	price     syncdomain.PriceSource
	tag       string
	since     time.Time
}

// buildPlan validates configuration for the requested kind and resolves the
// sources. All failures here are fatal and happen before any query is issued.
func (s *Service) buildPlan(kind Kind, settings *catalog.Settings) (*runPlan, error) {
	plan := &runPlan{
		kind:    kind,
		timeout: s.config.SourceTimeout,
		workers: s.config.PriceWorkers,
	}

	switch kind {
	case KindInventory:
		source, err := s.sources.InventorySource(settings)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", syncdomain.ErrInvalidConfiguration, err)
		}
		plan.inventory = source

	case KindSales:
		tag := strings.TrimSpace(settings.SalesOrderTag)
		if tag == "" {
			return nil, fmt.Errorf("%w: sales order tag is not configured", syncdomain.ErrInvalidConfiguration)
		}
		sources, err := s.sources.SalesSources(settings)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", syncdomain.ErrInvalidConfiguration, err)
		}
		if len(sources) == 0 {
			return nil, fmt.Errorf("%w: no storefronts configured", syncdomain.ErrInvalidConfiguration)
		}
		plan.sales = sources
		plan.tag = tag
		plan.since = time.Now().AddDate(0, 0, -settings.LookbackDays())

	case KindPrice:
		source, err := s.sources.PriceSource()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", syncdomain.ErrInvalidConfiguration, err)
		}
		plan.price = source
	}

	return plan, nil
}

// batchOutcome carries one batch's aggregated source results
type batchOutcome struct {
	inventory map[string]syncdomain.InventoryResult
	sales     map[string]int
	prices    map[string]decimal.Decimal

	// failed marks a whole-batch source failure for single-source kinds;
	// every identifier in the batch then resolves to an error status.
	failed bool
}

// queryBatch issues the remote calls for one batch and records source
// failures. Source errors never abort the run.
func (p *runPlan) queryBatch(ctx context.Context, batch []string, failures *failureSet) batchOutcome {
	if len(batch) == 0 {
		return batchOutcome{}
	}

	switch p.kind {
	case KindInventory:
		queryCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		results, err := p.inventory.QueryInventory(queryCtx, batch)
		if err != nil {
			failures.add(p.inventory.Name(), err.Error())
			return batchOutcome{failed: true}
		}
		return batchOutcome{inventory: results}

	case KindSales:
		agg := syncdomain.AggregateSales(ctx, p.sales, batch, p.tag, p.since, p.timeout)
		for _, f := range agg.Failures {
			failures.add(f.Source, f.Error)
		}
		return batchOutcome{sales: agg.Totals}

	default:
		agg := syncdomain.CollectPrices(ctx, p.price, batch, p.workers, p.timeout)
		for _, f := range agg.Failures {
			failures.add(f.Source, f.Error)
		}
		return batchOutcome{prices: agg.Prices}
	}
}

// resolve converts one product's aggregated outcome into a progress event,
// accumulating the pending catalog update and the run summary. The caller
// fills in the event's position fields.
func (p *runPlan) resolve(product catalog.Product, outcome batchOutcome, updates map[string]decimal.Decimal, summary *syncdomain.RunSummary) syncdomain.Event {
	ev := syncdomain.ProgressEvent(0, 0, product.Barcode, product.Name, syncdomain.StatusSynced)

	switch p.kind {
	case KindInventory:
		if outcome.failed {
			summary.Errors++
			ev.Status = syncdomain.StatusError
			return ev
		}
		result, ok := outcome.inventory[product.Barcode]
		if !ok || !result.Found {
			summary.NotFound++
			summary.NotFoundBarcodes = append(summary.NotFoundBarcodes, product.Barcode)
			ev.Status = syncdomain.StatusNotFound
			return ev
		}
		quantity := result.Quantity
		updates[product.Barcode] = decimal.NewFromInt(int64(quantity))
		summary.Synced++
		ev.Quantity = &quantity

	case KindSales:
		// Absent identifiers sold zero; the floor-order policy still yields
		// one case, so every eligible product gets an update.
		quantity := syncdomain.OrderQuantity(outcome.sales[product.Barcode], product.CaseQuantity())
		updates[product.Barcode] = decimal.NewFromInt(int64(quantity))
		summary.Synced++
		ev.Quantity = &quantity

	default:
		price, ok := outcome.prices[product.Barcode]
		if !ok {
			summary.NotFound++
			summary.NotFoundBarcodes = append(summary.NotFoundBarcodes, product.Barcode)
			ev.Status = syncdomain.StatusNotFound
			return ev
		}
		updates[product.Barcode] = price
		summary.Synced++
		ev.Price = &price
	}

	return ev
}

// failureSet deduplicates source failures by source name, keeping the first
// error text and insertion order.
type failureSet struct {
	seen  map[string]bool
	order []syncdomain.SourceFailure
}

func newFailureSet() *failureSet {
	return &failureSet{seen: make(map[string]bool)}
}

func (f *failureSet) add(source, message string) {
	if f.seen[source] {
		return
	}
	f.seen[source] = true
	f.order = append(f.order, syncdomain.SourceFailure{Source: source, Error: message})
}

func (f *failureSet) list() []syncdomain.SourceFailure {
	return f.order
}
