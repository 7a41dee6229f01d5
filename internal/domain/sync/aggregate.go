package sync

import (
	"context"
	gosync "sync"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPriceWorkers bounds concurrent per-identifier price lookups.
const DefaultPriceWorkers = 8

// SourceFailure records one failed source call within a run.
type SourceFailure struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// SalesAggregate is the merged outcome of fanning one batch out to every
// configured sales source.
type SalesAggregate struct {
	// Totals maps SKU to the summed quantity sold across all sources that
	// answered. SKUs no source reported are absent.
	Totals map[string]int
	// Failures lists sources whose batch call failed, in configuration order.
	// A failed source contributes zero to every total.
	Failures []SourceFailure
}

// AggregateSales issues one composite sales query per source concurrently and
// merges the results by summation. Sales are additive across independently
// operated storefronts, so merge order cannot change any total. One source
// failing neither cancels nor corrupts the others; its contribution for this
// batch is discarded and the failure recorded.
func AggregateSales(ctx context.Context, sources []SalesSource, skus []string, tag string, since time.Time, timeout time.Duration) SalesAggregate {
	agg := SalesAggregate{Totals: make(map[string]int, len(skus))}
	if len(sources) == 0 || len(skus) == 0 {
		return agg
	}

	results := make([]map[string]int, len(sources))
	failures := make([]*SourceFailure, len(sources))

	var wg gosync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src SalesSource) {
			defer wg.Done()
			callCtx := ctx
			if timeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			sales, err := src.QuerySales(callCtx, skus, tag, since)
			if err != nil {
				failures[i] = &SourceFailure{Source: src.Name(), Error: err.Error()}
				return
			}
			results[i] = sales
		}(i, src)
	}
	wg.Wait()

	for i := range sources {
		if failures[i] != nil {
			agg.Failures = append(agg.Failures, *failures[i])
			continue
		}
		for sku, qty := range results[i] {
			agg.Totals[sku] += qty
		}
	}
	return agg
}

// PriceAggregate is the merged outcome of per-identifier price lookups for
// one batch.
type PriceAggregate struct {
	// Prices maps SKU to unit price. SKUs the source does not know are absent.
	Prices map[string]decimal.Decimal
	// Failures holds at most one entry per source; repeated lookup errors
	// against the same source collapse into the first.
	Failures []SourceFailure
}

// CollectPrices resolves prices for a batch through a bounded worker pool.
// The relational source has no composite query, so each SKU is one lookup; a
// lookup error marks the source failed once and the SKU unresolved.
func CollectPrices(ctx context.Context, source PriceSource, skus []string, workers int, timeout time.Duration) PriceAggregate {
	agg := PriceAggregate{Prices: make(map[string]decimal.Decimal, len(skus))}
	if source == nil || len(skus) == 0 {
		return agg
	}
	if workers < 1 {
		workers = DefaultPriceWorkers
	}

	var (
		mu       gosync.Mutex
		firstErr error
	)
	jobs := make(chan string)
	var wg gosync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sku := range jobs {
				callCtx := ctx
				if timeout > 0 {
					var cancel context.CancelFunc
					callCtx, cancel = context.WithTimeout(ctx, timeout)
					price, found, err := source.QueryPrice(callCtx, sku)
					cancel()
					recordPrice(&mu, &agg, &firstErr, sku, price, found, err)
					continue
				}
				price, found, err := source.QueryPrice(callCtx, sku)
				recordPrice(&mu, &agg, &firstErr, sku, price, found, err)
			}
		}()
	}

	for _, sku := range skus {
		jobs <- sku
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		agg.Failures = append(agg.Failures, SourceFailure{Source: source.Name(), Error: firstErr.Error()})
	}
	return agg
}

func recordPrice(mu *gosync.Mutex, agg *PriceAggregate, firstErr *error, sku string, price decimal.Decimal, found bool, err error) {
	mu.Lock()
	defer mu.Unlock()
	switch {
	case err != nil:
		if *firstErr == nil {
			*firstErr = err
		}
	case found:
		agg.Prices[sku] = price
	}
}
