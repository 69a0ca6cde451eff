package cart

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"shopcart/pkg/logkey"
)

// Aggregator derives read-only summaries from a Store. It keeps no running
// totals; every call recomputes from the current lines.
type Aggregator struct {
	store          Store
	currencySymbol string
}

func NewAggregator(store Store, currencySymbol string) *Aggregator {
	return &Aggregator{store: store, currencySymbol: currencySymbol}
}

// Total sums quantity × parsed price over every line. Lines whose price text
// does not parse contribute zero. Only a store failure is returned.
func (a *Aggregator) Total(ctx context.Context) (decimal.Decimal, error) {
	lines, err := a.store.FetchAllLines(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return a.sum(lines), nil
}

func (a *Aggregator) sum(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		price, err := ParsePrice(l.PriceText, a.currencySymbol)
		if err != nil {
			slog.Debug("price text ignored in total", slog.String(logkey.ProductID, l.ProductID), slog.String(logkey.ERROR, err.Error()))
			continue
		}
		total = total.Add(price.Mul(decimal.NewFromInt32(l.Quantity)))
	}
	return total
}

// TotalValue is Total degraded to 0 on store failure.
func (a *Aggregator) TotalValue(ctx context.Context) float64 {
	total, err := a.Total(ctx)
	if err != nil {
		slog.Warn("cart total degraded to zero", slog.String(logkey.ERROR, err.Error()))
		return 0
	}
	return total.InexactFloat64()
}

// ProductIDs is FetchAllProductIDs degraded to an empty set on store failure.
func (a *Aggregator) ProductIDs(ctx context.Context) IDSet {
	ids, err := a.store.FetchAllProductIDs(ctx)
	if err != nil {
		slog.Warn("cart id set degraded to empty", slog.String(logkey.ERROR, err.Error()))
		return IDSet{}
	}
	return ids
}

func (a *Aggregator) ContainsProduct(ctx context.Context, productID string) bool {
	return a.ProductIDs(ctx).Has(productID)
}
