package cart

import "context"

// Store is the persistence contract for cart lines. Implementations apply each
// call atomically; the serialized ordering across calls is provided by Service.
type Store interface {
	// UpsertLine inserts a line with quantity 1, or increments an existing line
	// by 1 and refreshes its display fields. Duplicates are the normal path.
	UpsertLine(ctx context.Context, productID string, fields DisplayFields) error

	// AdjustQuantity adds delta to the line and clamps the result at zero. A line
	// clamped to zero is kept. Returns ErrNotFound when the line is absent.
	AdjustQuantity(ctx context.Context, productID string, delta int32) (int32, error)

	// DeleteLine removes the line; deleting an absent line succeeds.
	DeleteLine(ctx context.Context, productID string) error

	// DeleteAllLines removes every line in one transaction.
	DeleteAllLines(ctx context.Context) error

	// FetchLine returns nil, nil when the line is absent.
	FetchLine(ctx context.Context, productID string) (*Line, error)

	// FetchAllLines returns lines in insertion order.
	FetchAllLines(ctx context.Context) ([]Line, error)

	FetchAllProductIDs(ctx context.Context) (IDSet, error)
}

// clampAdd returns q+delta floored at zero without overflowing int32.
func clampAdd(q, delta int32) int32 {
	sum := int64(q) + int64(delta)
	switch {
	case sum < 0:
		return 0
	case sum > int64(^uint32(0)>>1):
		return int32(^uint32(0) >> 1)
	}
	return int32(sum)
}
