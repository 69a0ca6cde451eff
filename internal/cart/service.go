package cart

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"shopcart/internal/catalog"
	"shopcart/pkg/ctxmanage"
	"shopcart/pkg/logkey"
)

const (
	defaultQueueSize  = 64
	defaultOutboxSize = 256
	publishTimeout    = 5 * time.Second
)

type options struct {
	publisher      Publisher
	currencySymbol string
	queueSize      int
	outboxSize     int
}

type Option func(*options)

// WithPublisher forwards every applied change to p, outside the serial path.
func WithPublisher(p Publisher) Option {
	return func(o *options) { o.publisher = p }
}

func WithCurrencySymbol(symbol string) Option {
	return func(o *options) { o.currencySymbol = symbol }
}

// WithQueueSize sets how many operations may wait for the store before
// submitters block.
func WithQueueSize(n int) Option {
	return func(o *options) { o.queueSize = n }
}

// Service is the cart boundary used by the screen coordinators. All store
// access goes through one serial executor, so operations apply in submission
// order and reads never see a half-applied mutation.
type Service struct {
	store    Store
	agg      *Aggregator
	exec     *executor
	hub      *hub
	pub      Publisher
	outbox   chan Change
	pubDone  chan struct{}
	validate *validator.Validate
	closing  sync.Once
}

func NewService(store Store, opts ...Option) *Service {
	o := options{
		currencySymbol: DefaultCurrencySymbol,
		queueSize:      defaultQueueSize,
		outboxSize:     defaultOutboxSize,
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Service{
		store:    store,
		agg:      NewAggregator(store, o.currencySymbol),
		exec:     newExecutor(o.queueSize),
		hub:      newHub(),
		pub:      o.publisher,
		validate: validator.New(),
	}
	if s.pub != nil {
		s.outbox = make(chan Change, o.outboxSize)
		s.pubDone = make(chan struct{})
		go s.publishLoop()
	}
	return s
}

// AddToCartAsync upserts the product's line and resolves once it is persisted.
func (s *Service) AddToCartAsync(ctx context.Context, p catalog.Product) *Future[struct{}] {
	if err := s.validate.Struct(p); err != nil {
		return resolved(struct{}{}, fmt.Errorf("%w: %v", ErrInvalidProduct, err))
	}
	ctx = context.WithoutCancel(ctx)
	fields := DisplayFieldsOf(p)

	return submit(s.exec, func() (struct{}, error) {
		if err := s.store.UpsertLine(ctx, p.ID, fields); err != nil {
			return struct{}{}, err
		}
		var quantity int32
		if line, err := s.store.FetchLine(ctx, p.ID); err == nil && line != nil {
			quantity = line.Quantity
		}
		slog.Debug("cart line upserted", slog.String(logkey.TraceID, ctxmanage.TraceIDFromContext(ctx)),
			slog.String(logkey.ProductID, p.ID), slog.Int(logkey.Quantity, int(quantity)))
		s.emit(ChangeUpserted, p.ID, quantity)
		return struct{}{}, nil
	})
}

func (s *Service) AddToCart(ctx context.Context, p catalog.Product) error {
	_, err := s.AddToCartAsync(ctx, p).Await(ctx)
	return err
}

// Increment adds one to an existing line and returns the new quantity.
func (s *Service) Increment(ctx context.Context, productID string) (int32, error) {
	return s.adjust(ctx, productID, 1)
}

// Decrement subtracts one, clamping at zero, and returns the new quantity. A
// line that reaches zero is kept; removing it is the caller's decision.
func (s *Service) Decrement(ctx context.Context, productID string) (int32, error) {
	return s.adjust(ctx, productID, -1)
}

func (s *Service) adjust(ctx context.Context, productID string, delta int32) (int32, error) {
	storeCtx := context.WithoutCancel(ctx)
	return submit(s.exec, func() (int32, error) {
		q, err := s.store.AdjustQuantity(storeCtx, productID, delta)
		if err != nil {
			return 0, err
		}
		s.emit(ChangeAdjusted, productID, q)
		return q, nil
	}).Await(ctx)
}

// Remove deletes the line; removing an absent product succeeds.
func (s *Service) Remove(ctx context.Context, productID string) error {
	storeCtx := context.WithoutCancel(ctx)
	_, err := submit(s.exec, func() (struct{}, error) {
		if err := s.store.DeleteLine(storeCtx, productID); err != nil {
			return struct{}{}, err
		}
		s.emit(ChangeRemoved, productID, 0)
		return struct{}{}, nil
	}).Await(ctx)
	return err
}

// Clear removes every line atomically.
func (s *Service) Clear(ctx context.Context) error {
	storeCtx := context.WithoutCancel(ctx)
	_, err := submit(s.exec, func() (struct{}, error) {
		if err := s.store.DeleteAllLines(storeCtx); err != nil {
			return struct{}{}, err
		}
		s.emit(ChangeCleared, "", 0)
		return struct{}{}, nil
	}).Await(ctx)
	return err
}

func (s *Service) GetAll(ctx context.Context) ([]Line, error) {
	storeCtx := context.WithoutCancel(ctx)
	return submit(s.exec, func() ([]Line, error) {
		return s.store.FetchAllLines(storeCtx)
	}).Await(ctx)
}

// GetLine returns nil, nil when the product is not in the cart.
func (s *Service) GetLine(ctx context.Context, productID string) (*Line, error) {
	storeCtx := context.WithoutCancel(ctx)
	return submit(s.exec, func() (*Line, error) {
		return s.store.FetchLine(storeCtx, productID)
	}).Await(ctx)
}

// GetTotal returns the cart value; any failure degrades to 0.
func (s *Service) GetTotal(ctx context.Context) float64 {
	storeCtx := context.WithoutCancel(ctx)
	total, err := submit(s.exec, func() (float64, error) {
		return s.agg.TotalValue(storeCtx), nil
	}).Await(ctx)
	if err != nil {
		slog.Warn("cart total degraded to zero", slog.String(logkey.ERROR, err.Error()))
		return 0
	}
	return total
}

// GetCartedIDs returns the ids in the cart; any failure degrades to an empty set.
func (s *Service) GetCartedIDs(ctx context.Context) IDSet {
	storeCtx := context.WithoutCancel(ctx)
	ids, err := submit(s.exec, func() (IDSet, error) {
		return s.agg.ProductIDs(storeCtx), nil
	}).Await(ctx)
	if err != nil {
		slog.Warn("cart id set degraded to empty", slog.String(logkey.ERROR, err.Error()))
		return IDSet{}
	}
	return ids
}

// State is the cart read as one unit: the lines, their total and their ids
// all come from the same point in the mutation order.
type State struct {
	Lines []Line
	Total float64
	IDs   IDSet
}

// GetState reads lines, total and ids in a single executor job, so no
// mutation can land between them.
func (s *Service) GetState(ctx context.Context) (State, error) {
	storeCtx := context.WithoutCancel(ctx)
	return submit(s.exec, func() (State, error) {
		lines, err := s.store.FetchAllLines(storeCtx)
		if err != nil {
			return State{}, err
		}
		ids := make(IDSet, len(lines))
		for _, l := range lines {
			ids[l.ProductID] = struct{}{}
		}
		return State{Lines: lines, Total: s.agg.sum(lines).InexactFloat64(), IDs: ids}, nil
	}).Await(ctx)
}

func (s *Service) Contains(ctx context.Context, productID string) bool {
	return s.GetCartedIDs(ctx).Has(productID)
}

// Subscribe returns a channel receiving every applied change and a function
// that ends the subscription. The channel is closed by cancel or Close.
func (s *Service) Subscribe() (<-chan Change, func()) {
	return s.hub.subscribe(16)
}

// Close waits for queued operations to finish, flushes pending publications
// and ends all subscriptions.
func (s *Service) Close() {
	s.closing.Do(func() {
		s.exec.close()
		if s.outbox != nil {
			close(s.outbox)
			<-s.pubDone
		}
		s.hub.closeAll()
	})
}

// emit runs on the executor goroutine, after the store accepted the mutation.
func (s *Service) emit(kind ChangeKind, productID string, quantity int32) {
	change := Change{
		ID:        uuid.NewString(),
		Kind:      kind,
		ProductID: productID,
		Quantity:  quantity,
		At:        time.Now().UTC(),
	}
	s.hub.broadcast(change)
	if s.outbox == nil {
		return
	}
	select {
	case s.outbox <- change:
	default:
		slog.Warn("cart change not published, outbox full", slog.String(logkey.ProductID, productID), slog.String("Kind", string(kind)))
	}
}

func (s *Service) publishLoop() {
	defer close(s.pubDone)
	for change := range s.outbox {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := s.pub.Publish(ctx, change); err != nil {
			slog.Error("failed to publish cart change", slog.String(logkey.ProductID, change.ProductID),
				slog.String("Kind", string(change.Kind)), slog.String(logkey.ERROR, err.Error()))
		}
		cancel()
	}
}
