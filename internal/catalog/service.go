package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fabocv/santi-pos/internal/events"
	"github.com/fabocv/santi-pos/internal/pricing"
)

var (
	// ErrUnknownProduct is returned when a price update targets a code not in the catalog.
	ErrUnknownProduct = errors.New("catalog: unknown product code")
	// ErrPriceUnchanged is returned when a price update carries the current price.
	ErrPriceUnchanged = errors.New("catalog: price unchanged")
	// ErrInvalidPrice is returned for non-positive prices.
	ErrInvalidPrice = errors.New("catalog: price must be positive")
)

// Fetcher retrieves the master product list from the (simulated) backend.
type Fetcher interface {
	Fetch(ctx context.Context) ([]Product, error)
}

// StaticFetcher serves a fixed product list, standing in for the remote API.
type StaticFetcher struct {
	Products []Product
	Delay    time.Duration
}

// Fetch returns the configured list after an optional simulated network delay.
func (f StaticFetcher) Fetch(ctx context.Context) ([]Product, error) {
	if f.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.Delay):
		}
	}
	return append([]Product(nil), f.Products...), nil
}

// PriceChange is the audit record produced by a successful price update.
type PriceChange struct {
	Code       string        `json:"code"`
	OldPrice   pricing.Money `json:"oldPrice"`
	NewPrice   pricing.Money `json:"newPrice"`
	OperatorID string        `json:"operatorId"`
	Timestamp  time.Time     `json:"timestamp"`
}

// Service holds the in-memory catalog and keeps the Redis snapshot and the
// event bus informed of changes. Lookups never touch Redis.
type Service struct {
	mu       sync.RWMutex
	products []Product
	index    map[string]int

	store   *Store
	fetcher Fetcher
	bus     *events.Bus
	logger  zerolog.Logger
	now     func() time.Time
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Seed    []Product
	Store   *Store
	Fetcher Fetcher
	Bus     *events.Bus
	Logger  zerolog.Logger
	Now     func() time.Time
}

// NewService constructs a Service seeded with the provided products, falling
// back to the built-in butcher list.
func NewService(cfg ServiceConfig) *Service {
	seed := cfg.Seed
	if len(seed) == 0 {
		seed = Seed()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	s := &Service{
		store:   cfg.Store,
		fetcher: cfg.Fetcher,
		bus:     cfg.Bus,
		logger:  cfg.Logger,
		now:     now,
	}
	s.replace(seed)
	return s
}

// Lookup resolves a product by exact code. A miss is not an error.
func (s *Service) Lookup(code string) (Product, bool) {
	code = strings.TrimSpace(code)
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[code]
	if !ok {
		return Product{}, false
	}
	return s.products[i], true
}

// Search returns products whose code starts with the given prefix, in code
// order. An empty prefix returns the whole catalog.
func (s *Service) Search(prefix string) []Product {
	prefix = strings.TrimSpace(prefix)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		if prefix == "" || strings.HasPrefix(p.Code, prefix) {
			out = append(out, p)
		}
	}
	return out
}

// List returns a copy of the full catalog in code order.
func (s *Service) List() []Product {
	return s.Search("")
}

// UpdatePrice changes a product's price and returns the audit record. The
// in-memory catalog commits first; snapshot persistence and the price.updated
// event are best-effort side effects.
func (s *Service) UpdatePrice(ctx context.Context, code string, newPrice pricing.Money, operatorID string) (PriceChange, error) {
	if newPrice <= 0 {
		return PriceChange{}, ErrInvalidPrice
	}
	code = strings.TrimSpace(code)

	s.mu.Lock()
	i, ok := s.index[code]
	if !ok {
		s.mu.Unlock()
		return PriceChange{}, ErrUnknownProduct
	}
	old := s.products[i].PricePerKg
	if old == newPrice {
		s.mu.Unlock()
		return PriceChange{}, ErrPriceUnchanged
	}
	s.products[i].PricePerKg = newPrice
	snapshot := append([]Product(nil), s.products...)
	s.mu.Unlock()

	change := PriceChange{
		Code:       code,
		OldPrice:   old,
		NewPrice:   newPrice,
		OperatorID: operatorID,
		Timestamp:  s.now(),
	}
	s.logger.Info().
		Str("code", change.Code).
		Int64("old_price", change.OldPrice).
		Int64("new_price", change.NewPrice).
		Str("operator_id", change.OperatorID).
		Msg("price_updated")

	if err := s.store.SaveSnapshot(ctx, snapshot); err != nil {
		s.logger.Error().Err(err).Msg("save catalog snapshot")
	}
	if s.bus != nil {
		if _, err := s.bus.Emit(ctx, events.TopicPriceUpdated, change); err != nil {
			s.logger.Error().Err(err).Msg("emit price.updated")
		}
	}
	return change, nil
}

// LoadCached replaces the catalog with the persisted snapshot, when one exists.
func (s *Service) LoadCached(ctx context.Context) (bool, error) {
	products, ok, err := s.store.LoadSnapshot(ctx)
	if err != nil || !ok {
		return false, err
	}
	s.replace(products)
	return true, nil
}

// Refresh pulls the master list from the backend, replaces the catalog, and
// persists the new snapshot.
func (s *Service) Refresh(ctx context.Context) error {
	if s.fetcher == nil {
		return errors.New("catalog: no fetcher configured")
	}
	products, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return err
	}
	s.replace(products)
	if err := s.store.SaveSnapshot(ctx, products); err != nil {
		s.logger.Error().Err(err).Msg("save catalog snapshot")
	}
	if s.bus != nil {
		payload := map[string]any{"count": len(products)}
		if _, err := s.bus.Emit(ctx, events.TopicCatalogRefreshed, payload); err != nil {
			s.logger.Error().Err(err).Msg("emit catalog.refreshed")
		}
	}
	return nil
}

func (s *Service) replace(products []Product) {
	sorted := append([]Product(nil), products...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Code < sorted[j].Code })
	index := make(map[string]int, len(sorted))
	for i, p := range sorted {
		index[p.Code] = i
	}
	s.mu.Lock()
	s.products = sorted
	s.index = index
	s.mu.Unlock()
}
