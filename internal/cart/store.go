// Package cart holds the shopper's cart on the client side and persists it
// wholesale after every change.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/G77-BOT/aura-flow/internal/catalog"
	"github.com/G77-BOT/aura-flow/internal/domain"
	"github.com/G77-BOT/aura-flow/internal/money"
)

// DefaultKey is the storage key the browser storefront uses.
const DefaultKey = "auraFlowCart"

var (
	ErrAlreadyInCart  = errors.New("item is already in your cart")
	ErrOutOfStock     = errors.New("item is out of stock")
	ErrUnknownProduct = errors.New("unknown product")
	ErrCorruptCart    = errors.New("saved cart could not be read; starting with an empty cart")
)

// Item is the persisted product snapshot.
type Item struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	InStock     bool            `json:"inStock"`
}

// MarshalJSON writes price as a JSON number, as the browser storefront does,
// so a blob written here still sums correctly there.
func (i Item) MarshalJSON() ([]byte, error) {
	type plain Item
	return json.Marshal(struct {
		plain
		Price json.Number `json:"price"`
	}{plain(i), json.Number(i.Price.String())})
}

type Totals struct {
	Subtotal int64
	Tax      int64
	Total    int64
}

type Store struct {
	mu      sync.Mutex
	catalog catalog.Catalog
	storage Storage
	key     string
	logger  *slog.Logger
	items   []Item
}

type Option func(*Store)

func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

func NewStore(cat catalog.Catalog, storage Storage, opts ...Option) *Store {
	s := &Store{
		catalog: cat,
		storage: storage,
		key:     DefaultKey,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory cart with the persisted one. A missing or
// unreachable blob yields an empty cart; an unreadable one yields an empty
// cart and ErrCorruptCart.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil

	data, err := s.storage.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		s.logger.WarnContext(ctx, "cart storage unavailable, using empty cart", "key", s.key, "error", err)
		return nil
	}

	var saved []Item
	if err := json.Unmarshal(data, &saved); err != nil {
		s.logger.WarnContext(ctx, "discarding corrupt cart", "key", s.key, "error", err)
		return fmt.Errorf("%w: %v", ErrCorruptCart, err)
	}

	seen := make(map[int64]bool, len(saved))
	for _, item := range saved {
		if seen[item.ID] {
			continue
		}
		if _, err := s.catalog.Lookup(item.ID); err != nil {
			s.logger.WarnContext(ctx, "dropping unknown product from saved cart", "product_id", item.ID)
			continue
		}
		seen[item.ID] = true
		s.items = append(s.items, item)
	}
	return nil
}

func (s *Store) Add(ctx context.Context, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(productID) >= 0 {
		return ErrAlreadyInCart
	}
	p, err := s.catalog.Lookup(productID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		return fmt.Errorf("%w: %d", ErrUnknownProduct, productID)
	}
	if err != nil {
		return err
	}
	if !p.Purchasable() {
		return ErrOutOfStock
	}

	s.items = append(s.items, snapshot(p))
	s.persist(ctx)
	return nil
}

// Remove is a no-op when the product is not in the cart, but still persists.
func (s *Store) Remove(ctx context.Context, productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(productID); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
	s.persist(ctx)
}

// Clear empties the cart, e.g. after a completed checkout.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.persist(ctx)
}

// Total sums catalog prices, never the snapshot prices.
func (s *Store) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total()
}

// Totals adds a flat display surcharge of taxPercent to the authoritative total.
func (s *Store) Totals(taxPercent decimal.Decimal) Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := s.total()
	tax := money.Percent(sub, taxPercent)
	return Totals{Subtotal: sub, Tax: tax, Total: sub + tax}
}

func (s *Store) Entries() []domain.CartEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]domain.CartEntry, 0, len(s.items))
	for _, item := range s.items {
		entries = append(entries, domain.CartEntry{ProductID: item.ID, Quantity: domain.MaxQuantityPerProduct})
	}
	return entries
}

func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) Contains(productID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(productID) >= 0
}

func (s *Store) total() int64 {
	var sum int64
	for _, item := range s.items {
		p, err := s.catalog.Lookup(item.ID)
		if err != nil {
			continue
		}
		sum += p.UnitPriceMinorUnits
	}
	return sum
}

func (s *Store) indexOf(productID int64) int {
	for i, item := range s.items {
		if item.ID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) persist(ctx context.Context) {
	items := s.items
	if items == nil {
		items = []Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		s.logger.ErrorContext(ctx, "marshal cart failed", "error", err)
		return
	}
	if err := s.storage.Set(ctx, s.key, data); err != nil {
		s.logger.WarnContext(ctx, "cart not persisted, keeping in-memory state", "key", s.key, "error", err)
	}
}

func snapshot(p domain.Product) Item {
	return Item{
		ID:          p.ID,
		Name:        p.Name,
		Price:       money.FromMinorUnits(p.UnitPriceMinorUnits),
		Image:       p.ImageRef,
		Category:    p.Category,
		Description: p.Description,
		InStock:     p.InStock,
	}
}
