// Package catalog is the authoritative source of product names, prices and stock.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/G77-BOT/aura-flow/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

// Catalog resolves product ids. Implementations are read-only after construction.
type Catalog interface {
	Lookup(id int64) (domain.Product, error)
	List() []domain.Product
	ListByCategory(category string) []domain.Product
}

type Memory struct {
	byID    map[int64]domain.Product
	ordered []domain.Product
}

// NewMemory builds a catalog from products, sorted by id.
func NewMemory(products []domain.Product) (*Memory, error) {
	m := &Memory{byID: make(map[int64]domain.Product, len(products))}
	for _, p := range products {
		if _, dup := m.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %d", p.ID)
		}
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("product %d has empty name", p.ID)
		}
		if p.UnitPriceMinorUnits < 0 {
			return nil, fmt.Errorf("product %d has negative price %d", p.ID, p.UnitPriceMinorUnits)
		}
		m.byID[p.ID] = p
		m.ordered = append(m.ordered, p)
	}
	sort.Slice(m.ordered, func(i, j int) bool { return m.ordered[i].ID < m.ordered[j].ID })
	return m, nil
}

func (m *Memory) Lookup(id int64) (domain.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}
	return p, nil
}

func (m *Memory) List() []domain.Product {
	out := make([]domain.Product, len(m.ordered))
	copy(out, m.ordered)
	return out
}

// ListByCategory matches case-insensitively. An empty category lists everything.
func (m *Memory) ListByCategory(category string) []domain.Product {
	if category == "" {
		return m.List()
	}
	var out []domain.Product
	for _, p := range m.ordered {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}
