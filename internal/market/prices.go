// Package market supplies current prices for investment symbols. The mock
// source stands in for a real market-data feed behind the same interface.
package market

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// Quote is a point-in-time price for a symbol.
type Quote struct {
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	Change float64   `json:"change"`
	AsOf   time.Time `json:"asOf"`
}

// PriceSource returns the current price for a symbol.
type PriceSource interface {
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
}

// MockPriceSource generates pseudo-random quotes. Each symbol gets a stable
// base price derived from its name and drifts at most a few percent per
// quote, so repeated refreshes look like market movement rather than noise.
type MockPriceSource struct {
	mu   sync.Mutex
	rng  *rand.Rand
	last map[string]float64
}

// NewMockPriceSource creates a mock source. The same seed produces the same
// sequence of quotes.
func NewMockPriceSource(seed int64) *MockPriceSource {
	return &MockPriceSource{
		rng:  rand.New(rand.NewSource(seed)),
		last: make(map[string]float64),
	}
}

// basePrice maps a symbol onto a stable starting price between 10 and 1000.
func basePrice(symbol string) float64 {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return 10 + float64(h.Sum32()%99000)/100
}

func (m *MockPriceSource) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, errors.New("symbol is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	prev, ok := m.last[symbol]
	if !ok {
		prev = basePrice(symbol)
	}

	// Drift within ±2% of the previous quote.
	drift := (m.rng.Float64() - 0.5) * 0.04
	price := math.Round(prev*(1+drift)*100) / 100
	if price < 0.01 {
		price = 0.01
	}
	m.last[symbol] = price

	change := 0.0
	if ok && prev > 0 {
		change = math.Round((price-prev)/prev*100*100) / 100
	}

	return &Quote{
		Symbol: symbol,
		Price:  price,
		Change: change,
		AsOf:   time.Now(),
	}, nil
}
