package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// DefaultSKUMaxAttempts bounds how many candidates are tried before giving up.
const DefaultSKUMaxAttempts = 10

// fallbackSKUPrefix is used when the category contains no ASCII letters.
const fallbackSKUPrefix = "GEN"

// SKUChecker reports whether a SKU is already taken.
type SKUChecker interface {
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
}

// SKUGenerator produces codes of the form PRE-TTTT-RRR where PRE comes from
// the category, TTTT are the last four digits of the millisecond clock and RRR
// is a random number in [0, 999].
type SKUGenerator struct {
	checker     SKUChecker
	maxAttempts int
	now         func() time.Time
	intN        func(n int) int
}

// SKUOption customizes a SKUGenerator.
type SKUOption func(*SKUGenerator)

// WithMaxAttempts overrides DefaultSKUMaxAttempts. Values below 1 are ignored.
func WithMaxAttempts(n int) SKUOption {
	return func(g *SKUGenerator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) SKUOption {
	return func(g *SKUGenerator) { g.now = now }
}

// WithRandom replaces the random source; intN must return a value in [0, n).
func WithRandom(intN func(n int) int) SKUOption {
	return func(g *SKUGenerator) { g.intN = intN }
}

// NewSKUGenerator creates a generator that checks candidates against checker.
func NewSKUGenerator(checker SKUChecker, opts ...SKUOption) *SKUGenerator {
	g := &SKUGenerator{
		checker:     checker,
		maxAttempts: DefaultSKUMaxAttempts,
		now:         time.Now,
		intN:        rand.Intn,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// MaxAttempts returns the retry budget.
func (g *SKUGenerator) MaxAttempts() int {
	return g.maxAttempts
}

// Candidate builds one SKU without consulting the store.
func (g *SKUGenerator) Candidate(category string) string {
	millis := g.now().UnixMilli() % 10000
	if millis < 0 {
		millis = -millis
	}
	return fmt.Sprintf("%s-%04d-%03d", SKUPrefix(category), millis, g.intN(1000))
}

// Generate returns a SKU not currently present in the store. It fails with a
// KindConflict error once the attempt budget is spent.
func (g *SKUGenerator) Generate(ctx context.Context, category string) (string, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", NewInternalError("sku generation cancelled", err)
		}
		sku := g.Candidate(category)
		taken, err := g.checker.ExistsBySKU(ctx, sku)
		if err != nil {
			return "", NewInternalError("failed to check sku uniqueness", err)
		}
		if !taken {
			return sku, nil
		}
	}
	return "", NewConflictError("could not generate a unique sku", fmt.Errorf("%d attempts exhausted", g.maxAttempts))
}

// SKUPrefix upper-cases the category and keeps its first three ASCII letters.
// Shorter categories yield shorter prefixes; no padding is applied.
func SKUPrefix(category string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(category)) {
		if r < 'A' || r > 'Z' {
			continue
		}
		b.WriteRune(r)
		if b.Len() == 3 {
			break
		}
	}
	if b.Len() == 0 {
		return fallbackSKUPrefix
	}
	return b.String()
}
